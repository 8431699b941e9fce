package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/render/sink"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// watchRefresh is how often the terminal view polls the collage.
const watchRefresh = 100 * time.Millisecond

// watchCommand creates the watch command: a live collage in the terminal.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		auto    bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the collage and watch it settle in the terminal",
		Long: `Run the collage and watch it settle in the terminal.

The configured feed is loaded into a headless collage that runs at the
configured frame rate. The table lists every photo with its position and the
number of photos it still overlaps.

Keys:
  ↑/↓ or k/j   move the cursor
  enter        select the photo under the cursor
  esc          clear the selection
  t            search a random tag of the photo under the cursor
  + / -        zoom in / out
  a            toggle the auto-pilot
  q            quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), auto || c.Config.Server.Auto, noCache)
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "start with the auto-pilot running")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of feed responses")

	return cmd
}

// runWatch starts the loop, loads the feed and hands the terminal to the
// bubbletea program until it quits.
func (c *CLI) runWatch(ctx context.Context, auto, noCache bool) error {
	src, err := c.newSource(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	defer src.Close(context.Background())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := c.newLoop(src)
	go loop.Run(ctx)

	recs, err := src.List(ctx)
	if err != nil {
		return fmt.Errorf("list feed: %w", err)
	}
	if err := loadRecords(ctx, loop, recs); err != nil {
		return err
	}

	m := newWatchModel(ctx, loop, c.Config.Server.AutoInterval)
	if auto {
		m.toggleAuto()
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if wm, ok := final.(watchModel); ok {
		wm.stopAuto()
		printInfo("Watched %d frames", wm.snap.Frame)
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// loadRecords scatters recs around the camera center.
func loadRecords(ctx context.Context, loop *collage.Loop, recs []feed.Record) error {
	var center geom.Point
	if err := loop.Call(ctx, func(c *collage.Collage) { center = c.Viewport().Bounds(false).Center() }); err != nil {
		return err
	}
	loop.Load(ctx, feed.Descriptors(recs), center, nil)
	return nil
}

// =============================================================================
// watchModel - Live collage table
// =============================================================================

type (
	tickMsg     struct{}
	snapshotMsg collage.Snapshot
	statusMsg   string
)

// watchModel is the bubbletea model for the watch command.
type watchModel struct {
	ctx      context.Context
	loop     *collage.Loop
	interval time.Duration

	snap     collage.Snapshot
	overlaps map[string]int
	cursor   int
	offset   int
	height   int
	status   string

	autoCancel context.CancelFunc
}

func newWatchModel(ctx context.Context, loop *collage.Loop, interval time.Duration) watchModel {
	return watchModel{
		ctx:      ctx,
		loop:     loop,
		interval: interval,
		height:   15,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(watchRefresh, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, m.fetch()
	case snapshotMsg:
		m.snap = collage.Snapshot(msg)
		m.overlaps = overlapCounts(m.snap)
		if m.cursor >= len(m.snap.Items) {
			m.cursor = max(len(m.snap.Items)-1, 0)
		}
		return m, tick()
	case statusMsg:
		m.status = string(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.snap.Items)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if id, ok := m.current(); ok {
				return m, m.do(func(c *collage.Collage) { c.Select(c.FindItem(id)) }, "selected "+id)
			}
		case "esc":
			return m, m.do(func(c *collage.Collage) { c.Select(nil) }, "selection cleared")
		case "+", "=":
			return m, m.do(func(c *collage.Collage) { c.Viewport().ZoomBy(1.5) }, "zoom in")
		case "-":
			return m, m.do(func(c *collage.Collage) { c.Viewport().ZoomBy(1 / 1.5) }, "zoom out")
		case "t":
			if id, ok := m.current(); ok {
				return m, m.searchTag(id)
			}
		case "a":
			m.toggleAuto()
			if m.autoCancel != nil {
				m.status = "auto-pilot on"
			} else {
				m.status = "auto-pilot off"
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// current returns the id under the cursor.
func (m watchModel) current() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Items) {
		return "", false
	}
	return m.snap.Items[m.cursor].ID, true
}

// fetch copies a snapshot off the loop goroutine.
func (m watchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		var snap collage.Snapshot
		if err := m.loop.Call(m.ctx, func(c *collage.Collage) { snap = c.Snapshot() }); err != nil {
			return tea.Quit()
		}
		return snapshotMsg(snap)
	}
}

func (m watchModel) do(fn func(*collage.Collage), status string) tea.Cmd {
	return func() tea.Msg {
		if !m.loop.Do(fn) {
			return statusMsg("collage stopped")
		}
		return statusMsg(status)
	}
}

// searchTag picks a random tag of the item and loads photos for it.
func (m watchModel) searchTag(id string) tea.Cmd {
	return func() tea.Msg {
		var text string
		err := m.loop.Call(m.ctx, func(c *collage.Collage) {
			if tag := c.RandomTag(c.FindItem(id)); tag != nil {
				text = tag.Text()
			}
		})
		if err != nil {
			return statusMsg(err.Error())
		}
		if text == "" {
			return statusMsg(id + " has no tags")
		}
		m.loop.SearchTag(text)
		return statusMsg("searching " + text)
	}
}

// toggleAuto starts or stops the auto-pilot. It mutates the model in place,
// so call it on the copy Update returns.
func (m *watchModel) toggleAuto() {
	if m.autoCancel != nil {
		m.stopAuto()
		return
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.autoCancel = cancel
	m.loop.StartAuto(ctx, m.interval)
}

func (m *watchModel) stopAuto() {
	if m.autoCancel != nil {
		m.autoCancel()
		m.autoCancel = nil
	}
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Collage"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc clear  t tag  +/- zoom  a auto  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.snap.Items))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		it := m.snap.Items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		sel := ""
		if it.Selected {
			sel = "●"
		}
		rows = append(rows, []string{
			cursor,
			it.ID,
			truncate(it.Title, 28),
			fmt.Sprintf("%.2f, %.2f", it.Bounds.X, it.Bounds.Y),
			fmt.Sprintf("%.2f×%.2f", it.Bounds.Width, it.Bounds.Height),
			fmt.Sprintf("%d", m.overlaps[it.ID]),
			sel,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Photo", "Title", "Position", "Size", "Overlaps", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.snap.Items) {
				return lipgloss.NewStyle()
			}
			it := m.snap.Items[idx]
			base := lipgloss.NewStyle()
			switch {
			case it.Selected:
				base = base.Foreground(colorGreen)
			case m.overlaps[it.ID] > 0:
				base = base.Foreground(colorYellow)
			default:
				base = base.Foreground(colorWhite)
			}
			if idx == m.cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	total := 0
	for _, n := range m.overlaps {
		total += n
	}
	auto := "off"
	if m.autoCancel != nil {
		auto = "on"
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  frame %d · %d photos · %d overlaps · auto %s",
		m.snap.Frame, len(m.snap.Items), total/2, auto)))
	if m.snap.Selected != "" {
		b.WriteString(listDimStyle.Render(" · selected ") + StyleHighlight.Render(m.snap.Selected))
	}
	if m.status != "" {
		b.WriteString("\n  " + StyleDim.Render(iconInfo+" "+m.status))
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// overlapCounts returns, per item, how many other items it intersects.
func overlapCounts(s collage.Snapshot) map[string]int {
	counts := make(map[string]int, len(s.Items))
	for _, p := range sink.Overlaps(s) {
		counts[p.A]++
		counts[p.B]++
	}
	return counts
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
