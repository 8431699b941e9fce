package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// out receives every status line the commands print. Tests swap it.
var out io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // item ids, numbers
	colorGreen  = lipgloss.Color("35")  // done, cache hits
	colorYellow = lipgloss.Color("220") // rejected photos
	colorRed    = lipgloss.Color("167") // failures
	colorBlue   = lipgloss.Color("75")  // urls, commands
	colorWhite  = lipgloss.Color("255") // titles, paths
	colorGray   = lipgloss.Color("245") // keys
	colorDim    = lipgloss.Color("240") // details, separators
)

// Exported styles are shared with the watch view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// status is the leading mark of a status line.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusSuccess = status{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = status{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = status{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	statusInfo    = status{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

// =============================================================================
// Status lines
// =============================================================================

func (s status) print(msg string) {
	fmt.Fprintln(out, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { statusSuccess.print(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { statusError.print(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { statusInfo.print(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	statusWarning.print(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written artifact or feed file.
func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(out, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(out) }

// =============================================================================
// Collage summary
// =============================================================================

// statsLine is the summary under "Collage rendered".
func statsLine(items, overlaps int, cached bool) string {
	photos := fmt.Sprintf("%d photos", items)
	if items == 1 {
		photos = "1 photo"
	}
	var pairs string
	switch overlaps {
	case 0:
		pairs = "no overlaps"
	case 1:
		pairs = "1 overlap"
	default:
		pairs = fmt.Sprintf("%d overlaps", overlaps)
	}
	origin := lipgloss.NewStyle().Foreground(colorGray).Render("simulated")
	if cached {
		origin = StyleSuccess.Render("from cache")
	}
	sep := StyleDim.Render(" · ")
	return "  " + strings.Join([]string{StyleDim.Render(photos), StyleDim.Render(pairs), origin}, sep)
}

func printStats(items, overlaps int, cached bool) {
	fmt.Fprintln(out, statsLine(items, overlaps, cached))
}
