package cli

import (
	"bytes"
	"strings"
	"testing"
)

// captureOut redirects status output for the duration of the test.
func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func TestStatsLine(t *testing.T) {
	tests := []struct {
		items, overlaps int
		cached          bool
		want            []string
	}{
		{6, 0, false, []string{"6 photos", "no overlaps", "simulated"}},
		{1, 1, true, []string{"1 photo", "1 overlap", "from cache"}},
		{12, 3, false, []string{"12 photos", "3 overlaps"}},
	}
	for _, tt := range tests {
		got := statsLine(tt.items, tt.overlaps, tt.cached)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("statsLine(%d, %d, %v) = %q, missing %q", tt.items, tt.overlaps, tt.cached, got, w)
			}
		}
	}
}

func TestStatusLines(t *testing.T) {
	buf := captureOut(t)
	printSuccess("Collage rendered")
	printWarning("%d of %d photos rejected", 1, 6)
	printDetail("%s: %s", "slide-3", "tags are blank")
	printFile("collage.svg")
	printKeyValue("Feed", "dir")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := [][]string{
		{"✓", "Collage rendered"},
		{"!", "1 of 6 photos rejected"},
		{"slide-3: tags are blank"},
		{"→", "collage.svg"},
		{"Feed", "dir"},
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i, parts := range want {
		for _, w := range parts {
			if !strings.Contains(lines[i], w) {
				t.Errorf("line %d = %q, missing %q", i, lines[i], w)
			}
		}
	}
}
