package tui

import (
	"github.com/muesli/reflow/truncate"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// clip shortens s to width cells, marking the cut with an ellipsis.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
