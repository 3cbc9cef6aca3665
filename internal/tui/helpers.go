package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// stepBar renders "1 Service · 2 Time · 3 Payment · 4 Done" with the current step lit.
func stepBar(current step) string {
	names := []string{"Service", "Time", "Payment", "Done"}
	parts := make([]string, len(names))
	for i, name := range names {
		label := fmt.Sprintf("%d %s", i+1, name)
		switch {
		case step(i) == current:
			parts[i] = selectedStyle.Render(label)
		case step(i) < current:
			parts[i] = accentStyle.Render(label)
		default:
			parts[i] = metaStyle.Render(label)
		}
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}
