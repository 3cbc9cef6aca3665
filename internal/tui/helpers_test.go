package tui

import (
	"strings"
	"testing"
)

func TestTruncStr(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"under limit", "Consult", 10, "Consult"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hell…"},
		{"CJK chars", "你好世界", 3, "你好…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncStr(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestStepBarListsAllSteps(t *testing.T) {
	bar := stepBar(stepPayment)
	for _, want := range []string{"1 Service", "2 Time", "3 Payment", "4 Done"} {
		if !strings.Contains(bar, want) {
			t.Errorf("stepBar missing %q: %q", want, bar)
		}
	}
}
