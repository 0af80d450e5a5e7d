package report_test

import (
	"testing"

	"github.com/pitchpartner/pitchpartner/internal/report"
)

func TestStripReasoning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "Strong pitch overall.",
			want: "Strong pitch overall.",
		},
		{
			name: "think block removed",
			in:   "<think>the user scored low, be gentle</think>Good effort today.",
			want: "Good effort today.",
		},
		{
			name: "reasoning block removed",
			in:   "Before: <reasoning>x</reasoning> after.",
			want: "Before:  after.",
		},
		{
			name: "case insensitive",
			in:   "<THINK>hidden</THINK>Visible.",
			want: "Visible.",
		},
		{
			name: "unterminated opener drops the rest",
			in:   "Keep this. <think>and everything after",
			want: "Keep this.",
		},
		{
			name: "stray closer removed",
			in:   "No opener here</think> but text survives.",
			want: "No opener here but text survives.",
		},
		{
			name: "multiple blocks",
			in:   "<think>a</think>One. <think>b</think>Two.",
			want: "One. Two.",
		},
		{
			name: "result trimmed",
			in:   "  <think>pad</think>  Report body.  ",
			want: "Report body.",
		},
		{
			name: "only markup yields empty",
			in:   "<think>nothing visible</think>",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := report.StripReasoning(tt.in); got != tt.want {
				t.Errorf("StripReasoning(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
