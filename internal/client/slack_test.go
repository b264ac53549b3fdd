package client

import (
	"testing"

	"github.com/ops-checklist/backend/internal/model"
)

func TestToSlackMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold-only",
			input: "This is **bold** text.",
			want:  "This is *bold* text.",
		},
		{
			name:  "inline-code-protected",
			input: "Use `2 ** 3` and **bold**.",
			want:  "Use `2 ** 3` and *bold*.",
		},
		{
			name:  "code-block-protected",
			input: "```bash\ntop -o %CPU\n```\n**bold**",
			want:  "```bash\ntop -o %CPU\n```\n*bold*",
		},
		{
			name:  "heading-converted",
			input: "### Summary\ncontent",
			want:  "*Summary*\ncontent",
		},
		{
			name:  "heading-protected-in-code-block",
			input: "```\n### Summary\n```\n**bold**",
			want:  "```\n### Summary\n```\n*bold*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toSlackMarkdown(tt.input); got != tt.want {
				t.Fatalf("toSlackMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity model.Severity
		want     string
	}{
		{severity: model.SeverityCritical, want: "#dc3545"},
		{severity: model.SeverityWarning, want: "#ffc107"},
		{severity: model.SeverityInfo, want: "#36a64f"},
	}

	for _, tt := range tests {
		if got := severityColor(tt.severity); got != tt.want {
			t.Fatalf("severityColor(%s) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestStepsToFields(t *testing.T) {
	steps := []model.ChecklistStep{
		{Description: "Check **top** processes", Priority: model.PriorityHigh},
		{Description: "Review pool", Priority: model.PriorityMedium},
	}

	fields := stepsToFields(steps)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Title != "1. [HIGH]" {
		t.Fatalf("field title = %q", fields[0].Title)
	}
	if fields[0].Value != "Check *top* processes" {
		t.Fatalf("step description not converted to mrkdwn: %q", fields[0].Value)
	}
	if fields[1].Title != "2. [MEDIUM]" {
		t.Fatalf("field title = %q", fields[1].Title)
	}
}
