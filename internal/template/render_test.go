package template

import (
	"strings"
	"testing"
	"time"

	"github.com/ops-checklist/backend/internal/model"
)

func sampleChecklist() model.DynamicChecklist {
	return model.DynamicChecklist{
		ID:      "cl-1",
		AlertID: "fp-1",
		Summary: "CPU saturated",
		Steps: []model.ChecklistStep{
			{Description: "Check top processes", Priority: model.PriorityHigh},
			{Description: "Review connection pool", Priority: model.PriorityMedium},
		},
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderBodyChecklistVariables(t *testing.T) {
	data := ChecklistDataFromModel(sampleChecklist())
	body := `{"id":"{{checklist.id}}","summary":"{{checklist.summary}}","count":"{{checklist.step_count}}"}`

	got := RenderBody(body, &data, nil)
	want := `{"id":"cl-1","summary":"CPU saturated","count":"2"}`
	if got != want {
		t.Fatalf("RenderBody() = %q, want %q", got, want)
	}
}

func TestRenderBodyStepsFlattened(t *testing.T) {
	data := ChecklistDataFromModel(sampleChecklist())

	got := RenderBody("{{checklist.steps}}", &data, nil)
	if !strings.Contains(got, "1. [HIGH] Check top processes") {
		t.Fatalf("first step missing: %q", got)
	}
	if !strings.Contains(got, "2. [MEDIUM] Review connection pool") {
		t.Fatalf("second step missing: %q", got)
	}
}

func TestRenderBodyAlertVariables(t *testing.T) {
	alert := AlertDataFromModel(model.Alert{
		ID:         "fp-1",
		Title:      "HighCPU",
		Severity:   model.SeverityCritical,
		Dimensions: map[string]string{"resourceId": "vm-1"},
		StartsAt:   time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC),
	})

	got := RenderBody("{{alert.title}} {{alert.severity}} {{alert.resource_id}} {{alert.starts_at}}", nil, &alert)
	want := "HighCPU CRITICAL vm-1 2026-08-01T11:00:00Z"
	if got != want {
		t.Fatalf("RenderBody() = %q, want %q", got, want)
	}
}

func TestRenderBodyNilDataBecomesEmpty(t *testing.T) {
	got := RenderBody("[{{checklist.id}}][{{alert.id}}]", nil, nil)
	if got != "[][]" {
		t.Fatalf("nil data must render empty strings, got %q", got)
	}
}
