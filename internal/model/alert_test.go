package model

import (
	"testing"
	"time"
)

func TestNormalizeAlertmanager(t *testing.T) {
	startsAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raw := AlertmanagerAlert{
		Status: "firing",
		Labels: map[string]string{
			"alertname": "HighCPUUsage",
			"severity":  "critical",
			"instance":  "vm-db-01",
			"zone":      "kr-central-2-a",
			"job":       "node-exporter",
		},
		Annotations: map[string]string{
			"summary":     "CPU usage is high",
			"description": "CPU usage above 90% for 5 minutes",
		},
		StartsAt:    startsAt,
		Fingerprint: "abc123",
	}

	alert, ok := NormalizeAlertmanager(raw)
	if !ok {
		t.Fatal("expected firing alert to normalize")
	}
	if alert.ID != "abc123" {
		t.Fatalf("ID = %q", alert.ID)
	}
	if alert.Title != "HighCPUUsage" {
		t.Fatalf("Title = %q", alert.Title)
	}
	if alert.Message != "CPU usage above 90% for 5 minutes" {
		t.Fatalf("expected description to win over summary, got %q", alert.Message)
	}
	if alert.Severity != SeverityCritical {
		t.Fatalf("Severity = %q", alert.Severity)
	}
	if alert.Source != "node-exporter" {
		t.Fatalf("Source = %q", alert.Source)
	}
	if alert.Dimensions["resourceId"] != "vm-db-01" {
		t.Fatalf("Dimensions[resourceId] = %q", alert.Dimensions["resourceId"])
	}
	if alert.Dimensions["zone"] != "kr-central-2-a" {
		t.Fatalf("Dimensions[zone] = %q", alert.Dimensions["zone"])
	}
	if !alert.StartsAt.Equal(startsAt) {
		t.Fatalf("StartsAt = %v", alert.StartsAt)
	}
}

func TestNormalizeAlertmanagerSummaryFallback(t *testing.T) {
	raw := AlertmanagerAlert{
		Status:      "firing",
		Labels:      map[string]string{"alertname": "DiskFull"},
		Annotations: map[string]string{"summary": "disk almost full"},
		Fingerprint: "f1",
	}

	alert, ok := NormalizeAlertmanager(raw)
	if !ok {
		t.Fatal("expected alert to normalize")
	}
	if alert.Message != "disk almost full" {
		t.Fatalf("Message = %q", alert.Message)
	}
	if alert.Severity != SeverityInfo {
		t.Fatalf("expected missing severity to default to INFO, got %q", alert.Severity)
	}
}

func TestNormalizeAlertmanagerSkips(t *testing.T) {
	tests := []struct {
		name string
		raw  AlertmanagerAlert
	}{
		{
			name: "resolved",
			raw:  AlertmanagerAlert{Status: "resolved", Fingerprint: "f1"},
		},
		{
			name: "missing-fingerprint",
			raw:  AlertmanagerAlert{Status: "firing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := NormalizeAlertmanager(tt.raw); ok {
				t.Fatal("expected alert to be skipped")
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		raw  string
		want Severity
	}{
		{raw: "critical", want: SeverityCritical},
		{raw: "CRITICAL", want: SeverityCritical},
		{raw: "page", want: SeverityCritical},
		{raw: "p1", want: SeverityCritical},
		{raw: "warning", want: SeverityWarning},
		{raw: " warn ", want: SeverityWarning},
		{raw: "p2", want: SeverityWarning},
		{raw: "info", want: SeverityInfo},
		{raw: "unknown", want: SeverityInfo},
		{raw: "", want: SeverityInfo},
	}

	for _, tt := range tests {
		if got := ParseSeverity(tt.raw); got != tt.want {
			t.Fatalf("ParseSeverity(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestAlertResourceID(t *testing.T) {
	tests := []struct {
		name  string
		alert Alert
		want  string
	}{
		{
			name: "dimensions-resourceId-wins",
			alert: Alert{
				Dimensions: map[string]string{"resourceId": "vm-1", "resource_id": "vm-2"},
				Labels:     map[string]string{"instance": "vm-3"},
			},
			want: "vm-1",
		},
		{
			name: "dimensions-resource_id-second",
			alert: Alert{
				Dimensions: map[string]string{"resource_id": "vm-2"},
				Labels:     map[string]string{"instance": "vm-3"},
			},
			want: "vm-2",
		},
		{
			name:  "labels-instance-fallback",
			alert: Alert{Labels: map[string]string{"instance": "vm-3"}},
			want:  "vm-3",
		},
		{
			name:  "no-identifier",
			alert: Alert{},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.alert.ResourceID(); got != tt.want {
				t.Fatalf("ResourceID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlertValid(t *testing.T) {
	tests := []struct {
		name  string
		alert Alert
		want  bool
	}{
		{name: "valid", alert: Alert{ID: "a1", Severity: SeverityWarning}, want: true},
		{name: "missing-id", alert: Alert{Severity: SeverityInfo}, want: false},
		{name: "unknown-severity", alert: Alert{ID: "a1", Severity: "URGENT"}, want: false},
		{name: "empty-severity", alert: Alert{ID: "a1"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.alert.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
