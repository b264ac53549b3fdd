package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ops-checklist/backend/internal/model"
)

type fakeMetadata struct {
	resource *model.ResourceMetadata
	err      error
	delay    time.Duration
}

func (f *fakeMetadata) Get(ctx context.Context, resourceID string) (*model.ResourceMetadata, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resource, f.err
}

type fakeMetrics struct {
	snapshots []model.MetricSnapshot
	err       error
}

func (f *fakeMetrics) Fetch(ctx context.Context, resourceID string, window time.Duration) ([]model.MetricSnapshot, error) {
	return f.snapshots, f.err
}

type fakeLogs struct {
	entries []model.LogEntry
	err     error
}

func (f *fakeLogs) Fetch(ctx context.Context, resourceID string, window time.Duration, query string) ([]model.LogEntry, error) {
	return f.entries, f.err
}

func testAlert() model.Alert {
	return model.Alert{
		ID:         "fp-1",
		Title:      "HighCPU",
		Severity:   model.SeverityWarning,
		Dimensions: map[string]string{"resourceId": "vm-1"},
	}
}

func TestEnrichAllSourcesSucceed(t *testing.T) {
	enricher := NewEnricher(
		&fakeMetadata{resource: &model.ResourceMetadata{ID: "vm-1", Shape: "vm.standard"}},
		&fakeMetrics{snapshots: []model.MetricSnapshot{{Name: "cpu", Value: 95}}},
		&fakeLogs{entries: []model.LogEntry{{Message: "oom"}}},
		15*time.Minute, time.Second,
	)

	enriched := enricher.Enrich(context.Background(), testAlert())
	if enriched.Resource == nil || enriched.Resource.Shape != "vm.standard" {
		t.Fatalf("resource missing: %+v", enriched.Resource)
	}
	if len(enriched.Metrics) != 1 || len(enriched.Logs) != 1 {
		t.Fatalf("metrics/logs missing: %d, %d", len(enriched.Metrics), len(enriched.Logs))
	}
}

func TestEnrichPartialFailure(t *testing.T) {
	// 메트릭 소스만 실패 - 나머지는 그대로 채워져야 함
	enricher := NewEnricher(
		&fakeMetadata{resource: &model.ResourceMetadata{ID: "vm-1"}},
		&fakeMetrics{err: errors.New("influx down")},
		&fakeLogs{entries: []model.LogEntry{{Message: "oom"}}},
		15*time.Minute, time.Second,
	)

	enriched := enricher.Enrich(context.Background(), testAlert())
	if enriched.Resource == nil {
		t.Fatalf("metadata should survive metrics failure")
	}
	if len(enriched.Metrics) != 0 {
		t.Fatalf("failed source must leave metrics empty")
	}
	if len(enriched.Logs) != 1 {
		t.Fatalf("logs should survive metrics failure")
	}
}

func TestEnrichNoResourceID(t *testing.T) {
	meta := &fakeMetadata{resource: &model.ResourceMetadata{ID: "vm-1"}}
	enricher := NewEnricher(meta, &fakeMetrics{}, &fakeLogs{}, 15*time.Minute, time.Second)

	alert := testAlert()
	alert.Dimensions = nil

	enriched := enricher.Enrich(context.Background(), alert)
	if enriched.Resource != nil || len(enriched.Metrics) != 0 || len(enriched.Logs) != 0 {
		t.Fatalf("alert without resource id must produce alert-only context")
	}
	if enriched.Alert.ID != "fp-1" {
		t.Fatalf("alert not preserved")
	}
}

func TestEnrichNilSources(t *testing.T) {
	enricher := NewEnricher(nil, nil, nil, 15*time.Minute, time.Second)

	enriched := enricher.Enrich(context.Background(), testAlert())
	if enriched.Resource != nil {
		t.Fatalf("expected no resource with nil sources")
	}
}

func TestEnrichSourceTimeout(t *testing.T) {
	enricher := NewEnricher(
		&fakeMetadata{resource: &model.ResourceMetadata{ID: "vm-1"}, delay: 500 * time.Millisecond},
		&fakeMetrics{snapshots: []model.MetricSnapshot{{Name: "cpu"}}},
		nil,
		15*time.Minute, 50*time.Millisecond,
	)

	start := time.Now()
	enriched := enricher.Enrich(context.Background(), testAlert())
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Fatalf("slow source not cut off by timeout: %v", elapsed)
	}
	if enriched.Resource != nil {
		t.Fatalf("timed out source must be treated as absent")
	}
	if len(enriched.Metrics) != 1 {
		t.Fatalf("fast source should still succeed")
	}
}
