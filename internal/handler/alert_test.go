package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ops-checklist/backend/internal/model"
)

type fakeAlertProcessor struct {
	err      error
	received []model.Alert
}

func (f *fakeAlertProcessor) ProcessAlert(ctx context.Context, alert model.Alert) (*model.DynamicChecklist, error) {
	f.received = append(f.received, alert)
	if f.err != nil {
		return nil, f.err
	}
	return &model.DynamicChecklist{
		ID:      "cl-1",
		AlertID: alert.ID,
		Summary: "generated",
		Steps:   []model.ChecklistStep{},
	}, nil
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAlertHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAlertProcessor{}
	r := gin.New()
	r.POST("/api/v1/alerts", NewAlertHandler(fake).ProcessAlert)

	w := postJSON(r, "/api/v1/alerts", `{"id":"a1","title":"HighCPUUsage","severity":"WARNING"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.ProcessAlertResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status != "success" || resp.Checklist == nil || resp.Checklist.AlertID != "a1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAlertHandlerDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAlertProcessor{}
	r := gin.New()
	r.POST("/api/v1/alerts", NewAlertHandler(fake).ProcessAlert)

	w := postJSON(r, "/api/v1/alerts", `{"id":"a1","title":"NoSeverity"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(fake.received) != 1 {
		t.Fatalf("expected 1 processed alert, got %d", len(fake.received))
	}
	if fake.received[0].Severity != model.SeverityInfo {
		t.Fatalf("expected missing severity to default to INFO, got %q", fake.received[0].Severity)
	}
	if fake.received[0].StartsAt.IsZero() {
		t.Fatal("expected StartsAt to be defaulted")
	}
}

func TestAlertHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAlertProcessor{}
	r := gin.New()
	r.POST("/api/v1/alerts", NewAlertHandler(fake).ProcessAlert)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing-id", body: `{"title":"NoID","severity":"INFO"}`},
		{name: "unknown-severity", body: `{"id":"a1","severity":"URGENT"}`},
		{name: "malformed-json", body: `{"id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/api/v1/alerts", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
	if len(fake.received) != 0 {
		t.Fatalf("pipeline should not run for invalid alerts, got %d calls", len(fake.received))
	}
}

func TestAlertHandlerPipelineFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAlertProcessor{err: errors.New("generation failed")}
	r := gin.New()
	r.POST("/api/v1/alerts", NewAlertHandler(fake).ProcessAlert)

	w := postJSON(r, "/api/v1/alerts", `{"id":"a1","severity":"CRITICAL"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAlertmanagerWebhookCounts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAlertProcessor{}
	r := gin.New()
	r.POST("/api/v1/alerts/alertmanager", NewAlertmanagerHandler(fake).Webhook)

	payload := `{
		"status": "firing",
		"receiver": "ops",
		"alerts": [
			{"status":"firing","fingerprint":"f1","labels":{"alertname":"HighCPUUsage","severity":"critical","instance":"vm-1"}},
			{"status":"resolved","fingerprint":"f2","labels":{"alertname":"DiskFull"}},
			{"status":"firing","labels":{"alertname":"NoFingerprint"}}
		]
	}`

	w := postJSON(r, "/api/v1/alerts/alertmanager", payload)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.AlertWebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.AlertCount != 3 || resp.Processed != 1 || resp.Skipped != 2 || resp.Failed != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if len(fake.received) != 1 || fake.received[0].ID != "f1" {
		t.Fatalf("expected only the firing alert to be processed: %+v", fake.received)
	}
}

func TestAlertmanagerWebhookPipelineFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAlertProcessor{err: errors.New("generation failed")}
	r := gin.New()
	r.POST("/api/v1/alerts/alertmanager", NewAlertmanagerHandler(fake).Webhook)

	payload := `{
		"status": "firing",
		"alerts": [
			{"status":"firing","fingerprint":"f1","labels":{"alertname":"HighCPUUsage","severity":"warning"}}
		]
	}`

	w := postJSON(r, "/api/v1/alerts/alertmanager", payload)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 even when the pipeline fails, got %d", w.Code)
	}
	var resp model.AlertWebhookResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Failed != 1 || resp.Processed != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
}
