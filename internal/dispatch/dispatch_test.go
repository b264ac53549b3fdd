package dispatch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ops-checklist/backend/internal/model"
)

type fakeSlack struct {
	configured bool
	sent       int
	err        error
}

func (f *fakeSlack) IsConfigured() bool { return f.configured }

func (f *fakeSlack) SendChecklist(checklist model.DynamicChecklist, alert model.Alert) error {
	f.sent++
	return f.err
}

type fakeConfigDB struct {
	configs []model.WebhookConfig
	err     error
}

func (f *fakeConfigDB) GetWebhookConfigs(ctx context.Context) ([]model.WebhookConfig, error) {
	return f.configs, f.err
}

func sampleChecklist() model.DynamicChecklist {
	return model.DynamicChecklist{
		ID:      "cl-1",
		AlertID: "fp-1",
		Summary: "CPU saturated",
		Steps:   []model.ChecklistStep{{Description: "Check top", Priority: model.PriorityHigh}},
	}
}

func sampleAlert() model.Alert {
	return model.Alert{ID: "fp-1", Title: "HighCPU", Severity: model.SeverityCritical}
}

func TestDispatchSendsRenderedWebhook(t *testing.T) {
	var gotBody string
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotHeader = r.Header.Get("X-Team")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	configDB := &fakeConfigDB{configs: []model.WebhookConfig{{
		ID:      1,
		URL:     server.URL,
		Method:  http.MethodPost,
		Headers: []model.WebhookHeader{{Key: "X-Team", Value: "oncall"}},
		Body:    `{"summary":"{{checklist.summary}}","alert":"{{alert.title}}"}`,
	}}}

	d := NewDispatcher(&fakeSlack{}, configDB)
	d.Dispatch(context.Background(), sampleChecklist(), sampleAlert())

	if !strings.Contains(gotBody, "CPU saturated") || !strings.Contains(gotBody, "HighCPU") {
		t.Fatalf("template not rendered: %q", gotBody)
	}
	if gotHeader != "oncall" {
		t.Fatalf("custom header not sent: %q", gotHeader)
	}
}

func TestDispatchContinuesPastFailedTarget(t *testing.T) {
	var secondCalled bool
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	configDB := &fakeConfigDB{configs: []model.WebhookConfig{
		{ID: 1, URL: failing.URL, Method: http.MethodPost, Body: "a"},
		{ID: 2, URL: ok.URL, Method: http.MethodPost, Body: "b"},
	}}

	d := NewDispatcher(&fakeSlack{}, configDB)
	d.Dispatch(context.Background(), sampleChecklist(), sampleAlert())

	if !secondCalled {
		t.Fatalf("failure of one target must not skip the rest")
	}
}

func TestDispatchSlackOnlyWhenConfigured(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
		wantSent   int
	}{
		{name: "configured", configured: true, wantSent: 1},
		{name: "not-configured", configured: false, wantSent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slack := &fakeSlack{configured: tt.configured}
			d := NewDispatcher(slack, &fakeConfigDB{})
			d.Dispatch(context.Background(), sampleChecklist(), sampleAlert())
			if slack.sent != tt.wantSent {
				t.Fatalf("slack sent %d times, want %d", slack.sent, tt.wantSent)
			}
		})
	}
}

func TestDispatchSlackFailureDoesNotStopWebhooks(t *testing.T) {
	var webhookCalled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		webhookCalled = true
	}))
	defer server.Close()

	slack := &fakeSlack{configured: true, err: errors.New("slack api error")}
	configDB := &fakeConfigDB{configs: []model.WebhookConfig{{ID: 1, URL: server.URL, Method: http.MethodPost}}}

	d := NewDispatcher(slack, configDB)
	d.Dispatch(context.Background(), sampleChecklist(), sampleAlert())

	if !webhookCalled {
		t.Fatalf("slack failure must not stop webhook delivery")
	}
}

func TestDispatchNilDependencies(t *testing.T) {
	d := NewDispatcher(nil, nil)
	// 의존성이 없어도 패닉 없이 no-op
	d.Dispatch(context.Background(), sampleChecklist(), sampleAlert())
}

func TestDispatchSkipsEmptyURL(t *testing.T) {
	configDB := &fakeConfigDB{configs: []model.WebhookConfig{{ID: 1, URL: "", Method: http.MethodPost}}}
	d := NewDispatcher(&fakeSlack{}, configDB)
	d.Dispatch(context.Background(), sampleChecklist(), sampleAlert())
}
