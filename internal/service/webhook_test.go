package service

import (
	"errors"
	"testing"

	"github.com/ops-checklist/backend/internal/model"
)

func TestConfigFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     model.WebhookConfigRequest
		wantErr bool
		check   func(t *testing.T, cfg model.WebhookConfig)
	}{
		{
			name: "valid",
			req: model.WebhookConfigRequest{
				URL:     "https://hooks.example.com/notify",
				Method:  "put",
				Headers: []model.WebhookHeader{{Key: "X-Token", Value: "abc"}},
				Body:    `{"text": "{{checklist.summary}}"}`,
			},
			check: func(t *testing.T, cfg model.WebhookConfig) {
				if cfg.Method != "PUT" {
					t.Fatalf("Method = %q", cfg.Method)
				}
				if len(cfg.Headers) != 1 || cfg.Headers[0].Key != "X-Token" {
					t.Fatalf("Headers = %v", cfg.Headers)
				}
			},
		},
		{
			name: "method-defaults-to-post",
			req:  model.WebhookConfigRequest{URL: "https://hooks.example.com/notify"},
			check: func(t *testing.T, cfg model.WebhookConfig) {
				if cfg.Method != "POST" {
					t.Fatalf("Method = %q", cfg.Method)
				}
			},
		},
		{
			name: "nil-headers-become-empty-slice",
			req:  model.WebhookConfigRequest{URL: "https://hooks.example.com/notify"},
			check: func(t *testing.T, cfg model.WebhookConfig) {
				if cfg.Headers == nil {
					t.Fatal("Headers should not be nil")
				}
				if len(cfg.Headers) != 0 {
					t.Fatalf("Headers = %v", cfg.Headers)
				}
			},
		},
		{
			name:    "missing-scheme",
			req:     model.WebhookConfigRequest{URL: "hooks.example.com/notify"},
			wantErr: true,
		},
		{
			name:    "empty-url",
			req:     model.WebhookConfigRequest{URL: ""},
			wantErr: true,
		},
		{
			name:    "disallowed-method",
			req:     model.WebhookConfigRequest{URL: "https://hooks.example.com/notify", Method: "DELETE"},
			wantErr: true,
		},
		{
			name:    "get-not-allowed",
			req:     model.WebhookConfigRequest{URL: "https://hooks.example.com/notify", Method: "GET"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := configFromRequest(tt.req)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
