// 체크리스트 전송
//
// 처리 흐름:
//  1. Slack이 설정되어 있으면 체크리스트를 Slack 메시지로 전송
//  2. 저장된 webhook config를 모두 조회해 템플릿 렌더링 후 HTTP 전송
//
// 개별 대상 실패는 로그만 남기고 나머지 대상은 계속 전송됨 -
// 전송 결과는 파이프라인 성패에 영향을 주지 않음

package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ops-checklist/backend/internal/model"
	tmpl "github.com/ops-checklist/backend/internal/template"
)

// slackSender - Slack 전송 클라이언트 인터페이스
type slackSender interface {
	IsConfigured() bool
	SendChecklist(checklist model.DynamicChecklist, alert model.Alert) error
}

// WebhookConfigReader - DB 인터페이스 (delivery 전용, nil 허용)
type WebhookConfigReader interface {
	GetWebhookConfigs(ctx context.Context) ([]model.WebhookConfig, error)
}

// Dispatcher - 생성된 체크리스트를 Slack과 사용자 설정 webhook으로 전송
type Dispatcher struct {
	slack      slackSender
	configDB   WebhookConfigReader
	httpClient *http.Client
}

// NewDispatcher 생성자 - slack, configDB는 각각 nil 허용
func NewDispatcher(slack slackSender, configDB WebhookConfigReader) *Dispatcher {
	return &Dispatcher{
		slack:    slack,
		configDB: configDB,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Dispatch - 체크리스트를 설정된 모든 대상에 전송
// 개별 대상 실패 시 로그만 남기고 나머지는 계속 전송합니다.
func (d *Dispatcher) Dispatch(ctx context.Context, checklist model.DynamicChecklist, alert model.Alert) {
	if d.slack != nil && d.slack.IsConfigured() {
		if err := d.slack.SendChecklist(checklist, alert); err != nil {
			log.Printf("[Dispatch] Failed to send to Slack (checklist=%s): %v", checklist.ID, err)
		} else {
			log.Printf("[Dispatch] Sent to Slack (checklist=%s)", checklist.ID)
		}
	}

	d.deliverWebhooks(ctx, checklist, alert)
}

// deliverWebhooks - 저장된 모든 webhook config에 렌더링된 body를 HTTP로 전송
func (d *Dispatcher) deliverWebhooks(ctx context.Context, checklist model.DynamicChecklist, alert model.Alert) {
	if d.configDB == nil {
		return
	}

	configs, err := d.configDB.GetWebhookConfigs(ctx)
	if err != nil {
		log.Printf("[Dispatch] Failed to load webhook configs: %v", err)
		return
	}
	if len(configs) == 0 {
		return
	}

	checklistData := tmpl.ChecklistDataFromModel(checklist)
	alertData := tmpl.AlertDataFromModel(alert)

	for _, cfg := range configs {
		if cfg.URL == "" {
			log.Printf("[Dispatch] Skipping config id=%d: URL is empty", cfg.ID)
			continue
		}

		rendered := tmpl.RenderBody(cfg.Body, &checklistData, &alertData)

		if err := d.sendHTTP(ctx, cfg, rendered); err != nil {
			log.Printf("[Dispatch] Failed to deliver to %s (config id=%d): %v", cfg.URL, cfg.ID, err)
		} else {
			log.Printf("[Dispatch] Delivered to %s (config id=%d)", cfg.URL, cfg.ID)
		}
	}
}

// sendHTTP - 단일 webhook config로 HTTP 요청 전송
func (d *Dispatcher) sendHTTP(ctx context.Context, cfg model.WebhookConfig, body string) error {
	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, bytes.NewBufferString(body))
	if err != nil {
		return err
	}

	// Content-Type 기본값 설정 (없으면 application/json)
	hasContentType := false
	for _, h := range cfg.Headers {
		if h.Key != "" {
			req.Header.Set(h.Key, h.Value)
		}
		if http.CanonicalHeaderKey(h.Key) == "Content-Type" {
			hasContentType = true
		}
	}
	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
