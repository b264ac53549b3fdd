package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ops-checklist/backend/internal/model"
)

// webhookRepo - DB 인터페이스
type webhookRepo interface {
	GetWebhookConfigs(ctx context.Context) ([]model.WebhookConfig, error)
	GetWebhookConfigByID(ctx context.Context, id int) (*model.WebhookConfig, error)
	CreateWebhookConfig(ctx context.Context, cfg model.WebhookConfig) (int, error)
	UpdateWebhookConfig(ctx context.Context, id int, cfg model.WebhookConfig) error
	DeleteWebhookConfig(ctx context.Context, id int) error
}

// WebhookService - 웹훅 설정 비즈니스 로직
type WebhookService struct {
	db webhookRepo
}

func NewWebhookService(db webhookRepo) *WebhookService {
	return &WebhookService{db: db}
}

func (s *WebhookService) ListWebhookConfigs(ctx context.Context) ([]model.WebhookConfig, error) {
	return s.db.GetWebhookConfigs(ctx)
}

func (s *WebhookService) GetWebhookConfig(ctx context.Context, id int) (*model.WebhookConfig, error) {
	return s.db.GetWebhookConfigByID(ctx, id)
}

func (s *WebhookService) CreateWebhookConfig(ctx context.Context, req model.WebhookConfigRequest) (int, error) {
	cfg, err := configFromRequest(req)
	if err != nil {
		return 0, err
	}
	return s.db.CreateWebhookConfig(ctx, cfg)
}

func (s *WebhookService) UpdateWebhookConfig(ctx context.Context, id int, req model.WebhookConfigRequest) error {
	cfg, err := configFromRequest(req)
	if err != nil {
		return err
	}
	return s.db.UpdateWebhookConfig(ctx, id, cfg)
}

func (s *WebhookService) DeleteWebhookConfig(ctx context.Context, id int) error {
	return s.db.DeleteWebhookConfig(ctx, id)
}

// configFromRequest - 요청 검증 후 저장용 구조체로 변환
// Method 미지정 시 POST
func configFromRequest(req model.WebhookConfigRequest) (model.WebhookConfig, error) {
	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return model.WebhookConfig{}, ErrInvalidInput
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return model.WebhookConfig{}, ErrInvalidInput
	}

	cfg := model.WebhookConfig{
		URL:    req.URL,
		Method: method,
		Body:   req.Body,
	}
	if req.Headers != nil {
		cfg.Headers = req.Headers
	} else {
		cfg.Headers = []model.WebhookHeader{}
	}
	return cfg, nil
}
