// 체크리스트 생성 API(google genai) 클라이언트 정의
//
// ResponseSchema로 JSON 출력을 강제하여 {summary, steps[]} 형태의
// 구조화된 체크리스트를 받음

package client

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/ops-checklist/backend/internal/config"
	"github.com/ops-checklist/backend/internal/model"
)

type GenerationClient struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func NewGenerationClient(cfg config.GenerationConfig) (*GenerationClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &GenerationClient{
		client:      client,
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
	}, nil
}

// generatedChecklist - 생성 모델의 JSON 출력 형태
type generatedChecklist struct {
	Summary string          `json:"summary"`
	Steps   []generatedStep `json:"steps"`
}

type generatedStep struct {
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	SourceChunkID string `json:"source_chunk_id"`
}

// checklistSchema - 생성 출력 스키마 (summary + steps 필수)
func checklistSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString},
			"steps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"description":     {Type: genai.TypeString},
						"priority":        {Type: genai.TypeString},
						"source_chunk_id": {Type: genai.TypeString},
					},
					Required: []string{"description", "priority"},
				},
			},
		},
		Required: []string{"summary", "steps"},
	}
}

// Generate - 프롬프트로 체크리스트 생성 요청 (동기)
//
// 생성 실패는 파이프라인에서 유일하게 요청 전체를 실패시키는 단계이므로
// 에러를 그대로 올려보냄 (호출자가 타임아웃 컨텍스트를 관리)
func (c *GenerationClient) Generate(ctx context.Context, prompt string) (string, []model.ChecklistStep, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   checklistSchema(),
		Temperature:      genai.Ptr(c.temperature),
		MaxOutputTokens:  c.maxTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("generation request failed: %w", err)
	}

	raw := res.Text()
	if raw == "" {
		return "", nil, fmt.Errorf("empty generation result")
	}

	var out generatedChecklist
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", nil, fmt.Errorf("failed to parse generation result: %w", err)
	}
	if len(out.Steps) == 0 {
		return "", nil, fmt.Errorf("generation returned no steps")
	}

	steps := make([]model.ChecklistStep, 0, len(out.Steps))
	for _, s := range out.Steps {
		if s.Description == "" {
			continue
		}
		steps = append(steps, model.ChecklistStep{
			Description:   s.Description,
			Priority:      model.ParseStepPriority(s.Priority),
			SourceChunkID: s.SourceChunkID,
		})
	}
	if len(steps) == 0 {
		return "", nil, fmt.Errorf("generation returned no usable steps")
	}
	return out.Summary, steps, nil
}
