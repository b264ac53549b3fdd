package model

import (
	"encoding/json"
	"strings"
	"time"
)

// StepPriority - 체크리스트 단계 우선순위
type StepPriority string

const (
	PriorityLow      StepPriority = "LOW"
	PriorityMedium   StepPriority = "MEDIUM"
	PriorityHigh     StepPriority = "HIGH"
	PriorityCritical StepPriority = "CRITICAL"
)

// ParseStepPriority - 생성 모델이 돌려준 우선순위 문자열 정규화
// 알 수 없는 값은 MEDIUM으로 처리
func ParseStepPriority(raw string) StepPriority {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "LOW":
		return PriorityLow
	case "HIGH":
		return PriorityHigh
	case "CRITICAL":
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// ChecklistStep - 실행 가능한 단계 1건
type ChecklistStep struct {
	Description string       `json:"description"`
	Priority    StepPriority `json:"priority"`

	// SourceChunkID: 근거가 된 런북 청크 (없으면 빈 문자열)
	SourceChunkID string `json:"source_chunk_id,omitempty"`
}

// DynamicChecklist - 생성된 트러블슈팅 체크리스트
// 성공 시 Steps는 항상 1건 이상
type DynamicChecklist struct {
	ID        string          `json:"id"`
	AlertID   string          `json:"alert_id"`
	Summary   string          `json:"summary"`
	Steps     []ChecklistStep `json:"steps"`
	CreatedAt time.Time       `json:"created_at"`
}

// 프론트엔드 리스트 출력용 구조체
type ChecklistListItem struct {
	ID         string    `json:"id"`
	AlertID    string    `json:"alert_id"`
	AlertTitle string    `json:"alert_title"`
	Severity   string    `json:"severity"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChecklistDetailResponse struct {
	ID         string    `json:"id"`
	AlertID    string    `json:"alert_id"`
	AlertTitle string    `json:"alert_title"`
	Severity   string    `json:"severity"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`

	// DB의 JSONB 컬럼을 그대로 바이트로 받아서 전달
	Steps json.RawMessage `json:"steps" swaggertype:"object"`
}
