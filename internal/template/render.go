// Package template provides webhook body template rendering.
//
// 지원하는 변수 형식:
//
//	{{checklist.id}}, {{checklist.summary}}, {{checklist.steps}},
//	{{checklist.step_count}}, {{checklist.created_at}}
//
//	{{alert.id}}, {{alert.title}}, {{alert.message}}, {{alert.severity}},
//	{{alert.source}}, {{alert.resource_id}}, {{alert.starts_at}}
package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/ops-checklist/backend/internal/model"
)

// ChecklistData - 템플릿 렌더링에 사용할 체크리스트 데이터
type ChecklistData struct {
	ID        string
	Summary   string
	Steps     string
	StepCount int
	CreatedAt time.Time
}

// AlertData - 템플릿 렌더링에 사용할 알림 데이터
type AlertData struct {
	ID         string
	Title      string
	Message    string
	Severity   string
	Source     string
	ResourceID string
	StartsAt   time.Time
}

// ChecklistDataFromModel - model.DynamicChecklist에서 ChecklistData 생성
// Steps는 "1. [PRIORITY] description" 형식의 줄 목록으로 평탄화
func ChecklistDataFromModel(checklist model.DynamicChecklist) ChecklistData {
	lines := make([]string, 0, len(checklist.Steps))
	for i, step := range checklist.Steps {
		lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, step.Priority, step.Description))
	}
	return ChecklistData{
		ID:        checklist.ID,
		Summary:   checklist.Summary,
		Steps:     strings.Join(lines, "\n"),
		StepCount: len(checklist.Steps),
		CreatedAt: checklist.CreatedAt,
	}
}

// AlertDataFromModel - model.Alert에서 AlertData 생성
func AlertDataFromModel(alert model.Alert) AlertData {
	return AlertData{
		ID:         alert.ID,
		Title:      alert.Title,
		Message:    alert.Message,
		Severity:   string(alert.Severity),
		Source:     alert.Source,
		ResourceID: alert.ResourceID(),
		StartsAt:   alert.StartsAt,
	}
}

// RenderBody - webhook body 템플릿의 변수를 실제 값으로 치환
//
// checklist 또는 alert 중 하나만 전달해도 동작합니다.
// nil로 전달된 항목의 변수는 빈 문자열로 치환됩니다.
func RenderBody(body string, checklist *ChecklistData, alert *AlertData) string {
	pairs := make([]string, 0, 24)

	// --- Checklist 변수 ---
	if checklist != nil {
		pairs = append(pairs,
			"{{checklist.id}}", checklist.ID,
			"{{checklist.summary}}", checklist.Summary,
			"{{checklist.steps}}", checklist.Steps,
			"{{checklist.step_count}}", fmt.Sprintf("%d", checklist.StepCount),
			"{{checklist.created_at}}", checklist.CreatedAt.Format(time.RFC3339),
		)
	} else {
		pairs = append(pairs,
			"{{checklist.id}}", "",
			"{{checklist.summary}}", "",
			"{{checklist.steps}}", "",
			"{{checklist.step_count}}", "",
			"{{checklist.created_at}}", "",
		)
	}

	// --- Alert 변수 ---
	if alert != nil {
		startsAt := ""
		if !alert.StartsAt.IsZero() {
			startsAt = alert.StartsAt.Format(time.RFC3339)
		}
		pairs = append(pairs,
			"{{alert.id}}", alert.ID,
			"{{alert.title}}", alert.Title,
			"{{alert.message}}", alert.Message,
			"{{alert.severity}}", alert.Severity,
			"{{alert.source}}", alert.Source,
			"{{alert.resource_id}}", alert.ResourceID,
			"{{alert.starts_at}}", startsAt,
		)
	} else {
		pairs = append(pairs,
			"{{alert.id}}", "",
			"{{alert.title}}", "",
			"{{alert.message}}", "",
			"{{alert.severity}}", "",
			"{{alert.source}}", "",
			"{{alert.resource_id}}", "",
			"{{alert.starts_at}}", "",
		)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}
