// Alertmanager 웹훅 페이로드 및 정규화된 Alert 구조체를 정의
// handler, enrich, pipeline 레이어에서 공통으로 사용하기 때문에 model 레이어에 별도로 정의

package model

import (
	"strings"
	"time"
)

// Severity - 정규화된 알림 심각도
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Alert - 정규화된 개별 알림
// 모니터링 소스(Alertmanager 등)에서 들어온 이벤트를 파이프라인 공통 형태로 변환한 것
type Alert struct {
	// ID: 알림 고유 식별자 (Alertmanager의 경우 Fingerprint)
	ID string `json:"id"`

	// Title: 알림 이름 (예: "HighMemoryUsage", "PodCrashLooping")
	Title string `json:"title"`

	// Message: 알림 상세 설명
	Message string `json:"message"`

	Severity Severity `json:"severity"`

	// Source: 알림을 발생시킨 서비스/시스템 이름
	Source string `json:"source"`

	// Dimensions: 리소스 식별용 키-값 (예: resourceId, zone)
	Dimensions map[string]string `json:"dimensions"`

	// Labels: 소스가 붙인 나머지 라벨
	Labels map[string]string `json:"labels"`

	StartsAt time.Time `json:"startsAt"`
}

// ResourceID - enrichment에 사용할 리소스 식별자 추출
// dimensions.resourceId > dimensions.resource_id > labels.instance 순서로 조회
func (a Alert) ResourceID() string {
	if id := a.Dimensions["resourceId"]; id != "" {
		return id
	}
	if id := a.Dimensions["resource_id"]; id != "" {
		return id
	}
	return a.Labels["instance"]
}

// Valid - 파이프라인 투입 전 최소 검증
func (a Alert) Valid() bool {
	switch a.Severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
	default:
		return false
	}
	return a.ID != ""
}

// AlertmanagerWebhook - Alertmanager 웹훅 페이로드
// 여러 개의 알림이 그룹으로 묶여서 전송 가능
type AlertmanagerWebhook struct {
	Version string `json:"version"`

	// 동일한 GroupKey를 가진 알림들은 함께 그룹핑됨
	GroupKey string `json:"groupKey"`

	// max_alerts 설정으로 인해 생략된 알림이 있을 경우 그 개수
	TruncatedAlerts int    `json:"truncatedAlerts"`
	Status          string `json:"status"`
	Receiver        string `json:"receiver"`

	// route.group_by 설정에 따라 결정되는 그룹핑에 사용된 라벨
	GroupLabels map[string]string `json:"groupLabels"`

	// 그룹 내 모든 알림에 공통으로 존재하는 라벨
	CommonLabels map[string]string `json:"commonLabels"`

	// 그룹 내 모든 알림에 공통으로 존재하는 어노테이션
	CommonAnnotations map[string]string `json:"commonAnnotations"`
	ExternalURL       string            `json:"externalURL"`

	// 개별 알림 리스트
	Alerts []AlertmanagerAlert `json:"alerts"`
}

// AlertmanagerAlert - Alertmanager 개별 알림 (정규화 전)
type AlertmanagerAlert struct {
	Status string `json:"status"`

	// - alertname: 알림 이름 (예: "PodCrashLooping", "HighMemoryUsage")
	// - severity: 심각도 (예: "critical", "warning", "info")
	// - instance: 문제 발생 리소스
	Labels map[string]string `json:"labels"`

	// - summary: 알림 요약
	// - description: 알림 상세 설명
	Annotations map[string]string `json:"annotations"`

	// StartsAt: 알림 발생 시각 (UTC)
	StartsAt time.Time `json:"startsAt"`

	// EndsAt: resolved 상태일 때만 유효한 값 설정
	EndsAt time.Time `json:"endsAt"`

	// GeneratorURL: 알림을 생성한 Prometheus 쿼리 URL
	GeneratorURL string `json:"generatorURL"`

	// Fingerprint: 알림 고유 식별자 (Labels의 조합으로 생성되는 해시값)
	Fingerprint string `json:"fingerprint"`
}

// NormalizeAlertmanager - Alertmanager 알림을 정규화된 Alert로 변환
//
// resolved(OK 상태) 알림은 Alert가 되지 않음 - false 반환
// severity 라벨이 없거나 알 수 없는 값이면 INFO로 처리
func NormalizeAlertmanager(a AlertmanagerAlert) (Alert, bool) {
	if a.Status != "firing" {
		return Alert{}, false
	}
	if a.Fingerprint == "" {
		return Alert{}, false
	}

	dims := map[string]string{}
	if instance := a.Labels["instance"]; instance != "" {
		dims["resourceId"] = instance
	}
	if zone := a.Labels["zone"]; zone != "" {
		dims["zone"] = zone
	}

	labels := make(map[string]string, len(a.Labels))
	for k, v := range a.Labels {
		labels[k] = v
	}

	message := a.Annotations["description"]
	if message == "" {
		message = a.Annotations["summary"]
	}

	return Alert{
		ID:         a.Fingerprint,
		Title:      a.Labels["alertname"],
		Message:    message,
		Severity:   ParseSeverity(a.Labels["severity"]),
		Source:     a.Labels["job"],
		Dimensions: dims,
		Labels:     labels,
		StartsAt:   a.StartsAt,
	}, true
}

// ParseSeverity - 소스별 심각도 문자열을 Severity enum으로 변환
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "page", "p1":
		return SeverityCritical
	case "warning", "warn", "p2":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
