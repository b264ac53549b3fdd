package model

import "time"

// ResourceMetadata - 알림이 가리키는 리소스의 스냅샷
type ResourceMetadata struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Shape string            `json:"shape"`
	Zone  string            `json:"zone"`
	Tags  map[string]string `json:"tags"`
}

// MetricSnapshot - 타임스탬프가 붙은 메트릭 샘플 1건
// 한 번의 조회 내에서는 timestamp 오름차순 정렬
type MetricSnapshot struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// LogEntry - 로그 라인 1건
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Severity  string    `json:"severity"`
}

// EnrichedContext - 알림 1건에 대해 수집된 상황 정보
//
// 세 소스(metadata/metrics/logs) 중 일부가 실패해도 항상 생성 가능
// 실패한 소스의 필드는 nil/빈 시퀀스로 채워짐
type EnrichedContext struct {
	Alert    Alert             `json:"alert"`
	Resource *ResourceMetadata `json:"resource,omitempty"`
	Metrics  []MetricSnapshot  `json:"metrics"`
	Logs     []LogEntry        `json:"logs"`
}

// ResourceShape - 리소스 shape 추출 (필터/검색 쿼리용, 없으면 빈 문자열)
func (c EnrichedContext) ResourceShape() string {
	if c.Resource == nil {
		return ""
	}
	return c.Resource.Shape
}
