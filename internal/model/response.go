package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AuthLogoutResponse struct {
	Status string `json:"status"`
}

type AuthMeResponse struct {
	UserID  int64  `json:"userId"`
	LoginID string `json:"loginId"`
}

type AuthConfigResponse struct {
	AllowSignup bool `json:"allowSignup"`
	OIDCEnabled bool `json:"oidcEnabled"`
}

type ChecklistListEnvelope struct {
	Status string              `json:"status"`
	Data   []ChecklistListItem `json:"data"`
}

type ChecklistDetailEnvelope struct {
	Status string                   `json:"status"`
	Data   *ChecklistDetailResponse `json:"data"`
}

// ProcessAlertResponse - POST /alerts 응답
type ProcessAlertResponse struct {
	Status    string            `json:"status"`
	Checklist *DynamicChecklist `json:"checklist"`
}

// AlertWebhookResponse - Alertmanager 웹훅 처리 결과
type AlertWebhookResponse struct {
	Status     string `json:"status"`
	AlertCount int    `json:"alertCount"`
	Processed  int    `json:"processed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// IngestResponse - 인제스트 트리거 응답
type IngestResponse struct {
	Status string       `json:"status"`
	Result IngestResult `json:"result"`
}

// SearchRequest - 디버그용 런북 검색 요청
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	Shape string `json:"shape"`
}

// SearchResponse - 디버그용 런북 검색 응답
type SearchResponse struct {
	Status string           `json:"status"`
	Chunks []RetrievedChunk `json:"chunks"`
}
