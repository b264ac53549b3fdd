// Loki에서 리소스의 최근 로그를 조회하는 HTTP 클라이언트
//
// 환경변수:
//   - LOKI_URL: Loki 베이스 URL (예: http://loki.monitoring.svc:3100)
//
// GET /loki/api/v1/query_range 를 사용하며, 리소스 ID는
// {instance="..."} 라벨 셀렉터로 매칭

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/ops-checklist/backend/internal/config"
	"github.com/ops-checklist/backend/internal/model"
)

type LokiLogsClient struct {
	baseURL    string
	httpClient *http.Client
}

// lokiQueryResponse - query_range 응답 중 사용하는 부분만 정의
type lokiQueryResponse struct {
	Status string `json:"status"`
	Data   struct {
		Result []struct {
			Stream map[string]string `json:"stream"`
			Values [][2]string       `json:"values"`
		} `json:"result"`
	} `json:"data"`
}

func NewLokiLogsClient(cfg config.LogsConfig) (*LokiLogsClient, error) {
	if cfg.LokiURL == "" {
		return nil, fmt.Errorf("missing LOKI_URL")
	}
	return &LokiLogsClient{
		baseURL: cfg.LokiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Fetch - 리소스의 최근 로그 조회
// query가 비어 있지 않으면 라인 필터로 추가됨
func (c *LokiLogsClient) Fetch(ctx context.Context, resourceID string, window time.Duration, query string) ([]model.LogEntry, error) {
	selector := fmt.Sprintf(`{instance=%q}`, resourceID)
	if query != "" {
		selector = fmt.Sprintf(`%s |= %q`, selector, query)
	}

	now := time.Now()
	params := url.Values{}
	params.Set("query", selector)
	params.Set("start", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	params.Set("end", strconv.FormatInt(now.UnixNano(), 10))
	params.Set("limit", "200")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/loki/api/v1/query_range?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create loki request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query loki: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("loki returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read loki response: %w", err)
	}

	var parsed lokiQueryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse loki response: %w", err)
	}

	entries := []model.LogEntry{}
	for _, stream := range parsed.Data.Result {
		source := stream.Stream["job"]
		severity := stream.Stream["level"]
		for _, value := range stream.Values {
			nanos, err := strconv.ParseInt(value[0], 10, 64)
			if err != nil {
				continue
			}
			entries = append(entries, model.LogEntry{
				Timestamp: time.Unix(0, nanos),
				Message:   value[1],
				Source:    source,
				Severity:  severity,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}
