// 알림 컨텍스트 보강
//
// 처리 흐름:
//  1. 알림에서 리소스 ID 추출 - 없으면 알림 단독 컨텍스트 반환
//  2. 메타데이터 / 메트릭 / 로그 3개 소스를 병렬 조회
//  3. 개별 소스 실패는 로그만 남기고 해당 항목을 비워둠
//
// 보강은 best-effort - 이 단계는 절대 에러를 반환하지 않음

package enrich

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ops-checklist/backend/internal/model"
)

type MetadataSource interface {
	Get(ctx context.Context, resourceID string) (*model.ResourceMetadata, error)
}

type MetricsSource interface {
	Fetch(ctx context.Context, resourceID string, window time.Duration) ([]model.MetricSnapshot, error)
}

type LogsSource interface {
	Fetch(ctx context.Context, resourceID string, window time.Duration, query string) ([]model.LogEntry, error)
}

type Enricher struct {
	metadata MetadataSource
	metrics  MetricsSource
	logs     LogsSource

	lookback     time.Duration
	fetchTimeout time.Duration
}

// NewEnricher - 소스는 각각 nil 허용 (미설정 환경에서는 해당 항목이 항상 비어있음)
func NewEnricher(metadata MetadataSource, metrics MetricsSource, logs LogsSource, lookback, fetchTimeout time.Duration) *Enricher {
	if lookback <= 0 {
		lookback = 15 * time.Minute
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Enricher{
		metadata:     metadata,
		metrics:      metrics,
		logs:         logs,
		lookback:     lookback,
		fetchTimeout: fetchTimeout,
	}
}

// Enrich - 알림에 운영 컨텍스트를 붙여 반환
// 소스 실패나 리소스 ID 부재 시에도 항상 유효한 컨텍스트를 반환
func (e *Enricher) Enrich(ctx context.Context, alert model.Alert) model.EnrichedContext {
	enriched := model.EnrichedContext{Alert: alert}

	resourceID := alert.ResourceID()
	if resourceID == "" {
		log.Printf("[Enrich] No resource id on alert, skipping enrichment (alert=%s)", alert.ID)
		return enriched
	}

	var g errgroup.Group

	if e.metadata != nil {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
			defer cancel()

			resource, err := e.metadata.Get(fetchCtx, resourceID)
			if err != nil {
				log.Printf("[Enrich] Failed to fetch resource metadata (resource=%s): %v", resourceID, err)
				return nil
			}
			enriched.Resource = resource
			return nil
		})
	}

	if e.metrics != nil {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
			defer cancel()

			snapshots, err := e.metrics.Fetch(fetchCtx, resourceID, e.lookback)
			if err != nil {
				log.Printf("[Enrich] Failed to fetch metrics (resource=%s): %v", resourceID, err)
				return nil
			}
			enriched.Metrics = snapshots
			return nil
		})
	}

	if e.logs != nil {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
			defer cancel()

			entries, err := e.logs.Fetch(fetchCtx, resourceID, e.lookback, "")
			if err != nil {
				log.Printf("[Enrich] Failed to fetch logs (resource=%s): %v", resourceID, err)
				return nil
			}
			enriched.Logs = entries
			return nil
		})
	}

	// 각 goroutine이 nil만 반환하므로 Wait 에러는 발생하지 않음
	_ = g.Wait()

	return enriched
}
