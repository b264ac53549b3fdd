// InfluxDB에서 리소스의 최근 메트릭을 조회하는 클라이언트
//
// 환경변수:
//   - INFLUX_URL, INFLUX_TOKEN, INFLUX_ORG
//   - INFLUX_BUCKET (default: telemetry)

package client

import (
	"context"
	"fmt"
	"sort"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/ops-checklist/backend/internal/config"
	"github.com/ops-checklist/backend/internal/model"
)

type InfluxMetricsClient struct {
	queryAPI api.QueryAPI
	bucket   string
}

func NewInfluxMetricsClient(cfg config.MetricsConfig) (*InfluxMetricsClient, error) {
	if cfg.InfluxURL == "" {
		return nil, fmt.Errorf("missing INFLUX_URL")
	}
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	return &InfluxMetricsClient{
		queryAPI: client.QueryAPI(cfg.InfluxOrg),
		bucket:   cfg.InfluxBucket,
	}, nil
}

// Fetch - 리소스의 최근 메트릭 샘플 조회
// 데이터가 없으면 빈 시퀀스 반환 (nil 아님), timestamp 오름차순 정렬
func (c *InfluxMetricsClient) Fetch(ctx context.Context, resourceID string, window time.Duration) ([]model.MetricSnapshot, error) {
	flux := fmt.Sprintf(`
		from(bucket: %q)
		  |> range(start: -%s)
		  |> filter(fn: (r) => r["host"] == %q)
	`, c.bucket, window.String(), resourceID)

	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics for %s: %w", resourceID, err)
	}

	snapshots := []model.MetricSnapshot{}
	for result.Next() {
		record := result.Record()
		value, ok := record.Value().(float64)
		if !ok {
			continue
		}
		unit := ""
		if u, ok := record.ValueByKey("unit").(string); ok {
			unit = u
		}
		snapshots = append(snapshots, model.MetricSnapshot{
			Name:      fmt.Sprintf("%s.%s", record.Measurement(), record.Field()),
			Timestamp: record.Time(),
			Value:     value,
			Unit:      unit,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("metrics query error for %s: %w", resourceID, err)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.Before(snapshots[j].Timestamp)
	})
	return snapshots, nil
}
