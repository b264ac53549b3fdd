// GCE 인스턴스 메타데이터를 조회하는 클라이언트
//
// 환경변수:
//   - GCP_PROJECT: 프로젝트 ID
//   - GOOGLE_APPLICATION_CREDENTIALS: 서비스 계정 키 경로 (선택)
//
// 리소스 ID(인스턴스 이름)를 zone을 모르는 상태에서 찾아야 하므로
// aggregated list에 이름 필터를 걸어 조회

package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/compute/v1"
	"google.golang.org/api/option"

	"github.com/ops-checklist/backend/internal/config"
	"github.com/ops-checklist/backend/internal/model"
)

type GCEMetadataClient struct {
	service *compute.Service
	project string
}

func NewGCEMetadataClient(ctx context.Context, cfg config.MetadataConfig) (*GCEMetadataClient, error) {
	if cfg.GCPProject == "" {
		return nil, fmt.Errorf("missing GCP_PROJECT")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	service, err := compute.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute service: %w", err)
	}
	return &GCEMetadataClient{service: service, project: cfg.GCPProject}, nil
}

// Get - 리소스 ID(인스턴스 이름)로 메타데이터 조회
// 인스턴스가 없으면 (nil, nil) 반환 - absent는 에러가 아님
func (c *GCEMetadataClient) Get(ctx context.Context, resourceID string) (*model.ResourceMetadata, error) {
	resp, err := c.service.Instances.AggregatedList(c.project).
		Filter(fmt.Sprintf("name = %q", resourceID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to look up instance %s: %w", resourceID, err)
	}

	for _, scoped := range resp.Items {
		for _, instance := range scoped.Instances {
			return instanceToMetadata(instance), nil
		}
	}
	return nil, nil
}

func instanceToMetadata(instance *compute.Instance) *model.ResourceMetadata {
	tags := map[string]string{}
	if instance.Metadata != nil {
		for _, item := range instance.Metadata.Items {
			if item.Value != nil {
				tags[item.Key] = *item.Value
			}
		}
	}
	for k, v := range instance.Labels {
		tags[k] = v
	}

	return &model.ResourceMetadata{
		ID:    fmt.Sprintf("%d", instance.Id),
		Name:  instance.Name,
		Shape: lastSegment(instance.MachineType),
		Zone:  lastSegment(instance.Zone),
		Tags:  tags,
	}
}

// lastSegment - GCE API가 돌려주는 full URL에서 마지막 경로 조각 추출
func lastSegment(url string) string {
	if idx := strings.LastIndex(url, "/"); idx >= 0 {
		return url[idx+1:]
	}
	return url
}
