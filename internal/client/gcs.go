// GCS 버킷에서 런북 마크다운을 읽어오는 스토리지 클라이언트
//
// 환경변수:
//   - RUNBOOK_BUCKET: 런북이 저장된 버킷 이름
//   - GOOGLE_APPLICATION_CREDENTIALS: 서비스 계정 키 경로 (선택, 없으면 ADC)

package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ErrObjectNotFound - 경로에 해당하는 오브젝트가 없음 (에러가 아닌 "absent" 의미)
var ErrObjectNotFound = errors.New("object not found")

type GCSClient struct {
	client *storage.Client
	bucket string
}

func NewGCSClient(ctx context.Context, bucket, credentialsFile string) (*GCSClient, error) {
	if bucket == "" {
		return nil, fmt.Errorf("missing RUNBOOK_BUCKET")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSClient{client: client, bucket: bucket}, nil
}

// List - prefix 아래 오브젝트 경로 나열
func (c *GCSClient) List(ctx context.Context, prefix string) ([]string, error) {
	it := c.client.Bucket(c.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var paths []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		paths = append(paths, attrs.Name)
	}
	return paths, nil
}

// Read - 오브젝트 내용 읽기
// 오브젝트가 없으면 ErrObjectNotFound 반환
func (c *GCSClient) Read(ctx context.Context, path string) ([]byte, error) {
	reader, err := c.client.Bucket(c.bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object %s: %w", path, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}
	return content, nil
}
