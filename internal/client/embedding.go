// 외부 임베딩 API(google genai)와 통신하는 클라이언트 정의
//
// 환경변수:
//   - AI_API_KEY: genai API 키
//   - EMBEDDING_MODEL (default: text-embedding-004)
//   - EMBEDDING_DIMENSION: 배포 단위로 고정되는 벡터 차원

package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ops-checklist/backend/internal/config"
)

type EmbeddingClient struct {
	client    *genai.Client
	model     string
	dimension int
}

func NewEmbeddingClient(cfg config.EmbeddingConfig) (*EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing AI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, err
	}
	return &EmbeddingClient{client: client, model: cfg.Model, dimension: cfg.Dimension}, nil
}

func (c *EmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	res, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		return nil, c.model, err
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, c.model, fmt.Errorf("empty embedding result")
	}
	vector := res.Embeddings[0].Values
	if c.dimension > 0 && len(vector) != c.dimension {
		return nil, c.model, fmt.Errorf("unexpected embedding dimension: got %d, want %d", len(vector), c.dimension)
	}
	return vector, c.model, nil
}
