// 런북 청크 검색
//
// 처리 흐름:
//  1. 보강된 컨텍스트에서 검색 쿼리 텍스트 구성 (제목 + 메시지 + 리소스 정보)
//  2. 쿼리 임베딩 생성
//  3. 리소스 shape 필터를 적용해 벡터 인덱스에서 top-K 검색
//
// 검색 실패는 빈 결과로 처리 - 이후 생성 단계는 청크 없이도 진행됨

package retrieve

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ops-checklist/backend/internal/index"
	"github.com/ops-checklist/backend/internal/model"
)

type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type Retriever struct {
	embedder     Embedder
	index        index.VectorIndex
	topK         int
	embedTimeout time.Duration
}

func NewRetriever(embedder Embedder, idx index.VectorIndex, topK int, embedTimeout time.Duration) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if embedTimeout <= 0 {
		embedTimeout = 15 * time.Second
	}
	return &Retriever{
		embedder:     embedder,
		index:        idx,
		topK:         topK,
		embedTimeout: embedTimeout,
	}
}

// Retrieve - 컨텍스트와 가장 관련 있는 런북 청크를 점수 내림차순으로 반환
// 임베딩/검색 실패 시 빈 슬라이스 반환 (로그만 남김)
func (r *Retriever) Retrieve(ctx context.Context, enriched model.EnrichedContext) []model.RetrievedChunk {
	query := buildQuery(enriched)

	embedCtx, cancel := context.WithTimeout(ctx, r.embedTimeout)
	vector, _, err := r.embedder.EmbedText(embedCtx, query)
	cancel()
	if err != nil {
		log.Printf("[Retrieve] Failed to embed query (alert=%s): %v", enriched.Alert.ID, err)
		return []model.RetrievedChunk{}
	}

	filter := &model.SearchFilter{ResourceShape: enriched.ResourceShape()}
	chunks, err := r.index.Search(ctx, vector, r.topK, filter)
	if err != nil {
		log.Printf("[Retrieve] Search failed (alert=%s): %v", enriched.Alert.ID, err)
		return []model.RetrievedChunk{}
	}

	log.Printf("[Retrieve] Retrieved %d chunks (alert=%s, shape=%s)", len(chunks), enriched.Alert.ID, filter.ResourceShape)
	return chunks
}

// buildQuery - 알림과 리소스 정보를 합쳐 검색 쿼리 텍스트 구성
func buildQuery(enriched model.EnrichedContext) string {
	var parts []string

	if enriched.Alert.Title != "" {
		parts = append(parts, enriched.Alert.Title)
	}
	if enriched.Alert.Message != "" {
		parts = append(parts, enriched.Alert.Message)
	}
	if enriched.Resource != nil {
		if enriched.Resource.Shape != "" {
			parts = append(parts, "resource type: "+enriched.Resource.Shape)
		}
		if len(enriched.Resource.Tags) > 0 {
			parts = append(parts, "tags: "+joinTags(enriched.Resource.Tags))
		}
	}

	return strings.Join(parts, "\n")
}

// joinTags - 태그 맵을 결정적 순서의 "key=value" 목록으로 변환
func joinTags(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+tags[k])
	}
	return strings.Join(pairs, ", ")
}
