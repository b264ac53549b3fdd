// Package index - 런북 청크 벡터 인덱스의 공통 계약
//
// 백엔드(인메모리, pgvector)와 무관하게 동일한 랭킹 의미를 보장:
// 코사인 유사도 내림차순, 동점은 청크 ID 오름차순
package index

import (
	"context"
	"math"

	"github.com/ops-checklist/backend/internal/model"
)

// VectorIndex - 청크 저장/검색/삭제 계약
//
// Store는 같은 ID에 대해 교체(upsert) 의미를 가짐 (재인제스트)
// Search는 임베딩이 없는 청크를 절대 반환하지 않으며, 후보가 k개 미만이면
// 있는 만큼만 반환 (패딩/에러 없음)
// 모든 메서드는 인제스트와 검색이 동시에 호출되어도 안전해야 함
type VectorIndex interface {
	Store(ctx context.Context, chunk model.RunbookChunk) error
	Search(ctx context.Context, query []float32, k int, filter *model.SearchFilter) ([]model.RetrievedChunk, error)

	// DeleteSource - source path가 일치하는 청크 전부 삭제 (재인제스트 직전 사용)
	DeleteSource(ctx context.Context, sourcePath string) error
}

// CosineSimilarity - 두 벡터의 코사인 유사도
// 차원이 다르거나 한쪽이 영벡터면 0 반환
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
