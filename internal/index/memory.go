package index

import (
	"context"
	"sort"
	"sync"

	"github.com/ops-checklist/backend/internal/model"
)

// Memory - 선형 탐색 기반 인메모리 벡터 인덱스
//
// Postgres 없이 기동할 때와 테스트에서 사용
// RWMutex로 인제스트(store/delete)와 검색의 동시 호출을 보호하고,
// 청크 1건의 내용과 임베딩은 항상 원자적으로 함께 보임
type Memory struct {
	mu     sync.RWMutex
	chunks map[string]model.RunbookChunk
}

func NewMemory() *Memory {
	return &Memory{chunks: make(map[string]model.RunbookChunk)}
}

func (m *Memory) Store(_ context.Context, chunk model.RunbookChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[chunk.ID] = chunk
	return nil
}

func (m *Memory) DeleteSource(_ context.Context, sourcePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, chunk := range m.chunks {
		if chunk.SourcePath == sourcePath {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *Memory) Search(_ context.Context, query []float32, k int, filter *model.SearchFilter) ([]model.RetrievedChunk, error) {
	if k <= 0 {
		return []model.RetrievedChunk{}, nil
	}

	m.mu.RLock()
	candidates := make([]model.RetrievedChunk, 0, len(m.chunks))
	for _, chunk := range m.chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if filter != nil && filter.ResourceShape != "" && !chunk.Meta.Matches(filter.ResourceShape) {
			continue
		}
		candidates = append(candidates, model.RetrievedChunk{
			Chunk: chunk,
			Score: CosineSimilarity(query, chunk.Embedding),
		})
	}
	m.mu.RUnlock()

	// 점수 내림차순, 동점은 ID 오름차순 (결정적 랭킹)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Chunk.ID < candidates[j].Chunk.ID
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Len - 저장된 청크 수 (테스트/헬스체크용)
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}
