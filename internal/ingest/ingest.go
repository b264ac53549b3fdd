// 런북 인제스트 파이프라인
//
// 처리 흐름:
//  1. 스토리지에서 마크다운 원문 읽기
//  2. Chunker로 청크 분할
//  3. 청크별 임베딩 생성 - 일부 실패는 스킵하고 카운트만 올림
//  4. 벡터 인덱스에 저장 (path 단위 삭제 후 저장이라 재인제스트에 안전)
//
// 단일 문서/청크 실패가 배치 전체를 중단시키지 않음 -
// 실패는 카운트와 로그로만 남고 성공한 청크는 그대로 저장됨

package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ops-checklist/backend/internal/chunker"
	"github.com/ops-checklist/backend/internal/index"
	"github.com/ops-checklist/backend/internal/model"
)

// Storage - 런북 원문 스토리지 (GCS 등)
type Storage interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Read(ctx context.Context, path string) ([]byte, error)
}

// Embedder - 텍스트를 고정 차원 벡터로 변환
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, string, error)
}

type Pipeline struct {
	storage      Storage
	chunker      *chunker.Chunker
	embedder     Embedder
	index        index.VectorIndex
	prefix       string
	embedTimeout time.Duration
}

func NewPipeline(storage Storage, c *chunker.Chunker, embedder Embedder, idx index.VectorIndex, prefix string, embedTimeout time.Duration) *Pipeline {
	if embedTimeout <= 0 {
		embedTimeout = 15 * time.Second
	}
	return &Pipeline{
		storage:      storage,
		chunker:      c,
		embedder:     embedder,
		index:        idx,
		prefix:       prefix,
		embedTimeout: embedTimeout,
	}
}

// IngestOne - 문서 1건 인제스트
//
// 실패 조건: 원문 읽기 실패, 또는 모든 청크의 임베딩 실패
// 일부 청크만 실패하면 해당 청크는 스킵하고 나머지는 저장
func (p *Pipeline) IngestOne(ctx context.Context, path string) (model.IngestResult, error) {
	var result model.IngestResult

	content, err := p.storage.Read(ctx, path)
	if err != nil {
		return result, fmt.Errorf("failed to read runbook %s: %w", path, err)
	}

	chunks := p.chunker.Chunk(path, string(content))
	if len(chunks) == 0 {
		log.Printf("[Ingest] Empty document, nothing to index (path=%s)", path)
		return result, nil
	}

	// 재인제스트 시 같은 경로의 이전 청크를 먼저 제거
	// (청크 ID가 결정적이라 upsert만으로도 중복은 없지만,
	// 문서가 짧아져 청크 수가 줄어든 경우 잔여 청크가 남는 것을 방지)
	if err := p.index.DeleteSource(ctx, path); err != nil {
		return result, fmt.Errorf("failed to clear previous chunks for %s: %w", path, err)
	}

	for _, chunk := range chunks {
		embedCtx, cancel := context.WithTimeout(ctx, p.embedTimeout)
		vector, _, err := p.embedder.EmbedText(embedCtx, chunk.Content)
		cancel()
		if err != nil {
			log.Printf("[Ingest] Failed to embed chunk (id=%s): %v", chunk.ID, err)
			result.ChunksFailed++
			continue
		}

		chunk.Embedding = vector
		if err := p.index.Store(ctx, chunk); err != nil {
			log.Printf("[Ingest] Failed to store chunk (id=%s): %v", chunk.ID, err)
			result.ChunksFailed++
			continue
		}
		result.ChunksStored++
	}

	if result.ChunksStored == 0 {
		return result, fmt.Errorf("all %d chunks failed for %s", len(chunks), path)
	}

	log.Printf("[Ingest] Indexed %s (stored=%d, failed=%d)", path, result.ChunksStored, result.ChunksFailed)
	return result, nil
}

// IngestAll - prefix 아래 마크다운 문서 전체 인제스트
// 단일 문서 실패는 카운트만 올리고 배치는 계속 진행
func (p *Pipeline) IngestAll(ctx context.Context) (model.IngestResult, error) {
	var result model.IngestResult

	paths, err := p.storage.List(ctx, p.prefix)
	if err != nil {
		return result, fmt.Errorf("failed to list runbooks under %s: %w", p.prefix, err)
	}

	for _, path := range paths {
		if !strings.HasSuffix(path, ".md") {
			continue
		}

		docResult, err := p.IngestOne(ctx, path)
		result.ChunksStored += docResult.ChunksStored
		result.ChunksFailed += docResult.ChunksFailed
		if err != nil {
			log.Printf("[Ingest] Failed to ingest document (path=%s): %v", path, err)
			result.DocsFailed++
		}
	}

	log.Printf("[Ingest] Batch complete (stored=%d, chunks_failed=%d, docs_failed=%d)",
		result.ChunksStored, result.ChunksFailed, result.DocsFailed)
	return result, nil
}

// RunStartup - 부팅 시 1회 인제스트 (goroutine에서 호출)
// 실패해도 경고 로그만 남기고 서빙은 계속됨
func (p *Pipeline) RunStartup(ctx context.Context) {
	log.Printf("[Ingest] Startup ingestion started (prefix=%s)", p.prefix)
	if _, err := p.IngestAll(ctx); err != nil {
		log.Printf("[Ingest] WARNING: startup ingestion failed, serving with partial index: %v", err)
	}
}
