// runbook_chunks 테이블 - pgvector 기반 벡터 인덱스 구현
//
// 인메모리 인덱스와 동일한 랭킹 의미를 DB 쿼리로 표현:
//   - 코사인 거리 연산자(<=>)로 정렬, 유사도는 1 - 거리
//   - 동점은 id 오름차순으로 결정적 랭킹
//   - 임베딩이 NULL인 행은 검색 후보에서 제외

package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/ops-checklist/backend/internal/model"
)

// EnsureChunkSchema - vector 확장 및 runbook_chunks 테이블 생성 (없으면)
// dimension은 배포 단위로 고정된 임베딩 차원
func (db *Postgres) EnsureChunkSchema(ctx context.Context, dimension int) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS runbook_chunks (
			id            TEXT         PRIMARY KEY,
			content       TEXT         NOT NULL,
			source_path   TEXT         NOT NULL,
			section_title TEXT         NOT NULL DEFAULT '',
			meta          JSONB        NOT NULL DEFAULT '{}',
			embedding     vector(%d),
			chunk_index   INT          NOT NULL,
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS runbook_chunks_source_path_idx ON runbook_chunks(source_path)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to ensure chunk schema: %w", err)
		}
	}
	return nil
}

// Store - 청크 저장, 같은 ID는 교체 (재인제스트)
func (db *Postgres) Store(ctx context.Context, chunk model.RunbookChunk) error {
	metaJSON, err := json.Marshal(chunk.Meta)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk meta: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO runbook_chunks (id, content, source_path, section_title, meta, embedding, chunk_index, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			content       = EXCLUDED.content,
			source_path   = EXCLUDED.source_path,
			section_title = EXCLUDED.section_title,
			meta          = EXCLUDED.meta,
			embedding     = EXCLUDED.embedding,
			chunk_index   = EXCLUDED.chunk_index,
			updated_at    = NOW();
	`, chunk.ID, chunk.Content, chunk.SourcePath, chunk.SectionTitle, metaJSON, pgvector.NewVector(chunk.Embedding), chunk.ChunkIndex)
	if err != nil {
		return fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// DeleteSource - source path가 일치하는 청크 전부 삭제
func (db *Postgres) DeleteSource(ctx context.Context, sourcePath string) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM runbook_chunks WHERE source_path = $1;`, sourcePath); err != nil {
		return fmt.Errorf("failed to delete chunks for %s: %w", sourcePath, err)
	}
	return nil
}

// Search - 코사인 유사도 상위 k개 청크 조회
//
// filter.ResourceShape가 지정되면 applies_to가 비어 있거나
// 해당 shape를 포함하는 청크만 후보가 됨
func (db *Postgres) Search(ctx context.Context, query []float32, k int, filter *model.SearchFilter) ([]model.RetrievedChunk, error) {
	if k <= 0 {
		return []model.RetrievedChunk{}, nil
	}

	shape := ""
	if filter != nil {
		shape = filter.ResourceShape
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, content, source_path, section_title, meta, embedding, chunk_index,
		       1 - (embedding <=> $1) AS score
		FROM runbook_chunks
		WHERE embedding IS NOT NULL
		  AND ($2 = ''
		       OR meta->'applies_to' IS NULL
		       OR jsonb_array_length(meta->'applies_to') = 0
		       OR meta->'applies_to' ? $2)
		ORDER BY embedding <=> $1, id ASC
		LIMIT $3;
	`, pgvector.NewVector(query), shape, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []model.RetrievedChunk
	for rows.Next() {
		var (
			chunk    model.RunbookChunk
			metaJSON []byte
			vec      pgvector.Vector
			score    float64
		)
		if err := rows.Scan(&chunk.ID, &chunk.Content, &chunk.SourcePath, &chunk.SectionTitle, &metaJSON, &vec, &chunk.ChunkIndex, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &chunk.Meta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk meta: %w", err)
		}
		chunk.Embedding = vec.Slice()
		results = append(results, model.RetrievedChunk{Chunk: chunk, Score: score})
	}
	if results == nil {
		results = []model.RetrievedChunk{}
	}
	return results, rows.Err()
}

// CountChunks - 저장된 청크 수 (헬스체크용)
func (db *Postgres) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM runbook_chunks;`).Scan(&count)
	return count, err
}
