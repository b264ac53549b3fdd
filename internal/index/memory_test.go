package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/ops-checklist/backend/internal/model"
)

func storeChunk(t *testing.T, m *Memory, id, sourcePath string, embedding []float32, appliesTo ...string) {
	t.Helper()
	err := m.Store(context.Background(), model.RunbookChunk{
		ID:         id,
		Content:    "content of " + id,
		SourcePath: sourcePath,
		Meta:       model.RunbookFrontmatter{AppliesTo: appliesTo},
		Embedding:  embedding,
	})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
}

func TestMemorySearchRanking(t *testing.T) {
	m := NewMemory()
	storeChunk(t, m, "a#0", "a.md", []float32{1, 0})
	storeChunk(t, m, "b#0", "b.md", []float32{0, 1})
	storeChunk(t, m, "c#0", "c.md", []float32{0.7, 0.7})

	results, err := m.Search(context.Background(), []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "a#0" {
		t.Fatalf("expected exact match first, got %s", results[0].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Fatalf("results not sorted by score")
	}
}

func TestMemorySearchTieBreakByID(t *testing.T) {
	m := NewMemory()
	// 동일 임베딩이라 점수가 같음
	storeChunk(t, m, "z#0", "z.md", []float32{1, 0})
	storeChunk(t, m, "a#0", "a.md", []float32{1, 0})

	results, err := m.Search(context.Background(), []float32{1, 0}, 2, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if results[0].Chunk.ID != "a#0" || results[1].Chunk.ID != "z#0" {
		t.Fatalf("tie not broken by id asc: %s, %s", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestMemorySearchShapeFilter(t *testing.T) {
	m := NewMemory()
	storeChunk(t, m, "vm#0", "vm.md", []float32{1, 0}, "vm.standard")
	storeChunk(t, m, "db#0", "db.md", []float32{1, 0}, "db.instance")
	storeChunk(t, m, "any#0", "any.md", []float32{1, 0}) // applies_to 없음 - 모든 shape에 매칭

	results, err := m.Search(context.Background(), []float32{1, 0}, 10, &model.SearchFilter{ResourceShape: "vm.standard"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Chunk.ID == "db#0" {
			t.Fatalf("shape filter leaked db chunk")
		}
	}
}

func TestMemorySearchSkipsEmptyEmbeddings(t *testing.T) {
	m := NewMemory()
	storeChunk(t, m, "no-vec#0", "x.md", nil)
	storeChunk(t, m, "vec#0", "y.md", []float32{1, 0})

	results, err := m.Search(context.Background(), []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "vec#0" {
		t.Fatalf("expected only embedded chunk, got %v", results)
	}
}

func TestMemorySearchFewerThanK(t *testing.T) {
	m := NewMemory()
	storeChunk(t, m, "a#0", "a.md", []float32{1, 0})

	results, err := m.Search(context.Background(), []float32{1, 0}, 5, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result without padding, got %d", len(results))
	}
}

func TestMemoryStoreReplaces(t *testing.T) {
	m := NewMemory()
	storeChunk(t, m, "a#0", "a.md", []float32{1, 0})
	storeChunk(t, m, "a#0", "a.md", []float32{0, 1})

	if m.Len() != 1 {
		t.Fatalf("expected upsert, got %d chunks", m.Len())
	}

	results, _ := m.Search(context.Background(), []float32{0, 1}, 1, nil)
	if results[0].Score < 0.99 {
		t.Fatalf("replacement embedding not visible, score=%f", results[0].Score)
	}
}

func TestMemoryDeleteSource(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 3; i++ {
		storeChunk(t, m, fmt.Sprintf("a.md#%d", i), "a.md", []float32{1, 0})
	}
	storeChunk(t, m, "b.md#0", "b.md", []float32{1, 0})

	if err := m.DeleteSource(context.Background(), "a.md"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected only b.md chunk to remain, got %d", m.Len())
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "empty", a: nil, b: []float32{1}, want: 0},
		{name: "dimension-mismatch", a: []float32{1, 0}, b: []float32{1}, want: 0},
		{name: "zero-vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}
