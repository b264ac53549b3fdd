package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ops-checklist/backend/internal/chunker"
	"github.com/ops-checklist/backend/internal/index"
)

type fakeStorage struct {
	docs    map[string]string
	listErr error
}

func (f *fakeStorage) List(ctx context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var paths []string
	for path := range f.docs {
		paths = append(paths, path)
	}
	return paths, nil
}

func (f *fakeStorage) Read(ctx context.Context, path string) ([]byte, error) {
	content, ok := f.docs[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return []byte(content), nil
}

type fakeEmbedder struct {
	failOn map[string]bool
	calls  int
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, string, error) {
	f.calls++
	for substr := range f.failOn {
		if substr != "" && strings.Contains(text, substr) {
			return nil, "fake-model", errors.New("embedding failed")
		}
	}
	return []float32{1, 0}, "fake-model", nil
}

const doc = "# Title\n\nFirst section.\n\n## Next\n\nSecond section."

func newTestPipeline(storage Storage, embedder Embedder, idx index.VectorIndex) *Pipeline {
	return NewPipeline(storage, chunker.New(2000), embedder, idx, "runbooks/", time.Second)
}

func TestIngestOneStoresChunks(t *testing.T) {
	idx := index.NewMemory()
	storage := &fakeStorage{docs: map[string]string{"runbooks/a.md": doc}}
	p := newTestPipeline(storage, &fakeEmbedder{}, idx)

	result, err := p.IngestOne(context.Background(), "runbooks/a.md")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if result.ChunksStored == 0 || result.ChunksFailed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if idx.Len() != result.ChunksStored {
		t.Fatalf("index count %d != stored %d", idx.Len(), result.ChunksStored)
	}
}

func TestIngestOneIdempotent(t *testing.T) {
	idx := index.NewMemory()
	storage := &fakeStorage{docs: map[string]string{"runbooks/a.md": doc}}
	p := newTestPipeline(storage, &fakeEmbedder{}, idx)

	first, err := p.IngestOne(context.Background(), "runbooks/a.md")
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	second, err := p.IngestOne(context.Background(), "runbooks/a.md")
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	if first.ChunksStored != second.ChunksStored {
		t.Fatalf("re-ingest changed chunk count: %d vs %d", first.ChunksStored, second.ChunksStored)
	}
	if idx.Len() != first.ChunksStored {
		t.Fatalf("re-ingest duplicated chunks: %d in index", idx.Len())
	}
}

func TestIngestOneShrunkDocRemovesStaleChunks(t *testing.T) {
	idx := index.NewMemory()
	storage := &fakeStorage{docs: map[string]string{"runbooks/a.md": doc}}
	p := newTestPipeline(storage, &fakeEmbedder{}, idx)

	if _, err := p.IngestOne(context.Background(), "runbooks/a.md"); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	storage.docs["runbooks/a.md"] = "# Title\n\nOnly one section now."
	result, err := p.IngestOne(context.Background(), "runbooks/a.md")
	if err != nil {
		t.Fatalf("re-ingest failed: %v", err)
	}
	if idx.Len() != result.ChunksStored {
		t.Fatalf("stale chunks remain: index=%d, stored=%d", idx.Len(), result.ChunksStored)
	}
}

func TestIngestOnePartialEmbedFailure(t *testing.T) {
	idx := index.NewMemory()
	storage := &fakeStorage{docs: map[string]string{"runbooks/a.md": doc}}
	embedder := &fakeEmbedder{failOn: map[string]bool{"Second section": true}}
	p := newTestPipeline(storage, embedder, idx)

	result, err := p.IngestOne(context.Background(), "runbooks/a.md")
	if err != nil {
		t.Fatalf("partial failure must not fail the document: %v", err)
	}
	if result.ChunksFailed != 1 || result.ChunksStored == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestIngestOneAllChunksFail(t *testing.T) {
	idx := index.NewMemory()
	storage := &fakeStorage{docs: map[string]string{"runbooks/a.md": doc}}
	embedder := &fakeEmbedder{failOn: map[string]bool{"section": true}}
	p := newTestPipeline(storage, embedder, idx)

	if _, err := p.IngestOne(context.Background(), "runbooks/a.md"); err == nil {
		t.Fatalf("expected error when every chunk fails")
	}
}

func TestIngestOneReadFailure(t *testing.T) {
	p := newTestPipeline(&fakeStorage{docs: map[string]string{}}, &fakeEmbedder{}, index.NewMemory())

	if _, err := p.IngestOne(context.Background(), "runbooks/missing.md"); err == nil {
		t.Fatalf("expected error on read failure")
	}
}

func TestIngestAllContinuesPastFailures(t *testing.T) {
	idx := index.NewMemory()
	storage := &fakeStorage{docs: map[string]string{
		"runbooks/good.md": doc,
		"runbooks/bad.md":  "# Bad\n\nfail-me please.",
		"runbooks/skip.txt": "not markdown",
	}}
	embedder := &fakeEmbedder{failOn: map[string]bool{"fail-me": true}}
	p := newTestPipeline(storage, embedder, idx)

	result, err := p.IngestAll(context.Background())
	if err != nil {
		t.Fatalf("batch must not abort: %v", err)
	}
	if result.DocsFailed != 1 {
		t.Fatalf("expected 1 failed doc, got %d", result.DocsFailed)
	}
	if result.ChunksStored == 0 {
		t.Fatalf("good document was not indexed")
	}
}

func TestIngestAllListFailure(t *testing.T) {
	p := newTestPipeline(&fakeStorage{listErr: errors.New("bucket unavailable")}, &fakeEmbedder{}, index.NewMemory())

	if _, err := p.IngestAll(context.Background()); err == nil {
		t.Fatalf("expected error when listing fails")
	}
}
