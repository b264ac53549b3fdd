package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

const sampleRunbook = `---
title: High CPU on DB hosts
tags: [cpu, database]
applies_to: [vm.standard]
---
# High CPU on DB hosts

개요 설명.

## Symptoms

CPU usage above 90% for 10 minutes.

## Remediation

Restart the slow query. Check connection pool.
`

func TestChunkFrontmatterPropagation(t *testing.T) {
	chunks := New(2000).Chunk("runbooks/db-cpu.md", sampleRunbook)
	if len(chunks) == 0 {
		t.Fatalf("expected chunks")
	}

	for _, chunk := range chunks {
		if chunk.Meta.Title != "High CPU on DB hosts" {
			t.Fatalf("meta title not propagated: %q", chunk.Meta.Title)
		}
		if len(chunk.Meta.AppliesTo) != 1 || chunk.Meta.AppliesTo[0] != "vm.standard" {
			t.Fatalf("applies_to not propagated: %v", chunk.Meta.AppliesTo)
		}
		if strings.Contains(chunk.Content, "---") {
			t.Fatalf("frontmatter leaked into content: %q", chunk.Content)
		}
	}
}

func TestChunkSectionTitles(t *testing.T) {
	chunks := New(2000).Chunk("runbooks/db-cpu.md", sampleRunbook)

	titles := make(map[string]bool)
	for _, chunk := range chunks {
		titles[chunk.SectionTitle] = true
	}
	if !titles["Symptoms"] || !titles["Remediation"] {
		t.Fatalf("expected Symptoms and Remediation sections, got %v", titles)
	}
}

func TestChunkDeterministicIDs(t *testing.T) {
	a := New(2000).Chunk("runbooks/db-cpu.md", sampleRunbook)
	b := New(2000).Chunk("runbooks/db-cpu.md", sampleRunbook)

	if len(a) != len(b) {
		t.Fatalf("chunk count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Content != b[i].Content {
			t.Fatalf("chunking is not deterministic at index %d", i)
		}
		want := fmt.Sprintf("runbooks/db-cpu.md#%d", i)
		if a[i].ID != want {
			t.Fatalf("chunk id = %q, want %q", a[i].ID, want)
		}
		if a[i].ChunkIndex != i {
			t.Fatalf("chunk index = %d, want %d", a[i].ChunkIndex, i)
		}
	}
}

func TestChunkSizeBudget(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Long section\n\n")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Sentence number %d fills up the section with text. ", i)
	}

	chunks := New(200).Chunk("runbooks/long.md", b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected budget split, got %d chunks", len(chunks))
	}
	for _, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk.Content); n > 200 {
			t.Fatalf("chunk exceeds budget: %d runes", n)
		}
	}
}

func TestChunkOversizedSentenceHardCut(t *testing.T) {
	// 공백 없는 단일 토큰이 상한을 넘는 경우
	content := "# S\n\n" + strings.Repeat("가", 450)

	chunks := New(200).Chunk("runbooks/hard.md", content)
	if len(chunks) < 3 {
		t.Fatalf("expected hard cut into >=3 chunks, got %d", len(chunks))
	}

	var total int
	for _, chunk := range chunks {
		n := utf8.RuneCountInString(chunk.Content)
		if n > 200 {
			t.Fatalf("chunk exceeds budget: %d runes", n)
		}
		total += n
	}
	if total != 450 {
		t.Fatalf("content lost in hard cut: got %d runes total", total)
	}
}

func TestChunkNoHeaders(t *testing.T) {
	chunks := New(2000).Chunk("runbooks/plain.md", "---\ntitle: Plain doc\n---\njust body text")
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0].SectionTitle != "Plain doc" {
		t.Fatalf("expected frontmatter title as section title, got %q", chunks[0].SectionTitle)
	}
}

func TestChunkEmptyAndFrontmatterOnly(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "whitespace", content: "  \n\n  "},
		{name: "frontmatter-only", content: "---\ntitle: X\n---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if chunks := New(2000).Chunk("runbooks/x.md", tt.content); len(chunks) != 0 {
				t.Fatalf("expected no chunks, got %d", len(chunks))
			}
		})
	}
}

func TestChunkBOMPrefix(t *testing.T) {
	chunks := New(2000).Chunk("runbooks/bom.md", "\ufeff"+sampleRunbook)
	if len(chunks) == 0 {
		t.Fatalf("expected chunks")
	}
	if chunks[0].Meta.Title != "High CPU on DB hosts" {
		t.Fatalf("frontmatter not parsed behind BOM: %q", chunks[0].Meta.Title)
	}
}

func TestChunkThematicBreakNotTerminator(t *testing.T) {
	// "----" 수평선은 frontmatter 종료 구분자가 아님
	t.Run("rule-after-frontmatter", func(t *testing.T) {
		chunks := New(2000).Chunk("runbooks/rule.md", "---\ntitle: Rule doc\n---\n----\n\nbody after rule")
		if len(chunks) != 1 {
			t.Fatalf("expected single chunk, got %d", len(chunks))
		}
		if chunks[0].Meta.Title != "Rule doc" {
			t.Fatalf("meta title = %q", chunks[0].Meta.Title)
		}
		if !strings.Contains(chunks[0].Content, "body after rule") {
			t.Fatalf("body lost: %q", chunks[0].Content)
		}
	})

	// 종료 구분자 없이 "----"만 있으면 frontmatter 블록이 아님
	t.Run("unterminated-block", func(t *testing.T) {
		chunks := New(2000).Chunk("runbooks/rule.md", "---\ntitle: not frontmatter\n----\nbody text")
		if len(chunks) != 1 {
			t.Fatalf("expected single chunk, got %d", len(chunks))
		}
		if chunks[0].Meta.Title != "" {
			t.Fatalf("unterminated block must not parse as frontmatter: %q", chunks[0].Meta.Title)
		}
		if !strings.Contains(chunks[0].Content, "title: not frontmatter") {
			t.Fatalf("original content should be preserved, got %q", chunks[0].Content)
		}
	})
}

func TestChunkInvalidFrontmatter(t *testing.T) {
	chunks := New(2000).Chunk("runbooks/bad.md", "---\n: not yaml [\n---\nbody text")
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0].Meta.Title != "" {
		t.Fatalf("expected empty meta on parse failure")
	}
	if chunks[0].Content != "body text" {
		t.Fatalf("malformed block should still be stripped, got %q", chunks[0].Content)
	}
}
