// 런북 마크다운 문서를 검색 단위 청크로 분할
//
// 처리 흐름:
//  1. 선두 frontmatter 블록(---로 감싼 YAML) 추출 - 모든 청크에 복사됨
//  2. 본문을 헤더(#, ##) 기준 섹션으로 분할, 헤더 텍스트는 section title로 보존
//  3. 크기 상한을 넘는 섹션은 문단 -> 문장 -> 강제 절단 순서로 추가 분할
//  4. 문서 순서대로 chunk index 부여, ID는 "경로#인덱스"로 유도
//
// 같은 문서 바이트에 대해 청크 순서/ID/내용이 항상 동일함 (결정적) -
// path 단위 삭제 후 재인제스트가 중복 없이 동작하기 위한 전제

package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ops-checklist/backend/internal/model"
)

const defaultMaxChunkSize = 2000

type Chunker struct {
	maxChunkSize int
}

func New(maxChunkSize int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultMaxChunkSize
	}
	return &Chunker{maxChunkSize: maxChunkSize}
}

// Chunk - 문서 1건을 청크 시퀀스로 분할
// 빈 문서는 빈 시퀀스 반환 (에러 아님)
func (c *Chunker) Chunk(sourcePath, content string) []model.RunbookChunk {
	meta, body := extractFrontmatter(content)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	sections := splitSections(body, meta.Title)

	var chunks []model.RunbookChunk
	for _, sec := range sections {
		for _, piece := range c.splitByBudget(sec.content) {
			idx := len(chunks)
			chunks = append(chunks, model.RunbookChunk{
				ID:           fmt.Sprintf("%s#%d", sourcePath, idx),
				Content:      piece,
				SourcePath:   sourcePath,
				SectionTitle: sec.title,
				Meta:         meta,
				ChunkIndex:   idx,
			})
		}
	}
	return chunks
}

type section struct {
	title   string
	content string
}

// extractFrontmatter - 선두 "---" 블록을 YAML로 파싱
// 블록이 없으면 빈 메타데이터와 원본 그대로 반환
// 파싱 실패 시 블록은 본문에서 제거하되 메타데이터는 비움
func extractFrontmatter(content string) (model.RunbookFrontmatter, string) {
	var meta model.RunbookFrontmatter

	trimmed := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(trimmed, "---\n") && !strings.HasPrefix(trimmed, "---\r\n") {
		return meta, content
	}

	rest := trimmed[strings.Index(trimmed, "\n")+1:]
	end := frontmatterEnd(rest)
	if end < 0 {
		return meta, content
	}

	block := rest[:end]
	body := ""
	if nl := strings.Index(rest[end:], "\n"); nl >= 0 {
		body = rest[end+nl+1:]
	}

	_ = yaml.Unmarshal([]byte(block), &meta)
	return meta, body
}

// frontmatterEnd - 정확히 "---"인 종료 라인의 시작 오프셋 (없으면 -1)
// "----" 같은 수평선 라인은 종료 구분자가 아님
func frontmatterEnd(rest string) int {
	for offset := 0; offset <= len(rest); {
		line := rest[offset:]
		nl := strings.Index(line, "\n")
		if nl >= 0 {
			line = line[:nl]
		}
		if strings.TrimRight(line, "\r") == "---" {
			return offset
		}
		if nl < 0 {
			break
		}
		offset += nl + 1
	}
	return -1
}

// splitSections - #/## 헤더 기준 섹션 분할
// 헤더가 하나도 없으면 본문 전체가 단일 섹션
func splitSections(body, defaultTitle string) []section {
	lines := strings.Split(body, "\n")

	var sections []section
	current := section{title: defaultTitle}
	var buf []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			current.content = text
			sections = append(sections, current)
		}
		buf = nil
	}

	for _, line := range lines {
		if title, ok := headerTitle(line); ok {
			flush()
			current = section{title: title}
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return sections
}

// headerTitle - 라인이 1단계/2단계 마크다운 헤더면 제목 반환
func headerTitle(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "## "):
		return strings.TrimSpace(trimmed[3:]), true
	case strings.HasPrefix(trimmed, "# "):
		return strings.TrimSpace(trimmed[2:]), true
	}
	return "", false
}

// splitByBudget - 크기 상한을 넘는 텍스트를 경계 보존하며 분할
//
// 우선순위: 문단 경계 -> 문장 경계 -> 강제 절단(rune 단위, 최후 수단)
// 단어 중간에서는 절대 자르지 않되, 상한보다 긴 단일 문장은
// 어쩔 수 없이 상한 위치에서 자름 (rune 경계는 항상 보존)
func (c *Chunker) splitByBudget(text string) []string {
	if utf8.RuneCountInString(text) <= c.maxChunkSize {
		return []string{text}
	}

	var pieces []string
	var buf strings.Builder
	bufLen := 0

	appendUnit := func(unit, sep string) {
		unitLen := utf8.RuneCountInString(unit)
		sepLen := utf8.RuneCountInString(sep)
		if bufLen > 0 && bufLen+sepLen+unitLen > c.maxChunkSize {
			pieces = append(pieces, strings.TrimSpace(buf.String()))
			buf.Reset()
			bufLen = 0
		}
		if bufLen > 0 {
			buf.WriteString(sep)
			bufLen += sepLen
		}
		buf.WriteString(unit)
		bufLen += unitLen
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= c.maxChunkSize {
			appendUnit(para, "\n\n")
			continue
		}
		// 문단 하나가 상한을 넘으면 문장 단위로 재분할
		for _, sentence := range splitSentences(para) {
			if utf8.RuneCountInString(sentence) <= c.maxChunkSize {
				appendUnit(sentence, " ")
				continue
			}
			// 문장 하나가 상한을 넘는 극단적인 경우에만 강제 절단
			for _, cut := range c.hardCut(sentence) {
				appendUnit(cut, " ")
			}
		}
	}
	if bufLen > 0 {
		pieces = append(pieces, strings.TrimSpace(buf.String()))
	}
	return pieces
}

// splitSentences - 마침표/물음표/느낌표/줄바꿈 기준 문장 분할
func splitSentences(text string) []string {
	var sentences []string
	var buf strings.Builder

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			sentences = append(sentences, s)
		}
		buf.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		buf.WriteRune(r)
		switch r {
		case '\n':
			flush()
		case '.', '!', '?':
			// 다음 문자가 공백이거나 문자열 끝일 때만 문장 경계로 간주
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				flush()
			}
		}
	}
	flush()
	return sentences
}

// hardCut - 상한 크기로 강제 절단 (rune 경계 보존)
func (c *Chunker) hardCut(text string) []string {
	runes := []rune(text)
	var cuts []string
	for len(runes) > c.maxChunkSize {
		cuts = append(cuts, string(runes[:c.maxChunkSize]))
		runes = runes[c.maxChunkSize:]
	}
	if len(runes) > 0 {
		cuts = append(cuts, string(runes))
	}
	return cuts
}
