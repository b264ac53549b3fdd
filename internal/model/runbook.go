package model

// RunbookFrontmatter - 런북 문서 선두의 메타데이터 블록
// 문서 전체에 적용되며 모든 청크에 그대로 복사됨
type RunbookFrontmatter struct {
	Title string `json:"title" yaml:"title"`

	// Tags: 자유 분류 태그 (예: memory, disk)
	Tags []string `json:"tags" yaml:"tags"`

	// AppliesTo: 적용 대상 리소스 shape 목록 (비어 있으면 전체 적용)
	AppliesTo []string `json:"applies_to" yaml:"applies_to"`
}

// Matches - 주어진 리소스 shape에 이 런북이 적용되는지 확인
func (f RunbookFrontmatter) Matches(shape string) bool {
	if len(f.AppliesTo) == 0 {
		return true
	}
	for _, s := range f.AppliesTo {
		if s == shape {
			return true
		}
	}
	return false
}

// RunbookChunk - 인덱싱/검색의 단위가 되는 런북 문서 조각
//
// ID는 (sourcePath, chunkIndex)에서 유도되어 같은 문서 바이트에 대해 항상 동일 -
// path 단위 delete 후 재인제스트 시 중복이 생기지 않음
type RunbookChunk struct {
	ID           string             `json:"id"`
	Content      string             `json:"content"`
	SourcePath   string             `json:"source_path"`
	SectionTitle string             `json:"section_title"`
	Meta         RunbookFrontmatter `json:"meta"`
	Embedding    []float32          `json:"-"`

	// ChunkIndex: 문서 내 순서 (0부터)
	ChunkIndex int `json:"chunk_index"`
}

// RetrievedChunk - 검색 결과 청크 + 유사도 점수
// 점수는 코사인 유사도 (높을수록 관련성 높음)
type RetrievedChunk struct {
	Chunk RunbookChunk `json:"chunk"`
	Score float64      `json:"score"`
}

// SearchFilter - 검색 후보를 frontmatter 메타데이터로 제한
type SearchFilter struct {
	// ResourceShape: 비어 있지 않으면 AppliesTo에 매칭되는 청크만 후보
	ResourceShape string
}

// IngestResult - 인제스트 결과 집계
type IngestResult struct {
	ChunksStored int `json:"chunks_stored"`
	ChunksFailed int `json:"chunks_failed"`
	DocsFailed   int `json:"docs_failed"`
}
