// 알림 → 체크리스트 파이프라인
//
// 처리 흐름:
//  1. RECEIVED  - 알림 검증 후 접수
//  2. ENRICHED  - 리소스 메타데이터 / 메트릭 / 로그 보강 (best-effort)
//  3. RETRIEVED - 런북 청크 벡터 검색 (실패 시 빈 결과로 진행)
//  4. GENERATED - LLM으로 체크리스트 생성 (유일한 하드 실패 지점)
//  5. DISPATCHED - 대상별 전송 (fire-and-forget)
//
// 생성 실패만 파이프라인을 FAILED로 종료시키고,
// 저장/전송 실패는 로그만 남기고 체크리스트는 호출자에게 반환됨

package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ops-checklist/backend/internal/enrich"
	"github.com/ops-checklist/backend/internal/model"
	"github.com/ops-checklist/backend/internal/retrieve"
)

// Stage - 파이프라인 처리 단계
type Stage string

const (
	StageReceived   Stage = "RECEIVED"
	StageEnriched   Stage = "ENRICHED"
	StageRetrieved  Stage = "RETRIEVED"
	StageGenerated  Stage = "GENERATED"
	StageDispatched Stage = "DISPATCHED"
	StageFailed     Stage = "FAILED"
)

// Generator - 프롬프트로부터 체크리스트 요약과 스텝을 생성
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, []model.ChecklistStep, error)
}

// Dispatcher - 생성된 체크리스트를 외부 대상에 전송
type Dispatcher interface {
	Dispatch(ctx context.Context, checklist model.DynamicChecklist, alert model.Alert)
}

// ChecklistStore - 체크리스트 영속화 (nil이면 저장 생략)
type ChecklistStore interface {
	InsertChecklist(ctx context.Context, checklist model.DynamicChecklist, alert model.Alert) error
}

type Pipeline struct {
	enricher   *enrich.Enricher
	retriever  *retrieve.Retriever
	generator  Generator
	store      ChecklistStore
	dispatcher Dispatcher

	generateTimeout time.Duration
}

func New(enricher *enrich.Enricher, retriever *retrieve.Retriever, generator Generator, store ChecklistStore, dispatcher Dispatcher, generateTimeout time.Duration) *Pipeline {
	if generateTimeout <= 0 {
		generateTimeout = 60 * time.Second
	}
	return &Pipeline{
		enricher:        enricher,
		retriever:       retriever,
		generator:       generator,
		store:           store,
		dispatcher:      dispatcher,
		generateTimeout: generateTimeout,
	}
}

// ProcessAlert - 알림 1건을 체크리스트로 변환
// 생성 실패 시에만 에러 반환, 저장/전송 실패는 로그로만 남음
func (p *Pipeline) ProcessAlert(ctx context.Context, alert model.Alert) (*model.DynamicChecklist, error) {
	if !alert.Valid() {
		return nil, fmt.Errorf("invalid alert: id=%q severity=%q", alert.ID, alert.Severity)
	}
	log.Printf("[Pipeline] Alert received (id=%s, severity=%s, stage=%s)", alert.ID, alert.Severity, StageReceived)

	enriched := p.enricher.Enrich(ctx, alert)
	log.Printf("[Pipeline] Context enriched (id=%s, stage=%s)", alert.ID, StageEnriched)

	chunks := p.retriever.Retrieve(ctx, enriched)
	log.Printf("[Pipeline] Chunks retrieved (id=%s, count=%d, stage=%s)", alert.ID, len(chunks), StageRetrieved)

	prompt := buildPrompt(enriched, chunks)

	genCtx, cancel := context.WithTimeout(ctx, p.generateTimeout)
	defer cancel()

	summary, steps, err := p.generator.Generate(genCtx, prompt)
	if err != nil {
		log.Printf("[Pipeline] Generation failed (id=%s, stage=%s): %v", alert.ID, StageFailed, err)
		return nil, fmt.Errorf("checklist generation failed: %w", err)
	}

	checklist := model.DynamicChecklist{
		ID:        uuid.New().String(),
		AlertID:   alert.ID,
		Summary:   summary,
		Steps:     steps,
		CreatedAt: time.Now().UTC(),
	}
	log.Printf("[Pipeline] Checklist generated (id=%s, checklist=%s, steps=%d, stage=%s)",
		alert.ID, checklist.ID, len(checklist.Steps), StageGenerated)

	if p.store != nil {
		if err := p.store.InsertChecklist(ctx, checklist, alert); err != nil {
			log.Printf("[Pipeline] Failed to persist checklist (id=%s): %v", checklist.ID, err)
		}
	}

	if p.dispatcher != nil {
		// fire-and-forget - 전송 결과가 파이프라인 성패에 영향을 주지 않음
		go func() {
			dispatchCtx, dispatchCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer dispatchCancel()
			p.dispatcher.Dispatch(dispatchCtx, checklist, alert)
			log.Printf("[Pipeline] Dispatch complete (checklist=%s, stage=%s)", checklist.ID, StageDispatched)
		}()
	}

	return &checklist, nil
}

// buildPrompt - 보강 컨텍스트와 검색된 청크로 생성 프롬프트 구성
func buildPrompt(enriched model.EnrichedContext, chunks []model.RetrievedChunk) string {
	var b strings.Builder

	b.WriteString("You are an on-call operations assistant. Produce a diagnostic checklist for the alert below.\n\n")

	b.WriteString("## Alert\n")
	fmt.Fprintf(&b, "- Title: %s\n", enriched.Alert.Title)
	fmt.Fprintf(&b, "- Severity: %s\n", enriched.Alert.Severity)
	fmt.Fprintf(&b, "- Source: %s\n", enriched.Alert.Source)
	if enriched.Alert.Message != "" {
		fmt.Fprintf(&b, "- Message: %s\n", enriched.Alert.Message)
	}

	if enriched.Resource != nil {
		b.WriteString("\n## Resource\n")
		fmt.Fprintf(&b, "- ID: %s\n", enriched.Resource.ID)
		fmt.Fprintf(&b, "- Name: %s\n", enriched.Resource.Name)
		fmt.Fprintf(&b, "- Type: %s\n", enriched.Resource.Shape)
		fmt.Fprintf(&b, "- Zone: %s\n", enriched.Resource.Zone)
		if len(enriched.Resource.Tags) > 0 {
			keys := make([]string, 0, len(enriched.Resource.Tags))
			for k := range enriched.Resource.Tags {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pairs := make([]string, 0, len(keys))
			for _, k := range keys {
				pairs = append(pairs, k+"="+enriched.Resource.Tags[k])
			}
			fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(pairs, ", "))
		}
	}

	if len(enriched.Metrics) > 0 {
		b.WriteString("\n## Recent metrics\n")
		for _, m := range enriched.Metrics {
			fmt.Fprintf(&b, "- %s: %.2f%s at %s\n", m.Name, m.Value, m.Unit, m.Timestamp.Format(time.RFC3339))
		}
	}

	if len(enriched.Logs) > 0 {
		b.WriteString("\n## Recent logs\n")
		for _, entry := range enriched.Logs {
			fmt.Fprintf(&b, "- [%s] %s\n", entry.Timestamp.Format(time.RFC3339), entry.Message)
		}
	}

	if len(chunks) > 0 {
		b.WriteString("\n## Runbook excerpts\n")
		b.WriteString("Ground each checklist step in these excerpts where possible, and set source_chunk_id to the excerpt id used.\n\n")
		for _, rc := range chunks {
			fmt.Fprintf(&b, "### Excerpt %s (%s, score=%.3f)\n%s\n\n", rc.Chunk.ID, rc.Chunk.SectionTitle, rc.Score, rc.Chunk.Content)
		}
	} else {
		b.WriteString("\nNo runbook excerpts were found for this alert. Produce general diagnostic steps from the alert and resource context, and leave source_chunk_id empty.\n")
	}

	b.WriteString("\nRespond with a short summary and an ordered list of actionable steps. Assign each step a priority of LOW, MEDIUM, HIGH, or CRITICAL.\n")

	return b.String()
}
