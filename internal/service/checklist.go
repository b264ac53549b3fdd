package service

import (
	"context"

	"github.com/ops-checklist/backend/internal/model"
)

// checklistRepo - DB 인터페이스
type checklistRepo interface {
	GetChecklistList(ctx context.Context) ([]model.ChecklistListItem, error)
	GetChecklistDetail(ctx context.Context, id string) (*model.ChecklistDetailResponse, error)
}

// ChecklistService - 저장된 체크리스트 조회
type ChecklistService struct {
	db checklistRepo
}

func NewChecklistService(db checklistRepo) *ChecklistService {
	return &ChecklistService{db: db}
}

func (s *ChecklistService) ListChecklists(ctx context.Context) ([]model.ChecklistListItem, error) {
	return s.db.GetChecklistList(ctx)
}

func (s *ChecklistService) GetChecklistDetail(ctx context.Context, id string) (*model.ChecklistDetailResponse, error) {
	return s.db.GetChecklistDetail(ctx, id)
}
