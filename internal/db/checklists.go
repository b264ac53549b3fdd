package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ops-checklist/backend/internal/model"
)

// EnsureChecklistSchema - checklists 테이블 생성 (없으면)
func (db *Postgres) EnsureChecklistSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS checklists (
			id          TEXT         PRIMARY KEY,
			alert_id    TEXT         NOT NULL,
			alert_title TEXT         NOT NULL DEFAULT '',
			severity    TEXT         NOT NULL DEFAULT '',
			summary     TEXT         NOT NULL DEFAULT '',
			steps       JSONB        NOT NULL DEFAULT '[]',
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create checklists table: %w", err)
	}
	return nil
}

// InsertChecklist - 생성된 체크리스트 저장
func (db *Postgres) InsertChecklist(ctx context.Context, checklist model.DynamicChecklist, alert model.Alert) error {
	stepsJSON, err := json.Marshal(checklist.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal checklist steps: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO checklists (id, alert_id, alert_title, severity, summary, steps, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, checklist.ID, checklist.AlertID, alert.Title, string(alert.Severity), checklist.Summary, stepsJSON, checklist.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert checklist: %w", err)
	}
	return nil
}

func (db *Postgres) GetChecklistList(ctx context.Context) ([]model.ChecklistListItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, alert_id, alert_title, severity, summary, created_at
		FROM checklists
		ORDER BY created_at DESC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.ChecklistListItem
	for rows.Next() {
		var item model.ChecklistListItem
		if err := rows.Scan(&item.ID, &item.AlertID, &item.AlertTitle, &item.Severity, &item.Summary, &item.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, item)
	}

	if list == nil {
		list = []model.ChecklistListItem{}
	}
	return list, rows.Err()
}

func (db *Postgres) GetChecklistDetail(ctx context.Context, id string) (*model.ChecklistDetailResponse, error) {
	var detail model.ChecklistDetailResponse
	err := db.Pool.QueryRow(ctx, `
		SELECT id, alert_id, alert_title, severity, summary, steps, created_at
		FROM checklists
		WHERE id = $1;
	`, id).Scan(
		&detail.ID,
		&detail.AlertID,
		&detail.AlertTitle,
		&detail.Severity,
		&detail.Summary,
		&detail.Steps,
		&detail.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}
