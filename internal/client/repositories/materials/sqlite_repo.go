package materials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, m *models.LearningMaterial) error {
	query := `
		INSERT INTO materials (id, type, name, content, mime_type, is_analyzed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			content = excluded.content,
			mime_type = excluded.mime_type,
			is_analyzed = excluded.is_analyzed
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, string(m.Type), m.Name, m.Content, m.MimeType, m.IsAnalyzed)
	if err != nil {
		return fmt.Errorf("failed to put material %s: %w", m.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.LearningMaterial, error) {
	query := `SELECT id, type, name, content, mime_type, is_analyzed FROM materials WHERE id = ?`

	m := &models.LearningMaterial{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Type, &m.Name, &m.Content, &m.MimeType, &m.IsAnalyzed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material %s: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.LearningMaterial, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, type, name, content, mime_type, is_analyzed FROM materials`)
	if err != nil {
		return nil, fmt.Errorf("failed to select materials: %w", err)
	}
	defer rows.Close()

	result := []models.LearningMaterial{}
	for rows.Next() {
		var m models.LearningMaterial
		if err := rows.Scan(&m.ID, &m.Type, &m.Name, &m.Content, &m.MimeType, &m.IsAnalyzed); err != nil {
			return nil, fmt.Errorf("failed to scan material row: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate material rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete material %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM materials`)
	if err != nil {
		return fmt.Errorf("failed to clear materials: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count materials: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkAnalyzed(ctx context.Context, id string) (bool, error) {
	err := dbx.ExecOne(ctx, r.db, `UPDATE materials SET is_analyzed = 1 WHERE id = ? AND is_analyzed = 0`, id)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to mark material %s analyzed: %w", id, err)
	}
	return true, nil
}
