package presentations

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

func (r *SQLiteRepository) Put(ctx context.Context, p *models.PresentationDoc) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO presentations (id, name, type, date, content) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, type = excluded.type, date = excluded.date, content = excluded.content
	`, p.ID, p.Name, p.Type, p.Date, p.Content)
	if err != nil {
		return fmt.Errorf("failed to put presentation %s: %w", p.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.PresentationDoc, error) {
	p := &models.PresentationDoc{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, type, date, content FROM presentations WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Type, &p.Date, &p.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation %s: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.PresentationDoc, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type, date, content FROM presentations`)
	if err != nil {
		return nil, fmt.Errorf("failed to select presentations: %w", err)
	}
	defer rows.Close()

	result := []models.PresentationDoc{}
	for rows.Next() {
		var p models.PresentationDoc
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Date, &p.Content); err != nil {
			return nil, fmt.Errorf("failed to scan presentation row: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate presentation rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM presentations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete presentation %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM presentations`); err != nil {
		return fmt.Errorf("failed to clear presentations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM presentations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count presentations: %w", err)
	}
	return n, nil
}
