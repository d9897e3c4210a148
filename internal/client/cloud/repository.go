// Package cloud implements the optional cloud mirror of learning materials:
// a PostgreSQL collection observed through LISTEN/NOTIFY and an
// S3-compatible bucket holding the material files.
package cloud

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/dbx"
	"github.com/google/uuid"
)

// ChangeChannel is the notification channel fed by the materials trigger.
const ChangeChannel = "materials_changed"

// Repository is the remote materials collection. Ids and creation times are
// assigned by the database.
type Repository interface {
	Add(ctx context.Context, m *models.LearningMaterial) error
	List(ctx context.Context) ([]models.LearningMaterial, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateAnalyzed(ctx context.Context, id string, analyzed bool) (bool, error)
}

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts m and fills in the id and created_at chosen by the server.
func (r *PostgresRepository) Add(ctx context.Context, m *models.LearningMaterial) error {
	query := `
		INSERT INTO materials (name, type, content, mime_type, is_analyzed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at
	`
	err := r.db.QueryRowContext(ctx, query, m.Name, string(m.Type), m.Content, m.MimeType, m.IsAnalyzed).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add material: %w", err)
	}
	return nil
}

// List returns the whole collection, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]models.LearningMaterial, error) {
	query := `
		SELECT id::text, name, type, content, mime_type, is_analyzed, created_at
		FROM materials
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select materials: %w", err)
	}
	defer rows.Close()

	result := []models.LearningMaterial{}
	for rows.Next() {
		var m models.LearningMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Content, &m.MimeType, &m.IsAnalyzed, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan material row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate material rows: %w", err)
	}

	return result, nil
}

// Delete removes the record and reports whether it existed. Ids that are
// not UUIDs cannot exist remotely and report false.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, uid.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete material %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// UpdateAnalyzed writes only the is_analyzed column and reports whether the
// value changed. No read happens first.
func (r *PostgresRepository) UpdateAnalyzed(ctx context.Context, id string, analyzed bool) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE materials SET is_analyzed = $1 WHERE id = $2 AND is_analyzed <> $1`, analyzed, uid.String())
	if err != nil {
		return false, fmt.Errorf("failed to update material %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}
