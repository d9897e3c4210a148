// Package storage opens the stores the client works with: the local SQLite
// file holding both document collections and the flag table, and the
// optional PostgreSQL database of the cloud mirror.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/prolens/internal/client/migrations"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/flags"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/materials"
	"github.com/dmitrijs2005/prolens/internal/client/repositories/presentations"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Local bundles the SQLite handle with the repositories built on it.
type Local struct {
	DB            *sql.DB
	Materials     materials.Repository
	Presentations presentations.Repository
	Flags         flags.Repository
}

// MigrateLocal applies the embedded local migrations. Applying them to an
// up-to-date file is a no-op.
func MigrateLocal(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Local())
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// OpenLocal opens (creating if needed) the SQLite file at path and brings
// its schema up to date. Every failure wraps common.ErrStorageUnavailable.
func OpenLocal(ctx context.Context, path string) (*Local, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	if err := MigrateLocal(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return NewLocal(db), nil
}

// NewLocal wires repositories over an already migrated database.
func NewLocal(db *sql.DB) *Local {
	return &Local{
		DB:            db,
		Materials:     materials.NewSQLiteRepository(db),
		Presentations: presentations.NewSQLiteRepository(db),
		Flags:         flags.NewSQLiteRepository(db),
	}
}

func (l *Local) Close() error {
	return l.DB.Close()
}
