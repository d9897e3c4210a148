package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/cloud"
	"github.com/dmitrijs2005/prolens/internal/client/config"
	"github.com/dmitrijs2005/prolens/internal/client/migrations"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Cloud bundles the remote collection, its live subscription and the blob
// store.
type Cloud struct {
	DB         *sql.DB
	Materials  *cloud.PostgresRepository
	Subscriber *cloud.Subscriber
	Blobs      *cloud.BlobStore
}

// MigrateCloud applies the embedded PostgreSQL migrations.
func MigrateCloud(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Cloud())
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// OpenCloud connects to the cloud mirror described by cfg. It must only be
// called when cfg.IsConfigured(); failures wrap common.ErrRemoteUnreachable.
func OpenCloud(ctx context.Context, cfg config.CloudConfig, retry time.Duration, log logging.Logger) (*Cloud, error) {
	if !cfg.IsConfigured() {
		return nil, common.ErrCloudNotConfigured
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}

	if err := MigrateCloud(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}

	blobs, err := cloud.NewBlobStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnreachable, err)
	}

	repo := cloud.NewPostgresRepository(db)

	return &Cloud{
		DB:         db,
		Materials:  repo,
		Subscriber: cloud.NewSubscriber(cfg.DatabaseDSN, repo, retry, log.With("component", "subscription")),
		Blobs:      blobs,
	}, nil
}

func (c *Cloud) Close() error {
	return c.DB.Close()
}
