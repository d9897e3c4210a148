package storage

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/config"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestOpenCloud_RefusesUnconfigured(t *testing.T) {
	_, err := OpenCloud(context.Background(), config.CloudConfig{S3Bucket: "YOUR_BUCKET"}, time.Second, logging.Discard())
	require.ErrorIs(t, err, common.ErrCloudNotConfigured)
}

func TestOpenCloud_UnreachableDatabase(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cfg := config.CloudConfig{
		DatabaseDSN: "postgres://prolens:pw@127.0.0.1:1/prolens?sslmode=disable&connect_timeout=1",
		S3Endpoint:  "http://127.0.0.1:1",
		S3Region:    "us-east-1",
		S3Bucket:    "prolens",
		S3AccessKey: "a",
		S3SecretKey: "s",
	}

	_, err := OpenCloud(ctx, cfg, time.Second, logging.Discard())
	require.ErrorIs(t, err, common.ErrRemoteUnreachable)
}
