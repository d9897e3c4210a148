package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "prolens-data", c.DataDir)
	assert.Equal(t, "prolens.db", c.DatabaseFile)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 5*time.Second, c.SubscriptionRetry)
	assert.Equal(t, 256, c.CacheSize)
	assert.False(t, c.Cloud.IsConfigured())
	assert.False(t, c.AI.IsConfigured())
}

func TestLoadConfig_DefaultsWithoutArgs(t *testing.T) {
	cfg := LoadConfig(nil)

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, filepath.Join("prolens-data", "prolens.db"), cfg.DatabasePath())
	assert.Empty(t, cfg.MetricsAddr)
}

func TestDatabasePath_Absolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x.db")
	cfg := &Config{DataDir: "ignored", DatabaseFile: abs}
	assert.Equal(t, abs, cfg.DatabasePath())
}

func TestCloudConfig_IsConfigured(t *testing.T) {
	full := CloudConfig{
		DatabaseDSN: "postgres://u:p@db/prolens",
		S3Endpoint:  "http://minio:9000",
		S3Bucket:    "prolens",
		S3AccessKey: "access",
		S3SecretKey: "secret",
	}
	assert.True(t, full.IsConfigured())

	placeholder := full
	placeholder.S3SecretKey = "YOUR_SECRET_KEY"
	assert.False(t, placeholder.IsConfigured())

	missing := full
	missing.DatabaseDSN = "  "
	assert.False(t, missing.IsConfigured())
}

func TestCloudConfig_ObjectBaseURL(t *testing.T) {
	c := CloudConfig{S3Endpoint: "http://minio:9000/"}
	assert.Equal(t, "http://minio:9000", c.ObjectBaseURL())

	c.PublicBaseURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com", c.ObjectBaseURL())
}

func TestLoadConfig_FullPrecedence(t *testing.T) {
	dir := t.TempDir()

	envPath := filepath.Join(dir, "prolens.env")
	require.NoError(t, os.WriteFile(envPath, []byte("PROLENS_AI_API_KEY=sk-test\nPROLENS_AI_MODEL=gpt-4o\n"), 0o600))

	jsonPath := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"data_dir":         "from-json",
		"log_level":        "warn",
		"credentials_file": envPath,
	})

	cfg := LoadConfig([]string{"-c", jsonPath, "-l", "error"})

	assert.Equal(t, "from-json", cfg.DataDir)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.True(t, cfg.AI.IsConfigured())
}
