package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/prolens/internal/flagx"
	"github.com/dmitrijs2005/prolens/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Secrets are
// not accepted here; they belong in the credentials file.
type JsonConfig struct {
	DataDir           string         `json:"data_dir"`
	DatabaseFile      string         `json:"database_file"`
	ExportDir         string         `json:"export_dir"`
	LogLevel          string         `json:"log_level"`
	MetricsAddr       string         `json:"metrics_addr"`
	CacheSize         int            `json:"cache_size"`
	CredentialsFile   string         `json:"credentials_file"`
	SubscriptionRetry timex.Duration `json:"subscription_retry"`
	LauncherURL       string         `json:"launcher_url"`
	S3Endpoint        string         `json:"s3_endpoint"`
	S3Region          string         `json:"s3_region"`
	S3Bucket          string         `json:"s3_bucket"`
	PublicBaseURL     string         `json:"public_base_url"`
	AIBaseURL         string         `json:"ai_base_url"`
	AIModel           string         `json:"ai_model"`
}

// parseJson overlays cfg with the non-empty fields of the JSON file named by
// -c/-config. Without the flag nothing happens; read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DatabaseFile, jc.DatabaseFile)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	setString(&cfg.CredentialsFile, jc.CredentialsFile)
	setString(&cfg.LauncherURL, jc.LauncherURL)
	setString(&cfg.Cloud.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.Cloud.S3Region, jc.S3Region)
	setString(&cfg.Cloud.S3Bucket, jc.S3Bucket)
	setString(&cfg.Cloud.PublicBaseURL, jc.PublicBaseURL)
	setString(&cfg.AI.BaseURL, jc.AIBaseURL)
	setString(&cfg.AI.Model, jc.AIModel)

	if jc.CacheSize > 0 {
		cfg.CacheSize = jc.CacheSize
	}
	if jc.SubscriptionRetry.Duration > 0 {
		cfg.SubscriptionRetry = jc.SubscriptionRetry.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
