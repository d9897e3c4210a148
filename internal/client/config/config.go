package config

import (
	"path/filepath"
	"strings"
	"time"
)

// placeholderPrefix marks credential values that were never filled in.
const placeholderPrefix = "YOUR_"

// CloudConfig is the credentials block of the cloud mirror.
type CloudConfig struct {
	DatabaseDSN   string
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	PublicBaseURL string
}

// IsConfigured reports whether every required credential is present and is
// not a placeholder. It depends on nothing but the values themselves.
func (c CloudConfig) IsConfigured() bool {
	for _, v := range []string{c.DatabaseDSN, c.S3Endpoint, c.S3Bucket, c.S3AccessKey, c.S3SecretKey} {
		v = strings.TrimSpace(v)
		if v == "" || strings.HasPrefix(v, placeholderPrefix) {
			return false
		}
	}
	return true
}

// ObjectBaseURL is the prefix of public object references; it falls back to
// the S3 endpoint.
func (c CloudConfig) ObjectBaseURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return strings.TrimRight(c.S3Endpoint, "/")
}

type AIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func (c AIConfig) IsConfigured() bool {
	k := strings.TrimSpace(c.APIKey)
	return k != "" && !strings.HasPrefix(k, placeholderPrefix)
}

// Config holds runtime settings for the ProLens CLI.
type Config struct {
	DataDir           string
	DatabaseFile      string
	ExportDir         string
	LogLevel          string
	MetricsAddr       string
	CacheSize         int
	CredentialsFile   string
	SubscriptionRetry time.Duration
	LauncherURL       string
	RecoveryCode      string

	Cloud CloudConfig
	AI    AIConfig
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "prolens-data"
	c.DatabaseFile = "prolens.db"
	c.ExportDir = "exports"
	c.LogLevel = "info"
	c.CacheSize = 256
	c.SubscriptionRetry = 5 * time.Second
	c.LauncherURL = "https://prolens.app"
	c.Cloud.S3Region = "us-east-1"
	c.AI.Model = "gpt-4o-mini"
}

// DatabasePath joins DataDir and DatabaseFile unless DatabaseFile is absolute.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.DatabaseFile) {
		return c.DatabaseFile
	}
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// LoadConfig builds a Config from defaults, the JSON file, args and the
// credentials file, later sources overriding earlier ones. Unreadable files
// and bad flag values panic.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	parseCredentials(cfg)
	return cfg
}
