package config

import (
	"github.com/joho/godotenv"
)

// Credential keys understood in the credentials file.
const (
	keyCloudDSN     = "PROLENS_CLOUD_DSN"
	keyS3Endpoint   = "PROLENS_S3_ENDPOINT"
	keyS3Region     = "PROLENS_S3_REGION"
	keyS3Bucket     = "PROLENS_S3_BUCKET"
	keyS3AccessKey  = "PROLENS_S3_ACCESS_KEY"
	keyS3SecretKey  = "PROLENS_S3_SECRET_KEY"
	keyS3PublicURL  = "PROLENS_S3_PUBLIC_URL"
	keyAIAPIKey     = "PROLENS_AI_API_KEY"
	keyAIBaseURL    = "PROLENS_AI_BASE_URL"
	keyAIModel      = "PROLENS_AI_MODEL"
	keyRecoveryCode = "PROLENS_RECOVERY_CODE"
)

// parseCredentials overlays cfg with the dotenv-format file named by
// cfg.CredentialsFile. The process environment is left untouched.
func parseCredentials(cfg *Config) {
	if cfg.CredentialsFile == "" {
		return
	}

	vals, err := godotenv.Read(cfg.CredentialsFile)
	if err != nil {
		panic(err)
	}

	setString(&cfg.Cloud.DatabaseDSN, vals[keyCloudDSN])
	setString(&cfg.Cloud.S3Endpoint, vals[keyS3Endpoint])
	setString(&cfg.Cloud.S3Region, vals[keyS3Region])
	setString(&cfg.Cloud.S3Bucket, vals[keyS3Bucket])
	setString(&cfg.Cloud.S3AccessKey, vals[keyS3AccessKey])
	setString(&cfg.Cloud.S3SecretKey, vals[keyS3SecretKey])
	setString(&cfg.Cloud.PublicBaseURL, vals[keyS3PublicURL])
	setString(&cfg.AI.APIKey, vals[keyAIAPIKey])
	setString(&cfg.AI.BaseURL, vals[keyAIBaseURL])
	setString(&cfg.AI.Model, vals[keyAIModel])
	setString(&cfg.RecoveryCode, vals[keyRecoveryCode])
}
