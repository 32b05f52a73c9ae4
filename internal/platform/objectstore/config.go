package objectstore

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/siteproof-backend/internal/platform/envutil"
)

type Mode string

const (
	ModeNone  Mode = ""
	ModeAzure Mode = "azure"
	ModeGCS   Mode = "gcs"
	ModeS3    Mode = "s3"
)

const (
	DefaultUploadTTL = 15 * time.Minute
	DefaultMaxFiles  = 20
)

type AzureConfig struct {
	AccountName string
	AccountKey  string
	Container   string
	// Endpoint overrides https://<account>.blob.core.windows.net, e.g. for Azurite.
	Endpoint string
}

type GCSConfig struct {
	Bucket string
	// GoogleAccessID and PrivateKey sign locally; blank means the client's credentials sign.
	GoogleAccessID string
	PrivateKey     []byte
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

type Config struct {
	Mode      Mode
	UploadTTL time.Duration
	MaxFiles  int
	Azure     AzureConfig
	GCS       GCSConfig
	S3        S3Config
	// Inferred is true when Mode came from which provider settings were present.
	Inferred bool
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode    ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingSetting ConfigErrorCode = "missing_setting"
	ConfigErrorInvalidSetting ConfigErrorCode = "invalid_setting"
)

// ConfigError is returned at bootstrap for a misconfigured provider.
type ConfigError struct {
	Code    ConfigErrorCode
	Mode    string
	Setting string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)", e.Mode, ModeAzure, ModeGCS, ModeS3)
	case ConfigErrorMissingSetting:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires %s to be set", e.Mode, e.Setting)
	case ConfigErrorInvalidSetting:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q has an invalid %s", e.Mode, e.Setting)
	default:
		return "invalid object storage config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ResolveConfigFromEnv reads OBJECT_STORAGE_MODE and the provider settings.
// With no explicit mode the provider whose bucket/account is set wins, in the
// order azure, gcs, s3; with none set the result is ModeNone.
func ResolveConfigFromEnv() (Config, error) {
	cfg := Config{
		UploadTTL: envutil.Minutes("UPLOAD_URL_TTL_MINUTES", DefaultUploadTTL),
		MaxFiles:  envutil.Int("UPLOAD_MAX_FILES", DefaultMaxFiles),
		Azure: AzureConfig{
			AccountName: envutil.String("AZURE_STORAGE_ACCOUNT_NAME", ""),
			AccountKey:  envutil.String("AZURE_STORAGE_ACCOUNT_KEY", ""),
			Container:   envutil.String("AZURE_STORAGE_CONTAINER", ""),
			Endpoint:    envutil.String("AZURE_STORAGE_ENDPOINT", ""),
		},
		GCS: GCSConfig{
			Bucket:         envutil.String("GCS_UPLOAD_BUCKET", ""),
			GoogleAccessID: envutil.String("GCS_SIGNER_EMAIL", ""),
		},
		S3: S3Config{
			Bucket:    envutil.String("S3_UPLOAD_BUCKET", ""),
			Region:    envutil.String("AWS_REGION", "us-east-1"),
			Endpoint:  envutil.String("S3_ENDPOINT", ""),
			PathStyle: envutil.Bool("S3_PATH_STYLE", false),
		},
	}
	if keyPath := envutil.String("GCS_SIGNER_PRIVATE_KEY_FILE", ""); keyPath != "" {
		pem, err := os.ReadFile(keyPath)
		if err != nil {
			return cfg, &ConfigError{Code: ConfigErrorInvalidSetting, Mode: string(ModeGCS), Setting: "GCS_SIGNER_PRIVATE_KEY_FILE", Cause: err}
		}
		cfg.GCS.PrivateKey = pem
	}

	raw := envutil.String("OBJECT_STORAGE_MODE", "")
	switch mode := Mode(strings.ToLower(raw)); mode {
	case ModeAzure, ModeGCS, ModeS3:
		cfg.Mode = mode
	case ModeNone:
		cfg.Inferred = true
		switch {
		case cfg.Azure.AccountName != "":
			cfg.Mode = ModeAzure
		case cfg.GCS.Bucket != "":
			cfg.Mode = ModeGCS
		case cfg.S3.Bucket != "":
			cfg.Mode = ModeS3
		default:
			return cfg, nil
		}
	default:
		return cfg, &ConfigError{Code: ConfigErrorInvalidMode, Mode: raw}
	}
	return cfg, ValidateConfig(cfg)
}

func ValidateConfig(cfg Config) error {
	missing := func(setting string) error {
		return &ConfigError{Code: ConfigErrorMissingSetting, Mode: string(cfg.Mode), Setting: setting}
	}
	switch cfg.Mode {
	case ModeNone:
		return nil
	case ModeAzure:
		switch {
		case cfg.Azure.AccountName == "":
			return missing("AZURE_STORAGE_ACCOUNT_NAME")
		case cfg.Azure.AccountKey == "":
			return missing("AZURE_STORAGE_ACCOUNT_KEY")
		case cfg.Azure.Container == "":
			return missing("AZURE_STORAGE_CONTAINER")
		}
		if _, err := base64.StdEncoding.DecodeString(cfg.Azure.AccountKey); err != nil {
			return &ConfigError{Code: ConfigErrorInvalidSetting, Mode: string(cfg.Mode), Setting: "AZURE_STORAGE_ACCOUNT_KEY", Cause: err}
		}
	case ModeGCS:
		if cfg.GCS.Bucket == "" {
			return missing("GCS_UPLOAD_BUCKET")
		}
	case ModeS3:
		if cfg.S3.Bucket == "" {
			return missing("S3_UPLOAD_BUCKET")
		}
	default:
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	return nil
}
