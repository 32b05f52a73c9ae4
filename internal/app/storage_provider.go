package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/objectstore"
)

var newSigner = objectstore.New

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode    StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingSetting StorageProviderBootstrapErrorCode = "missing_setting"
	StorageProviderBootstrapErrorInvalidSetting StorageProviderBootstrapErrorCode = "invalid_setting"
	StorageProviderBootstrapErrorConnectFailed  StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code    StorageProviderBootstrapErrorCode
	Mode    string
	Setting string
	Cause   error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q setting=%q): %v",
		e.Code,
		e.Mode,
		e.Setting,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveSigner builds the upload URL signer for the configured provider.
// An unset provider yields the unconfigured signer rather than an error.
func resolveSigner(ctx context.Context, log *logger.Logger, cfg Config) (objectstore.Signer, error) {
	storageCfg := cfg.Storage
	if cfg.StorageErr != nil {
		err := classifyStorageProviderBootstrapError(storageCfg, cfg.StorageErr)
		log.Error(
			"Object storage provider selection failed",
			"mode", storageCfg.Mode,
			"inferred", storageCfg.Inferred,
			"error_code", storageProviderBootstrapErrorCode(err),
			"error", err,
		)
		return nil, err
	}

	log.Info("Selecting object storage provider", "mode", storageCfg.Mode, "inferred", storageCfg.Inferred)
	signer, err := newSigner(ctx, storageCfg, log)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storageCfg.Mode,
			"inferred", storageCfg.Inferred,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return signer, nil
}

func classifyStorageProviderBootstrapError(storageCfg objectstore.Config, err error) error {
	out := &StorageProviderBootstrapError{
		Code:  StorageProviderBootstrapErrorConnectFailed,
		Mode:  string(storageCfg.Mode),
		Cause: err,
	}
	var cfgErr *objectstore.ConfigError
	if errors.As(err, &cfgErr) {
		out.Setting = cfgErr.Setting
		if cfgErr.Mode != "" {
			out.Mode = cfgErr.Mode
		}
		switch cfgErr.Code {
		case objectstore.ConfigErrorInvalidMode:
			out.Code = StorageProviderBootstrapErrorInvalidMode
		case objectstore.ConfigErrorMissingSetting:
			out.Code = StorageProviderBootstrapErrorMissingSetting
		case objectstore.ConfigErrorInvalidSetting:
			out.Code = StorageProviderBootstrapErrorInvalidSetting
		}
	}
	return out
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}
