package objectstore

import (
	"context"
	"fmt"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// New builds the signer for cfg.Mode. ModeNone yields the unconfigured
// signer, so upload routes answer 500 instead of failing bootstrap.
func New(ctx context.Context, cfg Config, log *logger.Logger) (Signer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	var (
		s   Signer
		err error
	)
	switch cfg.Mode {
	case ModeNone:
		log.Warn("object storage not configured; upload URL routes will fail")
		return Unconfigured(), nil
	case ModeAzure:
		s, err = NewAzureSigner(cfg.Azure, cfg.UploadTTL, log)
	case ModeGCS:
		s, err = NewGCSSigner(ctx, cfg.GCS, cfg.UploadTTL, log)
	case ModeS3:
		s, err = NewS3Signer(ctx, cfg.S3, cfg.UploadTTL, log)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s signer: %w", cfg.Mode, err)
	}
	log.Info("Object storage initialized", "mode", cfg.Mode, "inferred", cfg.Inferred, "upload_ttl", cfg.UploadTTL.String(), "max_files", cfg.MaxFiles)
	return s, nil
}
