package app

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/objectstore"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode, Mode: "ftp"}, StorageProviderBootstrapErrorInvalidMode},
		{"missing setting", &objectstore.ConfigError{Code: objectstore.ConfigErrorMissingSetting, Mode: "s3", Setting: "S3_UPLOAD_BUCKET"}, StorageProviderBootstrapErrorMissingSetting},
		{"invalid setting", &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidSetting, Mode: "azure", Setting: "AZURE_STORAGE_ACCOUNT_KEY"}, StorageProviderBootstrapErrorInvalidSetting},
		{"connect failed", errors.New("dial tcp: refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStorageProviderBootstrapError(objectstore.Config{Mode: objectstore.ModeS3}, tc.err)

			var got *StorageProviderBootstrapError
			if !errors.As(err, &got) {
				t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
			}
			if got.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, got.Code)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("cause not preserved: %v", err)
			}
		})
	}
}

func TestClassifyKeepsSettingName(t *testing.T) {
	err := classifyStorageProviderBootstrapError(objectstore.Config{}, &objectstore.ConfigError{
		Code:    objectstore.ConfigErrorMissingSetting,
		Mode:    "azure",
		Setting: "AZURE_STORAGE_CONTAINER",
	})
	var got *StorageProviderBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StorageProviderBootstrapError, got=%T", err)
	}
	if got.Mode != "azure" || got.Setting != "AZURE_STORAGE_CONTAINER" {
		t.Fatalf("want mode=azure setting=AZURE_STORAGE_CONTAINER, got mode=%q setting=%q", got.Mode, got.Setting)
	}
}

func TestStorageProviderBootstrapErrorCodeDefaultsToConnectFailed(t *testing.T) {
	if got := storageProviderBootstrapErrorCode(errors.New("x")); got != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("want=%q got=%q", StorageProviderBootstrapErrorConnectFailed, got)
	}
}

func TestResolveSignerUsesFactory(t *testing.T) {
	orig := newSigner
	t.Cleanup(func() { newSigner = orig })

	called := false
	newSigner = func(_ context.Context, cfg objectstore.Config, _ *logger.Logger) (objectstore.Signer, error) {
		called = true
		if cfg.Mode != objectstore.ModeGCS {
			t.Fatalf("mode: want=gcs got=%q", cfg.Mode)
		}
		return objectstore.Unconfigured(), nil
	}

	s, err := resolveSigner(context.Background(), logger.Nop(), Config{Storage: objectstore.Config{Mode: objectstore.ModeGCS}})
	if err != nil {
		t.Fatalf("resolveSigner: %v", err)
	}
	if !called || s == nil {
		t.Fatalf("factory not used")
	}
}

func TestResolveSignerSurfacesConfigError(t *testing.T) {
	orig := newSigner
	t.Cleanup(func() { newSigner = orig })
	newSigner = func(context.Context, objectstore.Config, *logger.Logger) (objectstore.Signer, error) {
		t.Fatalf("factory must not run with a config error")
		return nil, nil
	}

	cfg := Config{StorageErr: &objectstore.ConfigError{Code: objectstore.ConfigErrorInvalidMode, Mode: "ftp"}}
	_, err := resolveSigner(context.Background(), logger.Nop(), cfg)
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorInvalidMode, got)
	}
}

func TestResolveSignerWrapsFactoryError(t *testing.T) {
	orig := newSigner
	t.Cleanup(func() { newSigner = orig })
	boom := errors.New("load aws config: no credentials")
	newSigner = func(context.Context, objectstore.Config, *logger.Logger) (objectstore.Signer, error) {
		return nil, boom
	}

	_, err := resolveSigner(context.Background(), logger.Nop(), Config{Storage: objectstore.Config{Mode: objectstore.ModeS3}})
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped cause, got %v", err)
	}
	if got := storageProviderBootstrapErrorCode(err); got != StorageProviderBootstrapErrorConnectFailed {
		t.Fatalf("code: want=%q got=%q", StorageProviderBootstrapErrorConnectFailed, got)
	}
}
