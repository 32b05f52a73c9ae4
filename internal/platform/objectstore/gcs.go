package objectstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/siteproof-backend/internal/platform/envutil"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// generationMatchHeader makes the PUT fail when any object already exists at the name.
const generationMatchHeader = "x-goog-if-generation-match:0"

type gcsSigner struct {
	log    *logger.Logger
	client *storage.Client
	cfg    GCSConfig
	ttl    time.Duration
	now    func() time.Time
}

// ClientOptionsFromEnv accepts GOOGLE_APPLICATION_CREDENTIALS_JSON or a
// GOOGLE_APPLICATION_CREDENTIALS path; nil falls back to ADC.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	if creds == "" {
		creds = envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")
	}
	switch {
	case creds == "":
		return nil
	case creds[0] == '{':
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	default:
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
}

func NewGCSSigner(ctx context.Context, cfg GCSConfig, ttl time.Duration, log *logger.Logger, opts ...option.ClientOption) (Signer, error) {
	if len(opts) == 0 {
		opts = ClientOptionsFromEnv()
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &gcsSigner{log: log.With("signer", "GCS"), client: client, cfg: cfg, ttl: ttl, now: time.Now}, nil
}

func (s *gcsSigner) Provider() Mode     { return ModeGCS }
func (s *gcsSigner) IsConfigured() bool { return s != nil && s.client != nil && s.cfg.Bucket != "" }

func (s *gcsSigner) GenerateUploadURLs(ctx context.Context, files []FileDescriptor, namespace string) ([]UploadTarget, error) {
	targets, err := generate(ctx, files, namespace, func(_ context.Context, blob, contentType string) (string, error) {
		return s.client.Bucket(s.cfg.Bucket).SignedURL(blob, s.options(http.MethodPut, contentType, s.ttl, generationMatchHeader))
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("upload urls issued", "count", len(targets), "namespace", namespace)
	return targets, nil
}

func (s *gcsSigner) GetDownloadURL(_ context.Context, blobPath string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.ttl
	}
	return s.client.Bucket(s.cfg.Bucket).SignedURL(blobPath, s.options(http.MethodGet, "", expiry))
}

func (s *gcsSigner) options(method, contentType string, ttl time.Duration, headers ...string) *storage.SignedURLOptions {
	opts := &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      method,
		Expires:     s.now().Add(ttl),
		ContentType: contentType,
		Headers:     headers,
	}
	if s.cfg.GoogleAccessID != "" && len(s.cfg.PrivateKey) > 0 {
		opts.GoogleAccessID = s.cfg.GoogleAccessID
		opts.PrivateKey = s.cfg.PrivateKey
	}
	return opts
}
