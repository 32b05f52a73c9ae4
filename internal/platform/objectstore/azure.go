package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// clockSkew backdates SAS start times so a slightly fast storage clock still accepts them.
const clockSkew = 5 * time.Minute

type azureSigner struct {
	log       *logger.Logger
	cred      *azblob.SharedKeyCredential
	container string
	baseURL   string
	ttl       time.Duration
	now       func() time.Time
}

func NewAzureSigner(cfg AzureConfig, ttl time.Duration, log *logger.Logger) (Signer, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, &ConfigError{Code: ConfigErrorInvalidSetting, Mode: string(ModeAzure), Setting: "AZURE_STORAGE_ACCOUNT_KEY", Cause: err}
	}
	base := strings.TrimRight(cfg.Endpoint, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.AccountName)
	}
	return &azureSigner{
		log:       log.With("signer", "Azure"),
		cred:      cred,
		container: cfg.Container,
		baseURL:   base,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

func (s *azureSigner) Provider() Mode     { return ModeAzure }
func (s *azureSigner) IsConfigured() bool { return s != nil && s.cred != nil }

// Create permission alone cannot overwrite an existing blob, and every blob
// name is fresh, so each URL writes exactly one object.
func (s *azureSigner) GenerateUploadURLs(ctx context.Context, files []FileDescriptor, namespace string) ([]UploadTarget, error) {
	targets, err := generate(ctx, files, namespace, func(_ context.Context, blob, _ string) (string, error) {
		return s.sign(blob, sas.BlobPermissions{Create: true}, s.ttl)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("upload urls issued", "count", len(targets), "namespace", namespace)
	return targets, nil
}

func (s *azureSigner) GetDownloadURL(_ context.Context, blobPath string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.ttl
	}
	return s.sign(blobPath, sas.BlobPermissions{Read: true}, expiry)
}

func (s *azureSigner) sign(blob string, perms sas.BlobPermissions, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	qp, err := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-clockSkew),
		ExpiryTime:    now.Add(ttl),
		Permissions:   perms.String(),
		ContainerName: s.container,
		BlobName:      blob,
	}.SignWithSharedKey(s.cred)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s?%s", s.baseURL, url.PathEscape(s.container), escapeBlobPath(blob), qp.Encode()), nil
}

func escapeBlobPath(blob string) string {
	parts := strings.Split(blob, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
