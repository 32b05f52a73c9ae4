package objectstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

// FileDescriptor is one file a client intends to upload.
type FileDescriptor struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// UploadTarget is a single-use pre-signed PUT for one file.
type UploadTarget struct {
	FileName    string `json:"fileName"`
	UploadURL   string `json:"uploadUrl"`
	BlobName    string `json:"blobName"`
	ContentType string `json:"contentType"`
}

// Signer issues pre-signed URLs against one storage provider.
type Signer interface {
	Provider() Mode
	IsConfigured() bool
	GenerateUploadURLs(ctx context.Context, files []FileDescriptor, namespace string) ([]UploadTarget, error)
	GetDownloadURL(ctx context.Context, blobPath string, expiry time.Duration) (string, error)
}

var (
	ErrNotConfigured = errors.New("object storage is not configured")
	ErrInvalidFiles  = errors.New("invalid upload request")
)

const DefaultContentType = "application/octet-stream"

// ValidateFiles enforces the request-level limits shared by every provider.
func ValidateFiles(files []FileDescriptor, maxFiles int) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: files must not be empty", ErrInvalidFiles)
	}
	if maxFiles > 0 && len(files) > maxFiles {
		return fmt.Errorf("%w: at most %d files per request", ErrInvalidFiles, maxFiles)
	}
	for i, f := range files {
		if strings.TrimSpace(f.FileName) == "" {
			return fmt.Errorf("%w: files[%d].fileName is required", ErrInvalidFiles, i)
		}
	}
	return nil
}

// ContentTypeFor returns the declared type, else one guessed from the extension.
func ContentTypeFor(f FileDescriptor) string {
	if ct := strings.TrimSpace(f.ContentType); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(f.FileName))); ct != "" {
		return ct
	}
	return DefaultContentType
}

type putSigner func(ctx context.Context, blobName, contentType string) (string, error)

// generate builds one target per file, in order, stopping at the first failure.
func generate(ctx context.Context, files []FileDescriptor, namespace string, sign putSigner) ([]UploadTarget, error) {
	out := make([]UploadTarget, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blob := BlobName(namespace, f.FileName)
		ct := ContentTypeFor(f)
		u, err := sign(ctx, blob, ct)
		if err != nil {
			return nil, fmt.Errorf("sign %s: %w", blob, err)
		}
		out = append(out, UploadTarget{FileName: f.FileName, UploadURL: u, BlobName: blob, ContentType: ct})
	}
	return out, nil
}

type unconfigured struct{}

// Unconfigured is the signer used when no provider is set up.
func Unconfigured() Signer { return unconfigured{} }

func (unconfigured) Provider() Mode     { return ModeNone }
func (unconfigured) IsConfigured() bool { return false }
func (unconfigured) GenerateUploadURLs(context.Context, []FileDescriptor, string) ([]UploadTarget, error) {
	return nil, ErrNotConfigured
}
func (unconfigured) GetDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNotConfigured
}
