package objectstore

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

var threeFiles = []FileDescriptor{
	{FileName: "a.pdf"},
	{FileName: "b.jpg", ContentType: "image/jpeg"},
	{FileName: "c"},
}

func assertTargets(t *testing.T, targets []UploadTarget, namespace string) {
	t.Helper()
	require.Len(t, targets, len(threeFiles))
	seen := map[string]bool{}
	for i, tgt := range targets {
		assert.Equal(t, threeFiles[i].FileName, tgt.FileName, "order is preserved")
		assert.True(t, InNamespace(tgt.BlobName, namespace), tgt.BlobName)
		assert.False(t, seen[tgt.BlobName], "blob names are unique")
		seen[tgt.BlobName] = true
		assert.NotEmpty(t, tgt.UploadURL)
	}
	assert.Equal(t, "application/pdf", targets[0].ContentType)
	assert.Equal(t, "image/jpeg", targets[1].ContentType)
	assert.Equal(t, DefaultContentType, targets[2].ContentType)
}

func TestAzureSignerIssuesCreateOnlySAS(t *testing.T) {
	s, err := NewAzureSigner(AzureConfig{AccountName: "acct", AccountKey: "c2VjcmV0LWtleQ==", Container: "uploads"}, 15*time.Minute, logger.Nop())
	require.NoError(t, err)
	require.True(t, s.IsConfigured())

	ns := ProjectNamespace("p1")
	targets, err := s.GenerateUploadURLs(context.Background(), threeFiles, ns)
	require.NoError(t, err)
	assertTargets(t, targets, ns)

	u, err := url.Parse(targets[0].UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "acct.blob.core.windows.net", u.Host)
	assert.Equal(t, "/uploads/"+targets[0].BlobName, u.Path)
	assert.Equal(t, "c", u.Query().Get("sp"), "create permission only")
	assert.NotEmpty(t, u.Query().Get("sig"))
	assert.Equal(t, "https", u.Query().Get("spr"), "https only")

	dl, err := s.GetDownloadURL(context.Background(), targets[0].BlobName, time.Minute)
	require.NoError(t, err)
	du, err := url.Parse(dl)
	require.NoError(t, err)
	assert.Equal(t, "r", du.Query().Get("sp"))
	assert.Equal(t, "https", du.Query().Get("spr"))
}

func TestS3SignerPresignsConditionalPut(t *testing.T) {
	static := config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""))
	s, err := NewS3Signer(context.Background(), S3Config{Bucket: "uploads", Region: "us-east-1"}, 10*time.Minute, logger.Nop(), static)
	require.NoError(t, err)

	ns := AssetNamespace("p1", "a1")
	targets, err := s.GenerateUploadURLs(context.Background(), threeFiles, ns)
	require.NoError(t, err)
	assertTargets(t, targets, ns)

	u, err := url.Parse(targets[0].UploadURL)
	require.NoError(t, err)
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "if-none-match")
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
}

func TestGCSSignerPresignsGenerationMatchPut(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	cfg := GCSConfig{Bucket: "uploads", GoogleAccessID: "signer@proj.iam.gserviceaccount.com", PrivateKey: pemKey}
	s, err := NewGCSSigner(context.Background(), cfg, 15*time.Minute, logger.Nop(), option.WithoutAuthentication())
	require.NoError(t, err)

	ns := ProjectNamespace("p1")
	targets, err := s.GenerateUploadURLs(context.Background(), threeFiles, ns)
	require.NoError(t, err)
	assertTargets(t, targets, ns)

	u, err := url.Parse(targets[0].UploadURL)
	require.NoError(t, err)
	assert.True(t, strings.Contains(u.Query().Get("X-Goog-SignedHeaders"), "x-goog-if-generation-match"))
	assert.Equal(t, "900", u.Query().Get("X-Goog-Expires"))
}

func TestUnconfiguredSigner(t *testing.T) {
	s := Unconfigured()
	assert.False(t, s.IsConfigured())
	_, err := s.GenerateUploadURLs(context.Background(), threeFiles, "projects/p1")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Mode: ModeAzure}, logger.Nop())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ConfigErrorMissingSetting, cfgErr.Code)
}
