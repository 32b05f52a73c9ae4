package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/processing"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/objectstore"
)

type fakeSigner struct {
	err        error
	namespaces []string
	expiry     time.Duration
}

func (s *fakeSigner) Provider() objectstore.Mode { return objectstore.ModeS3 }
func (s *fakeSigner) IsConfigured() bool         { return true }

func (s *fakeSigner) GenerateUploadURLs(_ context.Context, files []objectstore.FileDescriptor, namespace string) ([]objectstore.UploadTarget, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.namespaces = append(s.namespaces, namespace)
	out := make([]objectstore.UploadTarget, 0, len(files))
	for _, f := range files {
		blob := objectstore.BlobName(namespace, f.FileName)
		out = append(out, objectstore.UploadTarget{
			FileName:    f.FileName,
			BlobName:    blob,
			UploadURL:   "https://bucket.example/" + blob + "?X-Amz-Signature=x",
			ContentType: objectstore.ContentTypeFor(f),
		})
	}
	return out, nil
}

func (s *fakeSigner) GetDownloadURL(_ context.Context, blob string, expiry time.Duration) (string, error) {
	s.expiry = expiry
	return "https://bucket.example/" + blob, nil
}

type stubProcessing struct {
	ProcessingService
	err   error
	calls [][]string
}

func (p *stubProcessing) Trigger(_ context.Context, projectID string, ids []string) (*processing.Run, error) {
	p.calls = append(p.calls, ids)
	if p.err != nil {
		return nil, p.err
	}
	return &processing.Run{ID: "run-row", ProjectID: projectID, Status: processing.RunStatusRunning}, nil
}

func newUploadFixture(t *testing.T, signer objectstore.Signer, proc ProcessingService) (*testEnv, UploadService) {
	t.Helper()
	env := newTestEnv(t)
	svc := NewUploadService(testutil.Logger(t), signer, env.repos.Assets, env.writer, proc, nil, UploadConfig{MaxFiles: 2})
	return env, svc
}

func TestIssueUploadURLs(t *testing.T) {
	ctx := userCtx("u1")
	signer := &fakeSigner{}
	_, svc := newUploadFixture(t, signer, nil)

	targets, err := svc.IssueUploadURLs(ctx, "p1", []objectstore.FileDescriptor{{FileName: "spec sheet.pdf"}})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.True(t, objectstore.InNamespace(targets[0].BlobName, "projects/p1"))
	assert.Equal(t, []string{"projects/p1"}, signer.namespaces)

	cases := []struct {
		name  string
		files []objectstore.FileDescriptor
	}{
		{"empty", nil},
		{"too many", []objectstore.FileDescriptor{{FileName: "a"}, {FileName: "b"}, {FileName: "c"}}},
		{"blank name", []objectstore.FileDescriptor{{FileName: " "}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.IssueUploadURLs(ctx, "p1", tc.files)
			assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
		})
	}
	_, err = svc.IssueUploadURLs(ctx, "../p2", []objectstore.FileDescriptor{{FileName: "a.pdf"}})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestIssueUploadURLsStorageFailures(t *testing.T) {
	ctx := userCtx("u1")
	files := []objectstore.FileDescriptor{{FileName: "a.pdf"}}

	_, svc := newUploadFixture(t, nil, nil)
	_, err := svc.IssueUploadURLs(ctx, "p1", files)
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))

	_, svc = newUploadFixture(t, &fakeSigner{err: errors.New("credential expired")}, nil)
	_, err = svc.IssueUploadURLs(ctx, "p1", files)
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
}

func TestIssueAttachmentURLs(t *testing.T) {
	ctx := userCtx("u1")
	signer := &fakeSigner{}
	env, svc := newUploadFixture(t, signer, nil)
	lot := testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeLot, nil)
	files := []objectstore.FileDescriptor{{FileName: "photo.jpg"}}

	_, err := svc.IssueAttachmentURLs(ctx, "p1", lot.ID, "row-3", files)
	require.NoError(t, err)
	assert.Equal(t, objectstore.RowNamespace("p1", lot.ID, "row-3"), signer.namespaces[0])

	_, err = svc.IssueAttachmentURLs(ctx, "p2", lot.ID, "", files)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err), "asset of another project")
}

func TestDownloadURL(t *testing.T) {
	ctx := userCtx("u1")
	signer := &fakeSigner{}
	_, svc := newUploadFixture(t, signer, nil)

	u, err := svc.DownloadURL(ctx, "p1", "projects/p1/abc-report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/projects/p1/abc-report.pdf", u)
	assert.Equal(t, objectstore.DefaultUploadTTL, signer.expiry)

	_, err = svc.DownloadURL(ctx, "p1", "projects/p2/abc-report.pdf")
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))
	_, err = svc.DownloadURL(ctx, "p1", "projects/p1/../p2/x")
	assert.Equal(t, http.StatusForbidden, apierr.StatusOf(err))
	_, err = svc.DownloadURL(ctx, "p1", "")
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestCompleteUploadIsIdempotent(t *testing.T) {
	ctx := userCtx("u1")
	proc := &stubProcessing{}
	env, svc := newUploadFixture(t, &fakeSigner{}, proc)
	files := []CompletedFile{{BlobName: "projects/p1/1-a.pdf", FileName: "a.pdf", Size: 10}}

	first, err := svc.CompleteUpload(ctx, "p1", files, false)
	require.NoError(t, err)
	require.Len(t, first.Documents, 1)
	assert.Equal(t, assets.TypeDocument, first.Documents[0].Type)
	assert.Empty(t, proc.calls)

	second, err := svc.CompleteUpload(ctx, "p1", files, true)
	require.NoError(t, err)
	assert.Equal(t, first.Documents[0].ID, second.Documents[0].ID)
	require.NotNil(t, second.Run)
	assert.Equal(t, [][]string{{first.Documents[0].ID}}, proc.calls)

	var n int64
	require.NoError(t, env.db.Model(&assets.Asset{}).Where("type = ?", assets.TypeDocument).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	content, err := assets.DecodeContent[assets.DocumentContent](first.Documents[0])
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", content.ContentType)
}

func TestCompleteUploadTriggerFailure(t *testing.T) {
	ctx := userCtx("u1")
	proc := &stubProcessing{err: apierr.Internal("ai_unconfigured", errAIUnconfigured)}
	_, svc := newUploadFixture(t, &fakeSigner{}, proc)

	res, err := svc.CompleteUpload(ctx, "p1", []CompletedFile{{BlobName: "projects/p1/1-a.pdf", FileName: "a.pdf"}}, true)
	require.NoError(t, err)
	assert.True(t, res.IsTriggerFailure())
	assert.Len(t, res.Documents, 1)
	assert.Nil(t, res.Run)
}

func TestCompleteUploadValidation(t *testing.T) {
	ctx := userCtx("u1")
	_, svc := newUploadFixture(t, &fakeSigner{}, nil)

	for _, files := range [][]CompletedFile{
		nil,
		{{BlobName: "projects/p1/a", FileName: ""}},
		{{BlobName: "projects/p2/a", FileName: "a"}},
	} {
		_, err := svc.CompleteUpload(ctx, "p1", files, false)
		assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	}
}

func TestCompleteAttachmentReferencesOwner(t *testing.T) {
	ctx := userCtx("u1")
	proc := &stubProcessing{}
	env, svc := newUploadFixture(t, &fakeSigner{}, proc)
	itp := testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeITPTemplate, func(a *assets.Asset) {
		a.Content = []byte(`{"title":"Concrete pour"}`)
	})
	rowBlob := objectstore.BlobName(objectstore.RowNamespace("p1", itp.ID, "row-2"), "slump.jpg")
	files := []CompletedFile{{BlobName: rowBlob, FileName: "slump.jpg"}}

	first, err := svc.CompleteAttachment(ctx, "p1", itp.ID, "row-2", files, true)
	require.NoError(t, err)
	require.Len(t, first.Documents, 1)
	doc := first.Documents[0]
	assert.Equal(t, assets.TypeDocument, doc.Type)
	assert.Equal(t, [][]string{{doc.ID}}, proc.calls)

	again, err := svc.CompleteAttachment(ctx, "p1", itp.ID, "row-2", files, false)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, again.Documents[0].ID)

	var edges []assets.Edge
	require.NoError(t, env.db.Where("edge_type = ?", assets.EdgeReferences).Find(&edges).Error)
	require.Len(t, edges, 1)
	assert.Equal(t, doc.ID, edges[0].FromAssetID)
	assert.Equal(t, itp.ID, edges[0].ToAssetID)
	assert.Equal(t, assets.ReferenceRowAttachment, assets.ContentString(edges[0].Properties, "reference_type"))
	assert.Equal(t, "row-2", assets.ContentString(edges[0].Properties, "row_id"))

	rootBlob := objectstore.BlobName(objectstore.AssetNamespace("p1", itp.ID), "spec.pdf")
	root, err := svc.CompleteAttachment(ctx, "p1", itp.ID, "", []CompletedFile{{BlobName: rootBlob, FileName: "spec.pdf"}}, false)
	require.NoError(t, err)
	assert.NotEqual(t, doc.ID, root.Documents[0].ID)

	_, err = svc.CompleteAttachment(ctx, "p1", itp.ID, "row-2", []CompletedFile{{BlobName: rootBlob, FileName: "spec.pdf"}}, false)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err), "blob outside the row namespace")
	_, err = svc.CompleteAttachment(ctx, "p2", itp.ID, "", files, false)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err), "asset of another project")
}
