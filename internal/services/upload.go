package services

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"time"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/processing"
	"github.com/yungbote/siteproof-backend/internal/observability"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/objectstore"
)

// CompletedFile is one uploaded blob the client reports as finished.
type CompletedFile struct {
	BlobName    string `json:"blobName"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// CompleteResult lists the document assets recorded for an upload batch. When
// processing was requested, Run or TriggerError reports how it went.
type CompleteResult struct {
	Documents    []*assets.Asset `json:"documents"`
	Run          *processing.Run `json:"run,omitempty"`
	TriggerError string          `json:"triggerError,omitempty"`
}

type UploadService interface {
	IssueUploadURLs(ctx context.Context, projectID string, files []objectstore.FileDescriptor) ([]objectstore.UploadTarget, error)
	// IssueAttachmentURLs scopes uploads to an asset, or to one row of it when rowID is set.
	IssueAttachmentURLs(ctx context.Context, projectID, assetID, rowID string, files []objectstore.FileDescriptor) ([]objectstore.UploadTarget, error)
	DownloadURL(ctx context.Context, projectID, blobName string) (string, error)
	CompleteUpload(ctx context.Context, projectID string, files []CompletedFile, trigger bool) (*CompleteResult, error)
	// CompleteAttachment records attachment blobs as documents that REFERENCE
	// the owning asset.
	CompleteAttachment(ctx context.Context, projectID, assetID, rowID string, files []CompletedFile, trigger bool) (*CompleteResult, error)
}

type UploadConfig struct {
	MaxFiles    int
	DownloadTTL time.Duration
}

type uploadService struct {
	log        *logger.Logger
	signer     objectstore.Signer
	assets     repos.AssetRepo
	writer     AssetWriter
	processing ProcessingService
	metrics    *observability.Metrics
	cfg        UploadConfig
}

func NewUploadService(log *logger.Logger, signer objectstore.Signer, assetRepo repos.AssetRepo, writer AssetWriter, proc ProcessingService, metrics *observability.Metrics, cfg UploadConfig) UploadService {
	if signer == nil {
		signer = objectstore.Unconfigured()
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = objectstore.DefaultMaxFiles
	}
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = objectstore.DefaultUploadTTL
	}
	return &uploadService{
		log:        log.With("service", "UploadService"),
		signer:     signer,
		assets:     assetRepo,
		writer:     writer,
		processing: proc,
		metrics:    metrics,
		cfg:        cfg,
	}
}

func (s *uploadService) IssueUploadURLs(ctx context.Context, projectID string, files []objectstore.FileDescriptor) ([]objectstore.UploadTarget, error) {
	if !objectstore.ValidSegment(projectID) {
		return nil, apierr.BadRequest("invalid_request", "invalid project id")
	}
	return s.issue(ctx, objectstore.ProjectNamespace(projectID), files)
}

func (s *uploadService) IssueAttachmentURLs(ctx context.Context, projectID, assetID, rowID string, files []objectstore.FileDescriptor) ([]objectstore.UploadTarget, error) {
	rowID = strings.TrimSpace(rowID)
	if !objectstore.ValidSegment(projectID) || !objectstore.ValidSegment(assetID) || (rowID != "" && !objectstore.ValidSegment(rowID)) {
		return nil, apierr.BadRequest("invalid_request", "invalid attachment scope")
	}
	row, err := s.assets.GetInProject(dbctx.New(ctx), projectID, assetID)
	if err != nil {
		return nil, apierr.Internal("asset_lookup_failed", err)
	}
	if row == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}
	ns := objectstore.AssetNamespace(projectID, assetID)
	if rowID != "" {
		ns = objectstore.RowNamespace(projectID, assetID, rowID)
	}
	return s.issue(ctx, ns, files)
}

func (s *uploadService) issue(ctx context.Context, namespace string, files []objectstore.FileDescriptor) ([]objectstore.UploadTarget, error) {
	if err := objectstore.ValidateFiles(files, s.cfg.MaxFiles); err != nil {
		return nil, apierr.BadRequest("invalid_request", "%s", strings.TrimPrefix(err.Error(), objectstore.ErrInvalidFiles.Error()+": "))
	}
	if !s.signer.IsConfigured() {
		s.log.Error("upload requested without storage", "namespace", namespace)
		return nil, apierr.Internal("storage_unconfigured", objectstore.ErrNotConfigured)
	}
	targets, err := s.signer.GenerateUploadURLs(ctx, files, namespace)
	if err != nil {
		s.log.Error("generate upload urls failed", "namespace", namespace, "files", len(files), "error", err)
		return nil, apierr.Internal("upload_url_failed", err)
	}
	s.metrics.AddUploadURLs(string(s.signer.Provider()), len(targets))
	return targets, nil
}

func (s *uploadService) DownloadURL(ctx context.Context, projectID, blobName string) (string, error) {
	blobName = strings.TrimSpace(blobName)
	if blobName == "" {
		return "", apierr.BadRequest("invalid_request", "blob is required")
	}
	if !objectstore.InNamespace(blobName, objectstore.ProjectNamespace(projectID)) {
		return "", apierr.Forbidden("blob is outside the project")
	}
	if !s.signer.IsConfigured() {
		return "", apierr.Internal("storage_unconfigured", objectstore.ErrNotConfigured)
	}
	u, err := s.signer.GetDownloadURL(ctx, blobName, s.cfg.DownloadTTL)
	if err != nil {
		s.log.Error("generate download url failed", "project_id", projectID, "error", err)
		return "", apierr.Internal("download_url_failed", err)
	}
	return u, nil
}

// CompleteUpload records one document asset per blob. Resubmitting the same
// blobs replays the earlier writes.
func (s *uploadService) CompleteUpload(ctx context.Context, projectID string, files []CompletedFile, trigger bool) (*CompleteResult, error) {
	return s.complete(ctx, projectID, objectstore.ProjectNamespace(projectID), files, trigger, func(f CompletedFile) (string, []assets.EdgeInput, error) {
		return "document:" + f.BlobName + ":" + projectID, nil, nil
	})
}

func (s *uploadService) CompleteAttachment(ctx context.Context, projectID, assetID, rowID string, files []CompletedFile, trigger bool) (*CompleteResult, error) {
	rowID = strings.TrimSpace(rowID)
	if !objectstore.ValidSegment(projectID) || !objectstore.ValidSegment(assetID) || (rowID != "" && !objectstore.ValidSegment(rowID)) {
		return nil, apierr.BadRequest("invalid_request", "invalid attachment scope")
	}
	owner, err := s.assets.GetInProject(dbctx.New(ctx), projectID, assetID)
	if err != nil {
		return nil, apierr.Internal("asset_lookup_failed", err)
	}
	if owner == nil {
		return nil, apierr.NotFound("asset %s not found", assetID)
	}
	ns := objectstore.AssetNamespace(projectID, assetID)
	ref := assets.ReferenceProperties{ReferenceType: assets.ReferenceAttachment}
	if rowID != "" {
		ns = objectstore.RowNamespace(projectID, assetID, rowID)
		ref = assets.ReferenceProperties{ReferenceType: assets.ReferenceRowAttachment, RowID: rowID}
	}
	props, err := json.Marshal(ref)
	if err != nil {
		return nil, apierr.Internal("encode_failed", err)
	}
	scope := rowID
	if scope == "" {
		scope = "root"
	}
	return s.complete(ctx, projectID, ns, files, trigger, func(f CompletedFile) (string, []assets.EdgeInput, error) {
		edges := []assets.EdgeInput{{ToAssetID: owner.ID, EdgeType: assets.EdgeReferences, Properties: props}}
		return "document_attachment:" + owner.ID + ":" + scope + ":" + path.Base(f.BlobName), edges, nil
	})
}

// complete writes one document per file, keyed and linked by plan, then
// optionally starts processing for the batch.
func (s *uploadService) complete(ctx context.Context, projectID, ns string, files []CompletedFile, trigger bool, plan func(CompletedFile) (string, []assets.EdgeInput, error)) (*CompleteResult, error) {
	if len(files) == 0 {
		return nil, apierr.BadRequest("invalid_request", "files must not be empty")
	}
	for i, f := range files {
		if strings.TrimSpace(f.BlobName) == "" || strings.TrimSpace(f.FileName) == "" {
			return nil, apierr.BadRequest("invalid_request", "files[%d]: blobName and fileName are required", i)
		}
		if !objectstore.InNamespace(f.BlobName, ns) {
			return nil, apierr.BadRequest("invalid_request", "files[%d]: blob is outside %s", i, ns)
		}
	}

	out := &CompleteResult{Documents: make([]*assets.Asset, 0, len(files))}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		content, err := assets.EncodeContent(assets.DocumentContent{
			FileName:    f.FileName,
			BlobName:    f.BlobName,
			ContentType: objectstore.ContentTypeFor(objectstore.FileDescriptor{FileName: f.FileName, ContentType: f.ContentType}),
			Size:        f.Size,
			Source:      "upload",
		})
		if err != nil {
			return nil, apierr.Internal("encode_failed", err)
		}
		key, edges, err := plan(f)
		if err != nil {
			return nil, err
		}
		res, err := s.writer.Apply(ctx, assets.WriteSpec{
			Asset: assets.AssetInput{
				Type:      assets.TypeDocument,
				ProjectID: projectID,
				Name:      f.FileName,
				Content:   content,
			},
			Edges:          edges,
			IdempotencyKey: key,
		})
		if err != nil {
			return nil, err
		}
		out.Documents = append(out.Documents, res.Asset)
		ids = append(ids, res.Asset.ID)
	}

	if !trigger || s.processing == nil {
		return out, nil
	}
	run, err := s.processing.Trigger(ctx, projectID, ids)
	if err != nil {
		msg := "processing could not be started"
		if ae, ok := apierr.As(err); ok && ae.Status < 500 && ae.Err != nil {
			msg = ae.Err.Error()
		}
		out.TriggerError = msg
		s.log.Warn("processing trigger after upload failed", "project_id", projectID, "error", err)
		return out, nil
	}
	out.Run = run
	return out, nil
}

// IsTriggerFailure reports whether r recorded documents but could not start processing.
func (r *CompleteResult) IsTriggerFailure() bool {
	return r != nil && r.TriggerError != ""
}
