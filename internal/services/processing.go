package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/processing"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/ctxutil"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/langgraph"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

var errAIUnconfigured = errors.New("ai service is not configured")

// ProcessingStatus is the latest orchestration run of a project.
type ProcessingStatus struct {
	Status  string          `json:"status"`
	Run     *processing.Run `json:"run,omitempty"`
	Outputs int64           `json:"outputs"`
}

type ProcessingService interface {
	Trigger(ctx context.Context, projectID string, documentIDs []string) (*processing.Run, error)
	Status(ctx context.Context, projectID string) (*ProcessingStatus, error)
	// StreamRun opens the upstream event stream of a run; the caller closes it.
	StreamRun(ctx context.Context, projectID, runID string) (io.ReadCloser, error)
	ChatStream(ctx context.Context, body []byte) (io.ReadCloser, error)
}

type processingService struct {
	log    *logger.Logger
	ai     langgraph.Client
	runs   repos.ProcessingRunRepo
	assets repos.AssetRepo
}

func NewProcessingService(log *logger.Logger, ai langgraph.Client, runs repos.ProcessingRunRepo, assetRepo repos.AssetRepo) ProcessingService {
	return &processingService{
		log:    log.With("service", "ProcessingService"),
		ai:     ai,
		runs:   runs,
		assets: assetRepo,
	}
}

func (s *processingService) Trigger(ctx context.Context, projectID string, documentIDs []string) (*processing.Run, error) {
	ids := make([]string, 0, len(documentIDs))
	for _, id := range documentIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, apierr.BadRequest("invalid_request", "documentIds must not be empty")
	}
	if s.ai == nil || !s.ai.Enabled() {
		return nil, apierr.Internal("ai_unconfigured", errAIUnconfigured)
	}
	docs, _ := json.Marshal(ids)
	row := &processing.Run{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Status:      processing.RunStatusPending,
		DocumentIDs: datatypes.JSON(docs),
		TriggeredBy: ctxutil.UserID(ctx),
		StartedAt:   time.Now().UTC(),
	}

	thread, err := s.ai.CreateThread(ctx, map[string]string{"project_id": projectID})
	if err != nil {
		s.log.Error("create thread failed", "project_id", projectID, "error", err)
		return nil, apierr.Internal("processing_failed", err)
	}
	row.ThreadID = thread.ThreadID

	run, err := s.ai.CreateRun(ctx, thread.ThreadID, langgraph.RunInput{ProjectID: projectID, DocumentIDs: ids})
	if err != nil {
		now := time.Now().UTC()
		row.Status = processing.RunStatusFailed
		row.Error = truncateError(err)
		row.CompletedAt = &now
		if cerr := s.runs.Create(dbctx.New(ctx), row); cerr != nil {
			s.log.Warn("record failed run", "project_id", projectID, "error", cerr)
		}
		s.log.Error("create run failed", "project_id", projectID, "thread_id", thread.ThreadID, "error", err)
		return nil, apierr.Internal("processing_failed", err)
	}
	row.RunUID = run.RunID
	if st := strings.TrimSpace(run.Status); st != "" {
		row.Status = st
	}
	if err := s.runs.Create(dbctx.New(ctx), row); err != nil {
		s.log.Error("persist run failed", "project_id", projectID, "run_uid", run.RunID, "error", err)
		return nil, apierr.Internal("processing_failed", err)
	}
	s.log.Info("processing triggered", "project_id", projectID, "run_uid", row.RunUID, "documents", len(ids))
	return row, nil
}

func (s *processingService) Status(ctx context.Context, projectID string) (*ProcessingStatus, error) {
	dbc := dbctx.New(ctx)
	run, err := s.runs.Latest(dbc, projectID)
	if err != nil {
		return nil, apierr.Internal("processing_status_failed", err)
	}
	if run == nil {
		return &ProcessingStatus{Status: processing.RunStatusIdle}, nil
	}
	n, err := s.assets.CountOutputsOf(dbc, run.ID)
	if err != nil {
		return nil, apierr.Internal("processing_status_failed", err)
	}
	return &ProcessingStatus{Status: run.Status, Run: run, Outputs: n}, nil
}

func (s *processingService) StreamRun(ctx context.Context, projectID, runID string) (io.ReadCloser, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, apierr.BadRequest("invalid_request", "runId is required")
	}
	if s.ai == nil || !s.ai.Enabled() {
		return nil, apierr.Internal("ai_unconfigured", errAIUnconfigured)
	}
	run, err := s.runs.GetByRunUID(dbctx.New(ctx), projectID, runID)
	if err != nil {
		return nil, apierr.Internal("processing_status_failed", err)
	}
	if run == nil {
		return nil, apierr.NotFound("run %s not found", runID)
	}
	body, err := s.ai.StreamRun(ctx, run.ThreadID, run.RunUID)
	if err != nil {
		s.log.Error("open run stream failed", "project_id", projectID, "run_uid", runID, "error", err)
		return nil, apierr.Internal("upstream_failed", err)
	}
	return body, nil
}

func (s *processingService) ChatStream(ctx context.Context, body []byte) (io.ReadCloser, error) {
	if s.ai == nil || !s.ai.ChatEnabled() {
		return nil, apierr.Internal("ai_unconfigured", errAIUnconfigured)
	}
	rc, err := s.ai.ChatStream(ctx, body)
	if err != nil {
		s.log.Error("open chat stream failed", "error", err)
		return nil, apierr.Internal("upstream_failed", err)
	}
	return rc, nil
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > 500 {
		return msg[:500]
	}
	return msg
}
