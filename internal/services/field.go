package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// FieldKind is a field-module collection as named in the URL.
type FieldKind string

const (
	FieldTimesheets       FieldKind = "timesheets"
	FieldDailyDiaries     FieldKind = "daily-diaries"
	FieldSiteInstructions FieldKind = "site-instructions"
	FieldPlant            FieldKind = "plant"
	FieldRoster           FieldKind = "roster"
)

var fieldTypes = map[FieldKind]assets.Type{
	FieldTimesheets:       assets.TypeTimesheet,
	FieldDailyDiaries:     assets.TypeDailyDiary,
	FieldSiteInstructions: assets.TypeSiteInstruction,
	FieldPlant:            assets.TypePlant,
	FieldRoster:           assets.TypeRosterEntry,
}

func FieldKinds() []FieldKind {
	return []FieldKind{FieldTimesheets, FieldDailyDiaries, FieldSiteInstructions, FieldPlant, FieldRoster}
}

func (k FieldKind) AssetType() assets.Type { return fieldTypes[k] }

// Singular is the response key for one created record, e.g. "timesheet".
func (k FieldKind) Singular() string { return string(fieldTypes[k]) }

// FieldEntry is a decoded create body: everything but the routing fields is content.
type FieldEntry struct {
	ProjectID      string
	IdempotencyKey string
	Content        json.RawMessage
}

// ParseFieldEntry splits a create body into routing fields and content.
func ParseFieldEntry(body []byte) (*FieldEntry, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, apierr.BadRequest("invalid_request", "body must be a JSON object")
	}
	out := &FieldEntry{}
	for key, dst := range map[string]*string{"project_id": &out.ProjectID, "idempotency_key": &out.IdempotencyKey} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, apierr.BadRequest("invalid_request", "%s must be a string", key)
		}
		delete(fields, key)
	}
	out.ProjectID = strings.TrimSpace(out.ProjectID)
	out.IdempotencyKey = strings.TrimSpace(out.IdempotencyKey)
	if out.ProjectID == "" {
		return nil, apierr.BadRequest("invalid_request", "project_id is required")
	}
	content, err := json.Marshal(fields)
	if err != nil {
		return nil, apierr.BadRequest("invalid_request", "invalid content")
	}
	out.Content = content
	return out, nil
}

type FieldQuery struct {
	ProjectID string
	UserID    string
	Status    string
	Limit     int
	Offset    int
}

type FieldService interface {
	// Create writes one record. The key comes from the body, then headerKey,
	// then a fresh uuid.
	Create(ctx context.Context, userID string, kind FieldKind, entry *FieldEntry, headerKey string) (*WriteOutcome, error)
	List(ctx context.Context, userID string, kind FieldKind, q FieldQuery) ([]*assets.Asset, error)
}

type fieldService struct {
	log      *logger.Logger
	access   AccessService
	register RegisterService
	writer   AssetWriter
}

func NewFieldService(log *logger.Logger, access AccessService, register RegisterService, writer AssetWriter) FieldService {
	return &fieldService{
		log:      log.With("service", "FieldService"),
		access:   access,
		register: register,
		writer:   writer,
	}
}

func (s *fieldService) Create(ctx context.Context, userID string, kind FieldKind, entry *FieldEntry, headerKey string) (*WriteOutcome, error) {
	typ, ok := fieldTypes[kind]
	if !ok {
		return nil, apierr.NotFound("unknown field collection %q", kind)
	}
	if entry == nil {
		return nil, apierr.BadRequest("invalid_request", "body is required")
	}
	if _, err := s.access.Authorize(ctx, userID, entry.ProjectID, policy.ActionWrite); err != nil {
		return nil, err
	}
	key := entry.IdempotencyKey
	if key == "" {
		key = strings.TrimSpace(headerKey)
	}
	if key == "" {
		key = uuid.NewString()
	}
	res, err := s.writer.Apply(ctx, assets.WriteSpec{
		Asset: assets.AssetInput{
			Type:      typ,
			ProjectID: entry.ProjectID,
			Name:      assets.ContentString(entry.Content, "name"),
			Content:   entry.Content,
		},
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}
	return outcomeOf(res), nil
}

func (s *fieldService) List(ctx context.Context, userID string, kind FieldKind, q FieldQuery) ([]*assets.Asset, error) {
	typ, ok := fieldTypes[kind]
	if !ok {
		return nil, apierr.NotFound("unknown field collection %q", kind)
	}
	projectID := strings.TrimSpace(q.ProjectID)
	if projectID == "" {
		return nil, apierr.BadRequest("invalid_request", "project_id is required")
	}
	if _, err := s.access.Authorize(ctx, userID, projectID, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.register.List(ctx, RegisterQuery{
		ProjectID: projectID,
		Type:      typ,
		UserID:    q.UserID,
		Status:    q.Status,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
}
