package aggregates

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/audit"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
)

// WriteResult is what an idempotent write returns on first write and replay alike.
type WriteResult struct {
	Asset    *assets.Asset  `json:"asset"`
	Edges    []*assets.Edge `json:"edges"`
	Replayed bool           `json:"replayed"`
}

type TransitionInput struct {
	ProjectID string
	AssetID   string
	Status    string
	Audit     assets.AuditContext
}

type TransitionResult struct {
	Asset   *assets.Asset
	From    string
	Changed bool
}

type UpdateInput struct {
	ProjectID string
	AssetID   string
	Name      *string
	Content   json.RawMessage
	Audit     assets.AuditContext
}

type DeleteInput struct {
	ProjectID string
	AssetID   string
	Audit     assets.AuditContext
}

// LinkInput adds edges between existing assets under one idempotency key.
type LinkInput struct {
	ProjectID      string
	IdempotencyKey string
	Edges          []assets.EdgeInput
	Audit          assets.AuditContext
}

// AssetAggregate owns every write to the assets and asset_edges tables.
type AssetAggregate interface {
	Apply(ctx context.Context, spec assets.WriteSpec) (*WriteResult, error)
	Link(ctx context.Context, in LinkInput) ([]*assets.Edge, error)
	Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error)
	Update(ctx context.Context, in UpdateInput) (*assets.Asset, error)
	Delete(ctx context.Context, in DeleteInput) (*assets.Asset, error)
}

type AssetAggregateDeps struct {
	Base      BaseDeps
	Assets    repos.AssetRepo
	Edges     repos.EdgeRepo
	Audit     repos.AuditEventRepo
	Validator *assets.ContentValidator
}

type assetAggregate struct {
	deps AssetAggregateDeps
}

func NewAssetAggregate(deps AssetAggregateDeps) AssetAggregate {
	deps.Base = deps.Base.withDefaults()
	return &assetAggregate{deps: deps}
}

func (a *assetAggregate) Apply(ctx context.Context, spec assets.WriteSpec) (*WriteResult, error) {
	const op = "Assets.Apply"
	spec.Normalize()
	if err := spec.Validate(a.deps.Validator); err != nil {
		return nil, MapError(op, err)
	}
	var out *WriteResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		res, err := a.apply(dbc, spec)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.deps.Base.Hooks.ObserveAssetWrite(string(out.Asset.Type), out.Replayed)
	return out, nil
}

func (a *assetAggregate) apply(dbc dbctx.Context, spec assets.WriteSpec) (*WriteResult, error) {
	now := time.Now().UTC()
	row, err := a.deps.Assets.GetByIdempotencyKey(dbc, spec.Asset.ProjectID, spec.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	replayed := row != nil
	if row == nil {
		row = newAssetRow(spec, now)
		inserted, err := a.deps.Assets.InsertIfAbsent(dbc, row)
		if err != nil {
			return nil, err
		}
		if !inserted {
			// A concurrent writer committed the same key first.
			row, err = a.deps.Assets.GetByIdempotencyKey(dbc, spec.Asset.ProjectID, spec.IdempotencyKey)
			if err != nil {
				return nil, err
			}
			if row == nil {
				return nil, TransientError("idempotency key vanished after conflicting insert")
			}
			replayed = true
		}
	}
	if replayed && row.Type != spec.Asset.Type {
		return nil, apierr.Conflict("idempotency_key_reused", "idempotency key %q already identifies a %s", spec.IdempotencyKey, row.Type)
	}

	edges, _, err := a.writeEdges(dbc, spec, row.ID, now)
	if err != nil {
		return nil, err
	}

	if !replayed {
		action := audit.ActionAssetCreated
		if spec.Audit != nil && spec.Audit.Action != "" {
			action = spec.Audit.Action
		}
		details := map[string]any{"type": row.Type, "edges": len(edges)}
		if err := a.appendAudit(dbc, row, action, spec.IdempotencyKey, auditContext(spec.Audit), details, now); err != nil {
			return nil, err
		}
	}
	return &WriteResult{Asset: row, Edges: edges, Replayed: replayed}, nil
}

// writeEdges inserts the missing edges of spec and returns the stored rows
// for every edge the write names, plus how many were new.
func (a *assetAggregate) writeEdges(dbc dbctx.Context, spec assets.WriteSpec, assetID string, now time.Time) ([]*assets.Edge, int64, error) {
	out := []*assets.Edge{}
	if len(spec.Edges) == 0 {
		return out, 0, nil
	}

	rows := make([]*assets.Edge, 0, len(spec.Edges))
	froms := make([]string, 0, len(spec.Edges))
	others := make([]string, 0, len(spec.Edges))
	for _, in := range spec.Edges {
		from, to := in.Resolve(assetID)
		if from == to {
			return nil, 0, apierr.BadRequest("invalid_request", "edge %s from %s points at itself", in.EdgeType, from)
		}
		froms = append(froms, from)
		for _, id := range []string{from, to} {
			if id != assetID {
				others = append(others, id)
			}
		}
		rows = append(rows, &assets.Edge{
			ID:             uuid.NewString(),
			ProjectID:      spec.Asset.ProjectID,
			FromAssetID:    from,
			ToAssetID:      to,
			EdgeType:       in.EdgeType,
			Properties:     jsonOrEmpty(in.Properties),
			IdempotencyKey: spec.IdempotencyKey,
			CreatedAt:      now,
		})
	}

	endpoints, err := a.deps.Assets.GetByIDs(dbc, others)
	if err != nil {
		return nil, 0, err
	}
	found := make(map[string]struct{}, len(endpoints))
	for _, f := range endpoints {
		if f.ProjectID != spec.Asset.ProjectID {
			return nil, 0, apierr.BadRequest("invalid_request", "edge endpoint %s belongs to another project", f.ID)
		}
		found[f.ID] = struct{}{}
	}
	for _, id := range others {
		if _, ok := found[id]; !ok {
			return nil, 0, apierr.BadRequest("invalid_request", "edge endpoint %s does not exist", id)
		}
	}

	inserted, err := a.deps.Edges.InsertIfAbsent(dbc, rows)
	if err != nil {
		return nil, 0, err
	}

	stored, err := a.deps.Edges.ListTouching(dbc, froms)
	if err != nil {
		return nil, 0, err
	}
	byTriple := make(map[string]*assets.Edge, len(stored))
	for _, e := range stored {
		byTriple[tripleKey(e.FromAssetID, e.ToAssetID, e.EdgeType)] = e
	}
	for _, r := range rows {
		if e, ok := byTriple[tripleKey(r.FromAssetID, r.ToAssetID, r.EdgeType)]; ok {
			out = append(out, e)
		}
	}
	return out, inserted, nil
}

func (a *assetAggregate) Link(ctx context.Context, in LinkInput) ([]*assets.Edge, error) {
	const op = "Assets.Link"
	spec := assets.WriteSpec{
		Asset:          assets.AssetInput{ProjectID: in.ProjectID},
		Edges:          in.Edges,
		IdempotencyKey: in.IdempotencyKey,
	}
	spec.Normalize()
	if spec.IdempotencyKey == "" || spec.Asset.ProjectID == "" || len(spec.Edges) == 0 {
		return nil, apierr.BadRequest("invalid_request", "project, idempotency key and at least one edge are required")
	}
	for i, e := range spec.Edges {
		if e.FromAssetID == "" || e.ToAssetID == "" {
			return nil, apierr.BadRequest("invalid_request", "edges[%d]: both endpoints are required", i)
		}
		if !e.EdgeType.Valid() {
			return nil, apierr.BadRequest("invalid_request", "edges[%d]: unknown edge type %q", i, e.EdgeType)
		}
		if a.deps.Validator != nil {
			if err := a.deps.Validator.ValidateProperties(e.EdgeType, e.Properties); err != nil {
				return nil, apierr.BadRequest("invalid_request", "edges[%d]: %v", i, err)
			}
		}
	}
	var out []*assets.Edge
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		now := time.Now().UTC()
		edges, inserted, err := a.writeEdges(dbc, spec, "", now)
		if err != nil {
			return err
		}
		if inserted > 0 {
			anchor := &assets.Asset{ID: spec.Edges[0].FromAssetID, ProjectID: spec.Asset.ProjectID}
			details := map[string]any{"edges": inserted, "edge_type": spec.Edges[0].EdgeType}
			if err := a.appendAudit(dbc, anchor, audit.ActionAssetsLinked, spec.IdempotencyKey, in.Audit, details, now); err != nil {
				return err
			}
		}
		out = edges
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *assetAggregate) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	const op = "Assets.Transition"
	to := assets.NormalizeStatus(in.Status)
	if to == "" {
		return nil, apierr.BadRequest("invalid_status", "status is required")
	}
	var out *TransitionResult
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Assets.GetInProject(dbc, in.ProjectID, in.AssetID)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("asset %s not found", in.AssetID)
		}
		from := row.Status
		if err := assets.CheckTransition(row.Type, from, to); err != nil {
			return err
		}
		if assets.NormalizeStatus(from) == to {
			out = &TransitionResult{Asset: row, From: from}
			return nil
		}
		now := time.Now().UTC()
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, "assets", row.ID, row.Version, map[string]any{
			"status":     to,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "asset was modified concurrently"); err != nil {
			return err
		}
		row.Status = to
		row.Version++
		row.UpdatedAt = now
		details := map[string]any{"from": from, "to": to}
		if err := a.appendAudit(dbc, row, audit.ActionStatusChanged, "", in.Audit, details, now); err != nil {
			return err
		}
		out = &TransitionResult{Asset: row, From: from, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *assetAggregate) Update(ctx context.Context, in UpdateInput) (*assets.Asset, error) {
	const op = "Assets.Update"
	var out *assets.Asset
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Assets.GetInProject(dbc, in.ProjectID, in.AssetID)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("asset %s not found", in.AssetID)
		}
		updates := map[string]any{}
		if in.Name != nil {
			updates["name"] = *in.Name
			row.Name = *in.Name
		}
		if len(bytes.TrimSpace(in.Content)) > 0 {
			if a.deps.Validator != nil {
				if err := a.deps.Validator.ValidateContent(row.Type, in.Content); err != nil {
					return apierr.BadRequest("invalid_request", "%v", err)
				}
			}
			row.Content = datatypes.JSON(in.Content)
			updates["content"] = row.Content
		}
		if len(updates) == 0 {
			out = row
			return nil
		}
		now := time.Now().UTC()
		updates["updated_at"] = now
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, "assets", row.ID, row.Version, updates)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "asset was modified concurrently"); err != nil {
			return err
		}
		row.Version++
		row.UpdatedAt = now
		fields := make([]string, 0, len(updates))
		for k := range updates {
			if k != "updated_at" {
				fields = append(fields, k)
			}
		}
		if err := a.appendAudit(dbc, row, audit.ActionAssetUpdated, "", in.Audit, map[string]any{"fields": fields}, now); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *assetAggregate) Delete(ctx context.Context, in DeleteInput) (*assets.Asset, error) {
	const op = "Assets.Delete"
	var out *assets.Asset
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		row, err := a.deps.Assets.GetInProject(dbc, in.ProjectID, in.AssetID)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("asset %s not found", in.AssetID)
		}
		if err := a.deps.Assets.SoftDelete(dbc, row.ID); err != nil {
			return err
		}
		now := time.Now().UTC()
		row.IsDeleted = true
		row.UpdatedAt = now
		if err := a.appendAudit(dbc, row, audit.ActionAssetDeleted, "", in.Audit, nil, now); err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *assetAggregate) appendAudit(dbc dbctx.Context, row *assets.Asset, action, key string, ac assets.AuditContext, details map[string]any, now time.Time) error {
	if a.deps.Audit == nil {
		return nil
	}
	var raw datatypes.JSON
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		raw = datatypes.JSON(b)
	}
	return a.deps.Audit.Create(dbc, &audit.Event{
		ID:             uuid.NewString(),
		ProjectID:      row.ProjectID,
		ActorUserID:    ac.ActorUserID,
		Action:         action,
		AssetID:        row.ID,
		IdempotencyKey: key,
		Source:         ac.Source,
		RequestID:      ac.RequestID,
		Details:        raw,
		CreatedAt:      now,
	})
}

func newAssetRow(spec assets.WriteSpec, now time.Time) *assets.Asset {
	in := spec.Asset
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := in.Status
	if status == "" {
		status = assets.MachineFor(in.Type).Initial
	}
	version := in.Version
	if version < 1 {
		version = 1
	}
	row := &assets.Asset{
		ID:             id,
		ProjectID:      in.ProjectID,
		Type:           in.Type,
		Name:           in.Name,
		DocumentNumber: in.DocumentNumber,
		RevisionCode:   in.RevisionCode,
		Version:        version,
		Status:         status,
		ApprovalState:  in.ApprovalState,
		Content:        jsonOrEmpty(in.Content),
		IdempotencyKey: spec.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if spec.Audit != nil {
		row.CreatedByUser = spec.Audit.ActorUserID
	}
	return row
}

func auditContext(ac *assets.AuditContext) assets.AuditContext {
	if ac == nil {
		return assets.AuditContext{}
	}
	return *ac
}

func jsonOrEmpty(raw json.RawMessage) datatypes.JSON {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}

func tripleKey(from, to string, t assets.EdgeType) string {
	return from + "|" + to + "|" + string(t)
}
