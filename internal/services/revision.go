package services

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
)

// Revision is one entry of an asset's version history.
type Revision struct {
	ID            string    `json:"id"`
	Version       int       `json:"version"`
	RevisionCode  string    `json:"revision_code,omitempty"`
	Status        string    `json:"status,omitempty"`
	CommitMessage string    `json:"commit_message,omitempty"`
	IsCurrent     bool      `json:"is_current"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateRevisionInput struct {
	CommitMessage  string          `json:"commitMessage"`
	RevisionCode   string          `json:"revisionCode"`
	Name           *string         `json:"name"`
	Content        json.RawMessage `json:"content"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

// Revisions lists every live version in the asset's lineage, newest first.
// The lineage root is the first version; later versions point at it with
// VERSION_OF and at their predecessor with SUPERSEDES.
func (s *assetService) Revisions(ctx context.Context, userID, assetID string) ([]*Revision, error) {
	row, _, err := s.locate(ctx, userID, assetID, policy.ActionRead)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	rootID, err := s.lineageRoot(dbc, row)
	if err != nil {
		return nil, err
	}
	versions, err := s.edges.ListTo(dbc, rootID, assets.EdgeVersionOf)
	if err != nil {
		return nil, apierr.Internal("revision_lookup_failed", err)
	}
	ids := []string{rootID}
	for _, e := range versions {
		ids = append(ids, e.FromAssetID)
	}
	members, err := s.assets.GetByIDs(dbc, ids)
	if err != nil {
		return nil, apierr.Internal("revision_lookup_failed", err)
	}
	edges, err := s.edges.ListTouching(dbc, ids)
	if err != nil {
		return nil, apierr.Internal("revision_lookup_failed", err)
	}
	superseded := map[string]bool{}
	messages := map[string]string{}
	for _, e := range edges {
		if e.EdgeType != assets.EdgeSupersedes {
			continue
		}
		superseded[e.ToAssetID] = true
		messages[e.FromAssetID] = assets.ContentString(e.Properties, "commit_message")
	}

	out := make([]*Revision, 0, len(members))
	for _, m := range members {
		if m.IsDeleted || m.ProjectID != row.ProjectID {
			continue
		}
		out = append(out, &Revision{
			ID:            m.ID,
			Version:       m.Version,
			RevisionCode:  m.RevisionCode,
			Status:        m.Status,
			CommitMessage: messages[m.ID],
			IsCurrent:     !superseded[m.ID],
			CreatedAt:     m.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version > out[j].Version
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Revise writes a new version of a current asset. The new row copies the
// asset unless name or content are given and restarts at the type's initial
// status.
func (s *assetService) Revise(ctx context.Context, userID, assetID string, in CreateRevisionInput) (*WriteOutcome, error) {
	cur, _, err := s.locate(ctx, userID, assetID, policy.ActionWrite)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	next := cur.Version + 1
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = "revision:" + cur.ID + ":" + strconv.Itoa(next)
	}

	successors, err := s.edges.ListTo(dbc, cur.ID, assets.EdgeSupersedes)
	if err != nil {
		return nil, apierr.Internal("revision_lookup_failed", err)
	}
	for _, e := range successors {
		succ, err := s.assets.GetByID(dbc, e.FromAssetID)
		if err != nil {
			return nil, apierr.Internal("revision_lookup_failed", err)
		}
		if succ != nil && succ.IdempotencyKey != key {
			return nil, apierr.Conflict("not_current", "asset %s is already superseded by %s", cur.ID, succ.ID)
		}
	}

	rootID, err := s.lineageRoot(dbc, cur)
	if err != nil {
		return nil, err
	}
	name := cur.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	content := json.RawMessage(cur.Content)
	if len(in.Content) > 0 {
		content = in.Content
	}
	revCode := strings.TrimSpace(in.RevisionCode)
	if revCode == "" {
		revCode = cur.RevisionCode
	}
	props, err := json.Marshal(assets.RevisionProperties{
		CommitMessage: strings.TrimSpace(in.CommitMessage),
		CreatedBy:     userID,
	})
	if err != nil {
		return nil, apierr.Internal("encode_failed", err)
	}

	res, err := s.writer.Apply(ctx, assets.WriteSpec{
		Asset: assets.AssetInput{
			Type:           cur.Type,
			ProjectID:      cur.ProjectID,
			Name:           name,
			DocumentNumber: cur.DocumentNumber,
			RevisionCode:   revCode,
			Version:        next,
			Content:        content,
		},
		Edges: []assets.EdgeInput{
			{ToAssetID: cur.ID, EdgeType: assets.EdgeSupersedes, Properties: props},
			{ToAssetID: rootID, EdgeType: assets.EdgeVersionOf},
		},
		IdempotencyKey: key,
		Audit:          &assets.AuditContext{Action: "create_revision"},
	})
	if err != nil {
		return nil, err
	}
	if !res.Replayed {
		s.log.Info("revision created", "project_id", cur.ProjectID, "asset_id", res.Asset.ID, "supersedes", cur.ID, "version", next)
	}
	return outcomeOf(res), nil
}

func (s *assetService) lineageRoot(dbc dbctx.Context, a *assets.Asset) (string, error) {
	up, err := s.edges.ListFrom(dbc, a.ID, assets.EdgeVersionOf)
	if err != nil {
		return "", apierr.Internal("revision_lookup_failed", err)
	}
	if len(up) > 0 {
		return up[0].ToAssetID, nil
	}
	return a.ID, nil
}
