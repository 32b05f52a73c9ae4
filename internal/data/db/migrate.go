package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/siteproof-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

// EnsureAssetIndexes adds Postgres-only indexes the register queries rely on.
func EnsureAssetIndexes(db *gorm.DB) error {
	if !isPostgres(db) {
		return nil
	}
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_assets_register", `
			CREATE INDEX IF NOT EXISTS idx_assets_register
			ON assets (project_id, type, created_at DESC)
			WHERE is_deleted = false;`},
		{"idx_assets_content_user", `
			CREATE INDEX IF NOT EXISTS idx_assets_content_user
			ON assets ((content->>'user_id'))
			WHERE is_deleted = false;`},
		{"idx_assets_content_gin", `
			CREATE INDEX IF NOT EXISTS idx_assets_content_gin
			ON assets USING GIN (content jsonb_path_ops);`},
		{"idx_asset_edges_to_type", `
			CREATE INDEX IF NOT EXISTS idx_asset_edges_to_type
			ON asset_edges (to_asset_id, edge_type);`},
		{"idx_asset_edges_idempotency", `
			CREATE INDEX IF NOT EXISTS idx_asset_edges_idempotency
			ON asset_edges (project_id, idempotency_key)
			WHERE idempotency_key <> '';`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

// EnsureViews creates read-only views over the asset table.
func EnsureViews(db *gorm.DB) error {
	if !isPostgres(db) {
		return nil
	}
	if err := db.Exec(`
		CREATE OR REPLACE VIEW itp_register AS
		SELECT a.id,
		       a.project_id,
		       a.document_number,
		       a.name,
		       a.status,
		       a.approval_state,
		       a.revision_code,
		       a.content->>'title'    AS title,
		       a.content->>'wbs_node' AS wbs_node,
		       a.content->>'lbs_node' AS lbs_node,
		       a.created_at,
		       a.updated_at
		FROM assets a
		WHERE a.type = 'itp_document' AND a.is_deleted = false;
	`).Error; err != nil {
		return fmt.Errorf("create itp_register view: %w", err)
	}
	return nil
}
