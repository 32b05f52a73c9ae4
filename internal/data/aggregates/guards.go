package aggregates

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
)

// CASGuard applies compare-and-set updates keyed on a row's version column.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

// UpdateByVersion updates a row only when id+version match, bumping version.
func (g CASGuard) UpdateByVersion(dbc dbctx.Context, table, id string, expectedVersion int, updates map[string]any) (bool, error) {
	if dbc.Tx == nil && g.db == nil {
		return false, errors.New("missing db transaction context")
	}
	table = strings.TrimSpace(table)
	if table == "" || strings.TrimSpace(id) == "" {
		return false, errors.New("table and id are required for UpdateByVersion")
	}
	if expectedVersion < 0 {
		return false, errors.New("expectedVersion must be >= 0")
	}
	next := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		next[k] = v
	}
	next["version"] = expectedVersion + 1
	res := dbc.DB(g.db).Table(table).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a conflict error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return ConflictError(message)
}
