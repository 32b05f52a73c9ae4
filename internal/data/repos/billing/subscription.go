package billing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/siteproof-backend/internal/domain/billing"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type SubscriptionRepo interface {
	GetByUser(dbc dbctx.Context, userID string) (*domain.Subscription, error)
	GetByCustomerID(dbc dbctx.Context, customerID string) (*domain.Subscription, error)
	GetBySubscriptionID(dbc dbctx.Context, subscriptionID string) (*domain.Subscription, error)
	// Upsert writes row keyed by user_id, overwriting only the named columns on conflict.
	Upsert(dbc dbctx.Context, row *domain.Subscription, columns []string) error
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (r *subscriptionRepo) first(dbc dbctx.Context, query string, arg string) (*domain.Subscription, error) {
	var out []*domain.Subscription
	if arg == "" {
		return nil, nil
	}
	if err := dbc.DB(r.db).Where(query, arg).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *subscriptionRepo) GetByUser(dbc dbctx.Context, userID string) (*domain.Subscription, error) {
	return r.first(dbc, "user_id = ?", userID)
}

func (r *subscriptionRepo) GetByCustomerID(dbc dbctx.Context, customerID string) (*domain.Subscription, error) {
	return r.first(dbc, "stripe_customer_id = ?", customerID)
}

func (r *subscriptionRepo) GetBySubscriptionID(dbc dbctx.Context, subscriptionID string) (*domain.Subscription, error) {
	return r.first(dbc, "stripe_subscription_id = ?", subscriptionID)
}

func (r *subscriptionRepo) Upsert(dbc dbctx.Context, row *domain.Subscription, columns []string) error {
	row.UpdatedAt = time.Now().UTC()
	cols := append([]string{"updated_at"}, columns...)
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(row).Error
}
