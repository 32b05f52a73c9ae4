package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/billing"
	"github.com/yungbote/siteproof-backend/internal/observability"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/redisx"
	"github.com/yungbote/siteproof-backend/internal/platform/stripex"
)

type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID, successURL, cancelURL string) (*stripex.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	SubscriptionStatus(ctx context.Context, userID string) (*billing.Subscription, error)
}

type billingService struct {
	log     *logger.Logger
	stripe  stripex.Provider
	subs    repos.SubscriptionRepo
	dedupe  redisx.EventDeduper
	metrics *observability.Metrics
}

func NewBillingService(log *logger.Logger, provider stripex.Provider, subs repos.SubscriptionRepo, dedupe redisx.EventDeduper, metrics *observability.Metrics) BillingService {
	if dedupe == nil {
		dedupe = redisx.NoopDeduper()
	}
	return &billingService{
		log:     log.With("service", "BillingService"),
		stripe:  provider,
		subs:    subs,
		dedupe:  dedupe,
		metrics: metrics,
	}
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, userID, priceID, successURL, cancelURL string) (*stripex.CheckoutSession, error) {
	if userID == "" {
		return nil, apierr.Unauthorized("authentication required")
	}
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return nil, apierr.BadRequest("invalid_request", "priceId is required")
	}
	if s.stripe == nil || !s.stripe.Enabled() {
		return nil, apierr.Internal("billing_unconfigured", stripex.ErrNotConfigured)
	}
	sess, err := s.stripe.CreateCheckoutSession(ctx, stripex.CheckoutInput{
		UserID:     userID,
		PriceID:    priceID,
		SuccessURL: strings.TrimSpace(successURL),
		CancelURL:  strings.TrimSpace(cancelURL),
	})
	if err != nil {
		s.log.Error("create checkout session failed", "user_id", userID, "price_id", priceID, "error", err)
		return nil, apierr.Internal("checkout_failed", err)
	}
	return sess, nil
}

// HandleWebhook verifies, de-duplicates and applies one Stripe event. A
// failed event releases its claim so the provider's retry is processed.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.stripe == nil {
		return apierr.Internal("billing_unconfigured", stripex.ErrNotConfigured)
	}
	ev, err := s.stripe.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, stripex.ErrNotConfigured) {
			return apierr.Internal("billing_unconfigured", err)
		}
		s.metrics.IncWebhookEvent("unknown", "invalid")
		return apierr.BadRequest("invalid_signature", "webhook signature verification failed")
	}
	claimed, err := s.dedupe.Claim(ctx, ev.ID)
	if err != nil {
		s.log.Error("webhook dedupe claim failed", "event_id", ev.ID, "error", err)
		return apierr.Internal("webhook_dedupe_failed", err)
	}
	if !claimed {
		s.log.Info("duplicate webhook ignored", "event_id", ev.ID, "type", ev.Type)
		s.metrics.IncWebhookEvent(ev.Type, "duplicate")
		return nil
	}
	if err := s.apply(ctx, ev); err != nil {
		if rerr := s.dedupe.Release(ctx, ev.ID); rerr != nil {
			s.log.Warn("webhook claim release failed", "event_id", ev.ID, "error", rerr)
		}
		s.metrics.IncWebhookEvent(ev.Type, "error")
		s.log.Error("webhook processing failed", "event_id", ev.ID, "type", ev.Type, "error", err)
		return apierr.Internal("webhook_failed", err)
	}
	s.metrics.IncWebhookEvent(ev.Type, "ok")
	return nil
}

func (s *billingService) apply(ctx context.Context, ev *stripex.WebhookEvent) error {
	dbc := dbctx.New(ctx)
	switch ev.Type {
	case stripex.EventCheckoutCompleted:
		if ev.UserID == "" {
			s.log.Warn("checkout completed without user reference", "event_id", ev.ID)
			return nil
		}
		return s.subs.Upsert(dbc, &billing.Subscription{
			UserID:               ev.UserID,
			StripeCustomerID:     ev.CustomerID,
			StripeSubscriptionID: ev.SubscriptionID,
			Status:               billing.StatusActive,
		}, []string{"stripe_customer_id", "stripe_subscription_id", "status"})
	case stripex.EventInvoicePaid:
		return s.updateKnown(dbc, ev, billing.StatusActive, true)
	case stripex.EventInvoiceFailed:
		return s.updateKnown(dbc, ev, billing.StatusPastDue, false)
	case stripex.EventSubscriptionUpdated:
		status := strings.TrimSpace(ev.Status)
		if status == "" {
			status = billing.StatusActive
		}
		return s.updateKnown(dbc, ev, status, true)
	case stripex.EventSubscriptionDeleted:
		return s.updateKnown(dbc, ev, billing.StatusCanceled, false)
	default:
		s.log.Debug("webhook event ignored", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
}

// updateKnown applies status to the subscription row the event refers to,
// matched by subscription id and then customer id.
func (s *billingService) updateKnown(dbc dbctx.Context, ev *stripex.WebhookEvent, status string, withPeriod bool) error {
	var row *billing.Subscription
	var err error
	if ev.SubscriptionID != "" {
		if row, err = s.subs.GetBySubscriptionID(dbc, ev.SubscriptionID); err != nil {
			return err
		}
	}
	if row == nil && ev.CustomerID != "" {
		if row, err = s.subs.GetByCustomerID(dbc, ev.CustomerID); err != nil {
			return err
		}
	}
	if row == nil {
		s.log.Warn("webhook for unknown subscription", "event_id", ev.ID, "type", ev.Type)
		return nil
	}
	row.Status = status
	cols := []string{"status"}
	if ev.SubscriptionID != "" {
		row.StripeSubscriptionID = ev.SubscriptionID
		cols = append(cols, "stripe_subscription_id")
	}
	if ev.PriceID != "" {
		row.PriceID = ev.PriceID
		cols = append(cols, "price_id")
	}
	if withPeriod && ev.PeriodEnd != nil {
		row.CurrentPeriodEnd = ev.PeriodEnd
		cols = append(cols, "current_period_end")
	}
	return s.subs.Upsert(dbc, row, cols)
}

func (s *billingService) SubscriptionStatus(ctx context.Context, userID string) (*billing.Subscription, error) {
	if userID == "" {
		return nil, apierr.Unauthorized("authentication required")
	}
	row, err := s.subs.GetByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Internal("subscription_lookup_failed", err)
	}
	if row == nil {
		return &billing.Subscription{UserID: userID, Status: billing.StatusInactive}, nil
	}
	return row, nil
}
