package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	"github.com/yungbote/siteproof-backend/internal/domain/billing"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/redisx"
	"github.com/yungbote/siteproof-backend/internal/platform/stripex"
)

// fakeStripe treats the payload as the event id and looks the event up.
type fakeStripe struct {
	events   map[string]*stripex.WebhookEvent
	checkout stripex.CheckoutInput
}

func (f *fakeStripe) Enabled() bool { return true }

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, in stripex.CheckoutInput) (*stripex.CheckoutSession, error) {
	f.checkout = in
	return &stripex.CheckoutSession{URL: "https://checkout.stripe.test/cs_1", SessionID: "cs_1"}, nil
}

func (f *fakeStripe) ParseWebhook(payload []byte, signature string) (*stripex.WebhookEvent, error) {
	if signature != "valid" {
		return nil, stripex.ErrInvalidSignature
	}
	ev, ok := f.events[string(payload)]
	if !ok {
		return nil, errors.New("unknown event")
	}
	return ev, nil
}

type flakySubs struct {
	repos.SubscriptionRepo
	failures int
}

func (f *flakySubs) Upsert(dbc dbctx.Context, row *billing.Subscription, columns []string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("db down")
	}
	return f.SubscriptionRepo.Upsert(dbc, row, columns)
}

func newBillingFixture(t *testing.T) (*fakeStripe, repos.SubscriptionRepo, redisx.EventDeduper) {
	t.Helper()
	env := newTestEnv(t)
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	fs := &fakeStripe{events: map[string]*stripex.WebhookEvent{
		"evt_checkout": {ID: "evt_checkout", Type: stripex.EventCheckoutCompleted, UserID: "u1", CustomerID: "cus_1", SubscriptionID: "sub_1"},
		"evt_paid":     {ID: "evt_paid", Type: stripex.EventInvoicePaid, CustomerID: "cus_1", SubscriptionID: "sub_1", PeriodEnd: &end},
		"evt_failed":   {ID: "evt_failed", Type: stripex.EventInvoiceFailed, CustomerID: "cus_1"},
		"evt_updated":  {ID: "evt_updated", Type: stripex.EventSubscriptionUpdated, SubscriptionID: "sub_1", Status: "trialing", PriceID: "price_pro"},
		"evt_deleted":  {ID: "evt_deleted", Type: stripex.EventSubscriptionDeleted, SubscriptionID: "sub_1"},
		"evt_other":    {ID: "evt_other", Type: "customer.created"},
	}}
	return fs, env.repos.Subscriptions, redisx.NewEventDeduper(rdb, "", 0)
}

func TestBillingWebhookLifecycle(t *testing.T) {
	ctx := context.Background()
	fs, subs, dedupe := newBillingFixture(t)
	svc := NewBillingService(testutil.Logger(t), fs, subs, dedupe, nil)

	status := func() *billing.Subscription {
		row, err := svc.SubscriptionStatus(ctx, "u1")
		require.NoError(t, err)
		return row
	}

	assert.Equal(t, billing.StatusInactive, status().Status)

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_checkout"), "valid"))
	row := status()
	assert.Equal(t, billing.StatusActive, row.Status)
	assert.Equal(t, "cus_1", row.StripeCustomerID)
	assert.Equal(t, "sub_1", row.StripeSubscriptionID)

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_paid"), "valid"))
	require.NotNil(t, status().CurrentPeriodEnd)

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_failed"), "valid"))
	assert.Equal(t, billing.StatusPastDue, status().Status)

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_updated"), "valid"))
	row = status()
	assert.Equal(t, "trialing", row.Status)
	assert.Equal(t, "price_pro", row.PriceID)

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_deleted"), "valid"))
	assert.Equal(t, billing.StatusCanceled, status().Status)

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_other"), "valid"))
}

func TestBillingWebhookDuplicateIsIgnored(t *testing.T) {
	ctx := context.Background()
	fs, subs, dedupe := newBillingFixture(t)
	svc := NewBillingService(testutil.Logger(t), fs, subs, dedupe, nil)

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_checkout"), "valid"))
	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_failed"), "valid"))
	// A redelivered checkout must not flip the row back to active.
	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_checkout"), "valid"))

	row, err := svc.SubscriptionStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPastDue, row.Status)
}

func TestBillingWebhookFailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	fs, subs, dedupe := newBillingFixture(t)
	flaky := &flakySubs{SubscriptionRepo: subs, failures: 1}
	svc := NewBillingService(testutil.Logger(t), fs, flaky, dedupe, nil)

	err := svc.HandleWebhook(ctx, []byte("evt_checkout"), "valid")
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))

	require.NoError(t, svc.HandleWebhook(ctx, []byte("evt_checkout"), "valid"), "retry is processed")
	row, err := svc.SubscriptionStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, row.Status)
}

func TestBillingWebhookBadSignature(t *testing.T) {
	fs, subs, dedupe := newBillingFixture(t)
	svc := NewBillingService(testutil.Logger(t), fs, subs, dedupe, nil)

	err := svc.HandleWebhook(context.Background(), []byte("evt_checkout"), "forged")
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestCreateCheckoutSession(t *testing.T) {
	fs, subs, _ := newBillingFixture(t)
	svc := NewBillingService(testutil.Logger(t), fs, subs, nil, nil)

	sess, err := svc.CreateCheckoutSession(context.Background(), "u1", "price_pro", "", "")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", sess.SessionID)
	assert.Equal(t, "u1", fs.checkout.UserID)

	_, err = svc.CreateCheckoutSession(context.Background(), "u1", " ", "", "")
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))

	disabled := NewBillingService(testutil.Logger(t), stripex.New(stripex.Config{}, testutil.Logger(t)), subs, nil, nil)
	_, err = disabled.CreateCheckoutSession(context.Background(), "u1", "price_pro", "", "")
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
}
