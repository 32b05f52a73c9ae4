package stripex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/yungbote/siteproof-backend/internal/platform/envutil"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

var (
	ErrNotConfigured    = errors.New("stripe is not configured")
	ErrInvalidSignature = errors.New("stripe webhook signature verification failed")
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	// SuccessURL and CancelURL are used when the caller supplies none.
	SuccessURL string
	CancelURL  string
}

func ConfigFromEnv() Config {
	appURL := strings.TrimRight(envutil.String("APP_BASE_URL", ""), "/")
	cfg := Config{
		SecretKey:     envutil.String("STRIPE_SECRET_KEY", ""),
		WebhookSecret: envutil.String("STRIPE_WEBHOOK_SECRET", ""),
		SuccessURL:    envutil.String("STRIPE_SUCCESS_URL", ""),
		CancelURL:     envutil.String("STRIPE_CANCEL_URL", ""),
	}
	if cfg.SuccessURL == "" && appURL != "" {
		cfg.SuccessURL = appURL + "/auth/subscription/sync?session_id={CHECKOUT_SESSION_ID}"
	}
	if cfg.CancelURL == "" && appURL != "" {
		cfg.CancelURL = appURL + "/app/account"
	}
	return cfg
}

type CheckoutInput struct {
	UserID     string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// Provider is the slice of Stripe the billing service depends on.
type Provider interface {
	Enabled() bool
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type provider struct {
	log *logger.Logger
	api *client.API
	cfg Config
	now func() time.Time
}

func New(cfg Config, log *logger.Logger) Provider {
	p := &provider{log: log.With("client", "Stripe"), cfg: cfg, now: time.Now}
	if cfg.SecretKey != "" {
		p.api = &client.API{}
		p.api.Init(cfg.SecretKey, nil)
	} else {
		p.log.Warn("Stripe disabled (STRIPE_SECRET_KEY not set)")
	}
	return p
}

func (p *provider) Enabled() bool { return p != nil && p.api != nil }

func (p *provider) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error) {
	if !p.Enabled() {
		return nil, ErrNotConfigured
	}
	success := firstNonEmpty(in.SuccessURL, p.cfg.SuccessURL)
	cancel := firstNonEmpty(in.CancelURL, p.cfg.CancelURL)
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(in.UserID),
	}
	if success != "" {
		params.SuccessURL = stripe.String(success)
	}
	if cancel != "" {
		params.CancelURL = stripe.String(cancel)
	}
	params.Context = ctx
	params.AddMetadata("user_id", in.UserID)

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{URL: sess.URL, SessionID: sess.ID}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
