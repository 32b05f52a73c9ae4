package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/siteproof-backend/internal/http/response"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/services"
)

// Stripe documents webhook payloads well under this size.
const maxWebhookBytes = 1 << 20

type BillingHandler struct {
	billing services.BillingService
}

func NewBillingHandler(billing services.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

type checkoutRequest struct {
	PriceID    string `json:"priceId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// POST /api/v1/billing/checkout-session
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if strings.TrimSpace(req.PriceID) == "" {
		response.RespondError(c, apierr.BadRequest("invalid_request", "priceId required"))
		return
	}
	sess, err := h.billing.CreateCheckoutSession(c.Request.Context(), requestUserID(c), req.PriceID, req.SuccessURL, req.CancelURL)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, sess)
}

// GET /api/v1/billing/subscription-status
func (h *BillingHandler) SubscriptionStatus(c *gin.Context) {
	sub, err := h.billing.SubscriptionStatus(c.Request.Context(), requestUserID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subscription": sub})
}

// POST /api/v1/webhooks/stripe
func (h *BillingHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_request", "unreadable payload"))
		return
	}
	if err := h.billing.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"received": true})
}
