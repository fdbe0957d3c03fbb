package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/payment-service/models"
	"github.com/yashrajoria/storefront/services/payment-service/services"
)

// Stripe payloads are well under this; larger bodies are rejected unread.
const maxWebhookBytes = 64 << 10

type PaymentController struct {
	Checkout   services.CheckoutService
	Onboarding services.OnboardingService
	Webhook    services.WebhookService
}

func NewPaymentController(checkout services.CheckoutService, onboarding services.OnboardingService, webhook services.WebhookService) *PaymentController {
	return &PaymentController{Checkout: checkout, Onboarding: onboarding, Webhook: webhook}
}

// CreateCheckoutSession handles POST /checkout-session
func (pc *PaymentController) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	resp, err := pc.Checkout.CreateSession(c.Request.Context(), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConnectOnboarding handles POST /connect-onboarding
func (pc *PaymentController) ConnectOnboarding(c *gin.Context) {
	var req models.OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation("invalid request body: %v", err))
		return
	}

	resp, err := pc.Onboarding.EnsureAccount(c.Request.Context(), req.TenantID, req.Domain)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PaymentWebhook handles POST /webhook/payment. The body is passed on
// byte-for-byte so the signature can be checked against it.
func (pc *PaymentController) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes+1))
	if err != nil {
		apperrors.Respond(c, apperrors.Validation("unreadable body"))
		return
	}
	if len(payload) > maxWebhookBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	status, err := pc.Webhook.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
