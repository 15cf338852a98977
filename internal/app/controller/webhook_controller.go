package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumeatelie/lume-backend/internal/app/service"
	apperrors "github.com/lumeatelie/lume-backend/internal/errors"
	"github.com/lumeatelie/lume-backend/internal/middleware"
)

// Stripe caps event payloads well under this; anything larger is not Stripe.
const maxWebhookBodyBytes = 64 * 1024

type WebhookController struct {
	paymentService service.PaymentService
}

func NewWebhookController(paymentService service.PaymentService) *WebhookController {
	return &WebhookController{paymentService: paymentService}
}

// HandleStripeWebhook verifies and processes a Stripe event delivery.
// Non-2xx responses make Stripe retry, so only signature problems and
// processing failures are reported as errors.
// POST /webhooks/stripe
func (ctrl *WebhookController) HandleStripeWebhook(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Error("Failed to read webhook body", err)
		apperrors.BadRequest(c, apperrors.PaymentWebhookInvalid, "Corpo da requisição ilegível")
		return
	}

	signature := c.GetHeader("Stripe-Signature")

	result, err := ctrl.paymentService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookSecretMissing):
			log.Error("Stripe webhook secret is not configured", err)
			apperrors.RespondWithError(c, http.StatusInternalServerError,
				apperrors.PaymentSecretMissing, "Webhook não configurado")
		case errors.Is(err, service.ErrWebhookSignatureInvalid):
			apperrors.BadRequest(c, apperrors.PaymentWebhookInvalid, "Assinatura inválida")
		default:
			log.Error("Webhook processing failed", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"event_id":  result.EventID,
		"processed": result.Processed,
	})
}
