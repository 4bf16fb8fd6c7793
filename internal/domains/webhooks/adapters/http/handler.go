package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	webhookapp "github.com/moneta-site/go-calculators-api/internal/domains/webhooks/application"
	sharederrors "github.com/moneta-site/go-calculators-api/internal/shared/errors"
)

// SignatureHeader carries the processor's HMAC of the raw body.
const SignatureHeader = "X-Payment-Signature"

// MaxBodyBytes caps webhook payloads before any verification work is spent
// on them.
const MaxBodyBytes = 100 << 10

// Handler exposes the payment webhook endpoint.
type Handler struct {
	processor *webhookapp.Processor
}

// NewHandler creates a webhook handler backed by the processor.
func NewHandler(processor *webhookapp.Processor) *Handler {
	return &Handler{processor: processor}
}

// Register mounts the webhook route on the router group.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/webhooks/payment", h.HandlePaymentWebhook)
}

// HandlePaymentWebhook reads the capped raw body and maps each processor
// outcome to a distinct status so the payment processor retries exactly the
// transient failures: 2xx acknowledges, 4xx is permanent, 503 asks for a
// retry.
func (h *Handler) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			sharederrors.Respond(c, sharederrors.ErrPayloadTooLarge.WithDetail("webhook body exceeds the size limit"))
			return
		}
		sharederrors.Respond(c, sharederrors.ErrBadRequest.WithDetail("webhook body could not be read"))
		return
	}

	result := h.processor.Process(c.Request.Context(), webhookapp.Delivery{
		Signature: c.GetHeader(SignatureHeader),
		Body:      body,
	})

	switch result.Outcome {
	case webhookapp.OutcomeGranted:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case webhookapp.OutcomeIgnored:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case webhookapp.OutcomeRejected:
		if errors.Is(result.Err, webhookapp.ErrSecretNotConfigured) {
			sharederrors.Respond(c, sharederrors.ErrInternal.WithDetail("webhook secret is not configured"))
			return
		}
		sharederrors.Respond(c, sharederrors.ErrUnauthorized.WithDetail("webhook signature could not be verified"))
	case webhookapp.OutcomeInvalid:
		sharederrors.Respond(c, sharederrors.ErrBadRequest.WithDetail("webhook payload is not usable"))
	case webhookapp.OutcomeStoreFailed:
		sharederrors.Respond(c, sharederrors.ErrUnavailable.WithDetail("entitlement store is unavailable, retry the delivery"))
	default:
		sharederrors.Respond(c, sharederrors.ErrInternal)
	}
}
