package payments

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"ticketcore/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const WebhookSecretHeader = "X-Webhook-Secret"

type Controller struct {
	sink      EventSink
	forwarder EventForwarder
	secret    string
	validator *validator.Validate
	// statusFor maps sink errors to HTTP codes
	statusFor func(error) int
}

// NewController builds the webhook controller. An empty secret disables the header check.
func NewController(sink EventSink, secret string, statusFor func(error) int) *Controller {
	if statusFor == nil {
		statusFor = func(error) int { return http.StatusInternalServerError }
	}
	return &Controller{
		sink:      sink,
		secret:    secret,
		validator: validator.New(),
		statusFor: statusFor,
	}
}

// ForwardTo makes the webhook pass on events whose booking runs on another instance
func (c *Controller) ForwardTo(forwarder EventForwarder) *Controller {
	c.forwarder = forwarder
	return c
}

// Webhook accepts a payment event pushed by the collaborator
func (c *Controller) Webhook(ctx *gin.Context) {
	if c.secret != "" {
		got := ctx.GetHeader(WebhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(c.secret)) != 1 {
			response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Unauthorized", nil, ErrInvalidSignature.Error())
			return
		}
	}

	var req WebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err)
		return
	}

	event := req.ToEvent(time.Now())
	err := c.sink.HandlePaymentEvent(ctx.Request.Context(), event)
	if errors.Is(err, ErrHandledElsewhere) && c.forwarder != nil {
		if err := c.forwarder.ForwardEvent(ctx.Request.Context(), event); err != nil {
			response.RespondError(ctx, http.StatusServiceUnavailable, "Failed to forward payment event", err)
			return
		}
		response.RespondJSON(ctx, "success", http.StatusAccepted, "Payment event forwarded", nil, nil)
		return
	}
	if err != nil {
		response.RespondError(ctx, c.statusFor(err), "Failed to process payment event", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusAccepted, "Payment event accepted", nil, nil)
}
