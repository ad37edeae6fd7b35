package bookings

import (
	"errors"
	"net/http"

	"ticketcore/internal/payments"
	"ticketcore/internal/pricing"
	"ticketcore/internal/reservations"
	"ticketcore/internal/shared/middleware"
	"ticketcore/internal/shared/utils/response"
	"ticketcore/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   *Service
	validator *validator.Validate
}

func NewController(service *Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) GetQuote(ctx *gin.Context) {
	quote, err := c.service.Quote(ctx.Request.Context(), ctx.Param("sessionId"), middleware.GetHolderToken(ctx))
	if err != nil {
		respondError(ctx, "Failed to compute quote", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Quote computed successfully", quote, nil)
}

func (c *Controller) SubmitBooking(ctx *gin.Context) {
	booking, err := c.service.Submit(ctx.Request.Context(), ctx.Param("sessionId"), middleware.GetHolderToken(ctx))
	if err != nil {
		respondError(ctx, "Failed to submit booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusAccepted, "Booking submitted, awaiting payment", ToBookingResponse(booking), nil)
}

func (c *Controller) GetBooking(ctx *gin.Context) {
	booking, err := c.service.GetBooking(ctx.Request.Context(), ctx.Param("id"), middleware.GetHolderToken(ctx))
	if err != nil {
		respondError(ctx, "Failed to get booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", ToBookingResponse(booking), nil)
}

func (c *Controller) CancelBooking(ctx *gin.Context) {
	var req CancelBookingRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		if err := c.validator.Struct(&req); err != nil {
			response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err)
			return
		}
	}

	booking, err := c.service.Cancel(ctx.Request.Context(), ctx.Param("id"), middleware.GetHolderToken(ctx))
	if err != nil {
		respondError(ctx, "Failed to cancel booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled", ToBookingResponse(booking), nil)
}

func (c *Controller) ListBookings(ctx *gin.Context) {
	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	if err := c.validator.Struct(&query); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err)
		return
	}
	query.SetDefaults()

	bookings, total, err := c.service.ListBookings(ctx.Request.Context(), middleware.GetHolderToken(ctx), query)
	if err != nil {
		respondError(ctx, "Failed to list bookings", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", ToBookingListResponse(bookings, total, query), nil)
}

func respondError(ctx *gin.Context, message string, err error) {
	l := logger.GetDefault().WithHolder(middleware.GetHolderToken(ctx))
	response.RespondErrorWith(ctx, l, HTTPStatus(err), message, err)
}

// HTTPStatus maps booking errors to status codes
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrEmptySelection), errors.Is(err, pricing.ErrNotPriced),
		errors.Is(err, payments.ErrUnknownEventKind), errors.Is(err, payments.ErrMissingBookingID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrShuttingDown), errors.Is(err, payments.ErrHandledElsewhere):
		return http.StatusServiceUnavailable
	default:
		return reservations.HTTPStatus(err)
	}
}
