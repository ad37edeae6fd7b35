package seats

import (
	"errors"
	"net/http"

	"ticketcore/internal/shared/middleware"
	"ticketcore/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	ledger    *Ledger
	validator *validator.Validate
}

func NewController(ledger *Ledger) *Controller {
	return &Controller{
		ledger:    ledger,
		validator: validator.New(),
	}
}

func (c *Controller) GetSeatMap(ctx *gin.Context) {
	m, err := c.ledger.Snapshot(ctx.Request.Context(), ctx.Param("sessionId"))
	if err != nil {
		response.RespondError(ctx, HTTPStatus(err), "Failed to get seat map", err)
		return
	}

	viewer := ctx.GetHeader(middleware.HolderTokenHeader)
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", ToSeatMapResponse(m, viewer), nil)
}

func (c *Controller) CheckStatus(ctx *gin.Context) {
	var req SeatStatusRequest
	if !c.bind(ctx, &req) {
		return
	}

	refs := ToRefs(req.Seats)
	states, err := c.ledger.Status(ctx.Request.Context(), ctx.Param("sessionId"), refs)
	if err != nil {
		response.RespondError(ctx, HTTPStatus(err), "Failed to get seat status", err)
		return
	}

	viewer := ctx.GetHeader(middleware.HolderTokenHeader)
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat status retrieved successfully", ToStatusResponse(refs, states, viewer), nil)
}

// ADMIN

func (c *Controller) BlockSeats(ctx *gin.Context) {
	var req BlockSeatsRequest
	if !c.bind(ctx, &req) {
		return
	}

	if err := c.ledger.Block(ctx.Request.Context(), ctx.Param("sessionId"), ToRefs(req.Seats), req.Reason); err != nil {
		response.RespondError(ctx, HTTPStatus(err), "Failed to block seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats blocked successfully", gin.H{"blocked": len(req.Seats)}, nil)
}

func (c *Controller) UnblockSeats(ctx *gin.Context) {
	var req BlockSeatsRequest
	if !c.bind(ctx, &req) {
		return
	}

	if err := c.ledger.Unblock(ctx.Request.Context(), ctx.Param("sessionId"), ToRefs(req.Seats)); err != nil {
		response.RespondError(ctx, HTTPStatus(err), "Failed to unblock seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats unblocked successfully", nil, nil)
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

// HTTPStatus maps ledger errors to status codes
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrHoldNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSeatUnavailable), errors.Is(err, ErrSeatBlocked),
		errors.Is(err, ErrCheckoutLocked), errors.Is(err, ErrAlreadyCommitted):
		return http.StatusConflict
	case errors.Is(err, ErrHoldExpired):
		return http.StatusGone
	case errors.Is(err, ErrUnknownSeat), errors.Is(err, ErrEmptySeatSet),
		errors.Is(err, ErrMissingHolder), errors.Is(err, ErrInvalidHoldTTL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrSessionOwnedElsewhere):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
