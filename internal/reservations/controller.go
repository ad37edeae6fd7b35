package reservations

import (
	"errors"
	"net/http"

	"ticketcore/internal/seats"
	"ticketcore/internal/shared/middleware"
	"ticketcore/internal/shared/utils/response"
	"ticketcore/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	coordinator *Coordinator
	validator   *validator.Validate
}

func NewController(coordinator *Coordinator) *Controller {
	return &Controller{
		coordinator: coordinator,
		validator:   validator.New(),
	}
}

func (c *Controller) ToggleSeat(ctx *gin.Context) {
	var req ToggleSeatRequest
	if !c.bind(ctx, &req) {
		return
	}

	ref := seats.SeatRef{Section: req.Section, SeatID: req.SeatID}
	set, err := c.coordinator.ToggleSeat(ctx.Request.Context(), ctx.Param("sessionId"), ref, middleware.GetHolderToken(ctx))
	if err != nil {
		respondError(ctx, "Failed to toggle seat", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selection updated", set, nil)
}

func (c *Controller) SelectSeats(ctx *gin.Context) {
	var req SelectSeatsRequest
	if !c.bind(ctx, &req) {
		return
	}

	set, err := c.coordinator.SelectSeats(ctx.Request.Context(), ctx.Param("sessionId"), seats.ToRefs(req.Seats), middleware.GetHolderToken(ctx))
	if err != nil {
		respondError(ctx, "Failed to select seats", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats selected", set, nil)
}

func (c *Controller) GetSelection(ctx *gin.Context) {
	set, err := c.coordinator.Selection(ctx.Request.Context(), ctx.Param("sessionId"), middleware.GetHolderToken(ctx))
	if err != nil {
		respondError(ctx, "Failed to get selection", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selection retrieved successfully", set, nil)
}

func (c *Controller) ClearSelection(ctx *gin.Context) {
	if err := c.coordinator.ClearSelection(ctx.Request.Context(), ctx.Param("sessionId"), middleware.GetHolderToken(ctx)); err != nil {
		respondError(ctx, "Failed to clear selection", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Selection cleared", nil, nil)
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

func respondError(ctx *gin.Context, message string, err error) {
	var errs interface{} = err.Error()
	if ref, ok := seats.OffendingSeat(err); ok {
		errs = gin.H{"error": err.Error(), "seat": ref}
	}
	code := HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.GetDefault().WithHolder(middleware.GetHolderToken(ctx)).LogHTTPError(ctx, err, code)
	}
	response.RespondJSON(ctx, "error", code, message, nil, errs)
}

// HTTPStatus maps coordinator errors to status codes
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSeatTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidHolderLimit):
		return http.StatusUnprocessableEntity
	default:
		return seats.HTTPStatus(err)
	}
}
