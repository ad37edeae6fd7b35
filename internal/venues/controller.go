package venues

import (
	"errors"
	"net/http"

	"ticketcore/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) RegisterLayout(ctx *gin.Context) {
	var req RegisterLayoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err)
		return
	}

	layout, err := c.service.Register(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, statusFor(err), "Failed to register venue layout", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Venue layout registered successfully", ToLayoutResponse(layout), nil)
}

func (c *Controller) GetLayout(ctx *gin.Context) {
	layout, err := c.service.GetLayout(ctx.Request.Context(), ctx.Param("venueId"))
	if err != nil {
		response.RespondError(ctx, statusFor(err), "Failed to get venue layout", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Venue layout retrieved successfully", ToLayoutResponse(layout), nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrLayoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrLayoutExists):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidLayout):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
