package catalog

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

func (c *Controller) ListTicketTypes(ctx *gin.Context) {
	types, err := c.service.ListTicketTypes(ctx.Request.Context(), ctx.Param("sessionId"))
	if err != nil {
		response.RespondError(ctx, http.StatusInternalServerError, "Failed to get ticket types", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket types retrieved successfully", types, nil)
}

func (c *Controller) UpdatePrice(ctx *gin.Context) {
	var req UpdatePriceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err)
		return
	}

	t, err := c.service.UpdatePrice(ctx.Request.Context(), ctx.Param("sessionId"), ctx.Param("section"), *req.Price)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrTicketTypeNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrInvalidPrice):
			statusCode = http.StatusUnprocessableEntity
		}
		response.RespondError(ctx, statusCode, "Failed to update price", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Price updated successfully", t, nil)
}
