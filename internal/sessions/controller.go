package sessions

import (
	"errors"
	"net/http"

	"ticketcore/internal/catalog"
	"ticketcore/internal/shared/utils/response"
	"ticketcore/internal/venues"

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

func (c *Controller) RegisterSession(ctx *gin.Context) {
	var req RegisterSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err)
		return
	}

	session, types, err := c.service.Register(ctx.Request.Context(), req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, venues.ErrLayoutNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, ErrInvalidSchedule), errors.Is(err, ErrMissingTicketing),
			errors.Is(err, catalog.ErrUnknownSection), errors.Is(err, catalog.ErrDuplicateTicketType),
			errors.Is(err, catalog.ErrInvalidPrice):
			statusCode = http.StatusUnprocessableEntity
		}
		response.RespondError(ctx, statusCode, "Failed to register session", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Session registered successfully", ToSessionResponse(session, types), nil)
}
