package occupancy

import (
	"net/http"
	"strings"

	"ticketcore/internal/seats"
	"ticketcore/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	reporter *Reporter
}

func NewController(reporter *Reporter) *Controller {
	return &Controller{reporter: reporter}
}

func (c *Controller) ListSessions(ctx *gin.Context) {
	eventID := strings.TrimSpace(ctx.Query("event_id"))
	if eventID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "event_id query parameter is required", nil, nil)
		return
	}

	list, err := c.reporter.ListSessions(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, seats.HTTPStatus(err), "Failed to list sessions", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sessions retrieved successfully", list, nil)
}

func (c *Controller) GetOccupancy(ctx *gin.Context) {
	occ, err := c.reporter.Occupancy(ctx.Request.Context(), ctx.Param("sessionId"))
	if err != nil {
		response.RespondError(ctx, seats.HTTPStatus(err), "Failed to get occupancy", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Occupancy retrieved successfully", occ, nil)
}
