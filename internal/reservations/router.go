package reservations

import (
	"github.com/gin-gonic/gin"
)

func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller, holder gin.HandlerFunc) {
	selection := rg.Group("/sessions/:sessionId/selection")
	selection.Use(holder)
	{
		selection.GET("", controller.GetSelection)       // GET /api/v1/sessions/:sessionId/selection
		selection.POST("", controller.SelectSeats)       // POST /api/v1/sessions/:sessionId/selection
		selection.DELETE("", controller.ClearSelection)  // DELETE /api/v1/sessions/:sessionId/selection
		selection.POST("/toggle", controller.ToggleSeat) // POST /api/v1/sessions/:sessionId/selection/toggle
	}
}
