package occupancy

import (
	"github.com/gin-gonic/gin"
)

func SetupOccupancyRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/sessions", controller.ListSessions)                      // GET /api/v1/sessions?event_id=
	rg.GET("/sessions/:sessionId/occupancy", controller.GetOccupancy) // GET /api/v1/sessions/:sessionId/occupancy
}
