package seats

import (
	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller, organizerAuth ...gin.HandlerFunc) {
	sessions := rg.Group("/sessions/:sessionId/seats")
	{
		sessions.GET("", controller.GetSeatMap)          // GET /api/v1/sessions/:sessionId/seats
		sessions.POST("/status", controller.CheckStatus) // POST /api/v1/sessions/:sessionId/seats/status
	}

	adminSeats := rg.Group("/admin/sessions/:sessionId/seats")
	adminSeats.Use(organizerAuth...)
	{
		adminSeats.POST("/block", controller.BlockSeats)     // POST /api/v1/admin/sessions/:sessionId/seats/block
		adminSeats.POST("/unblock", controller.UnblockSeats) // POST /api/v1/admin/sessions/:sessionId/seats/unblock
	}
}
