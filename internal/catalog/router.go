package catalog

import (
	"github.com/gin-gonic/gin"
)

func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller, organizerAuth ...gin.HandlerFunc) {
	rg.GET("/sessions/:sessionId/ticket-types", controller.ListTicketTypes) // GET /api/v1/sessions/:sessionId/ticket-types

	admin := rg.Group("/admin/sessions")
	admin.Use(organizerAuth...)
	{
		admin.PUT("/:sessionId/ticket-types/:section", controller.UpdatePrice) // PUT /api/v1/admin/sessions/:sessionId/ticket-types/:section
	}
}
