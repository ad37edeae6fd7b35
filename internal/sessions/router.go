package sessions

import (
	"github.com/gin-gonic/gin"
)

func SetupSessionRoutes(rg *gin.RouterGroup, controller *Controller, organizerAuth ...gin.HandlerFunc) {
	admin := rg.Group("/admin/sessions")
	admin.Use(organizerAuth...)
	{
		admin.POST("", controller.RegisterSession) // POST /api/v1/admin/sessions
	}
}
