package venues

import (
	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller, organizerAuth ...gin.HandlerFunc) {
	venues := rg.Group("/venues")
	{
		venues.GET("/:venueId", controller.GetLayout) // GET /api/v1/venues/:venueId
	}

	adminVenues := rg.Group("/admin/venues")
	adminVenues.Use(organizerAuth...)
	{
		adminVenues.POST("", controller.RegisterLayout) // POST /api/v1/admin/venues
	}
}
