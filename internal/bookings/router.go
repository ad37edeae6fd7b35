package bookings

import (
	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, holder gin.HandlerFunc) {
	session := rg.Group("/sessions/:sessionId")
	session.Use(holder)
	{
		session.GET("/quote", controller.GetQuote)          // GET /api/v1/sessions/:sessionId/quote
		session.POST("/bookings", controller.SubmitBooking) // POST /api/v1/sessions/:sessionId/bookings
	}

	bookings := rg.Group("/bookings")
	bookings.Use(holder)
	{
		bookings.GET("", controller.ListBookings)              // GET /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)            // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}
}
