package routes

import (
	"slotwise/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all endpoints for the availability engine and the
// booking lifecycle.
func RegisterRoutes(r *gin.Engine, ah *handlers.AvailabilityHandler, bh *handlers.BookingHandler) {
	r.Use(cors.Default())

	providers := r.Group("/api/providers")
	{
		providers.POST("/:id/slots/generate", ah.GenerateSlotsHandler)
		providers.GET("/:id/availability", ah.ListDayAvailabilityHandler)
		providers.POST("/:id/holds", ah.PlaceHoldHandler)
		providers.GET("/:id/bookings", bh.ListProviderBookingsHandler)
	}

	slots := r.Group("/api/slots")
	{
		slots.POST("/:slotId/release", ah.ReleaseSlotHandler)
		slots.POST("/:slotId/block", ah.BlockSlotHandler)
	}

	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", bh.CreateRequestHandler)
		bookings.GET("/:id", bh.GetBookingHandler)
		bookings.POST("/:id/confirm", bh.ConfirmHandler)
		bookings.POST("/:id/payments/authorize", bh.AuthorizePaymentHandler)
		bookings.POST("/:id/payments/deposit", bh.ProcessDepositHandler)
		bookings.POST("/:id/payments/full", bh.ProcessFullPaymentHandler)
		bookings.POST("/:id/complete", bh.CompleteHandler)
		bookings.POST("/:id/cancel", bh.CancelHandler)
		bookings.POST("/:id/no-show", bh.NoShowHandler)
		bookings.POST("/:id/reschedule", bh.RescheduleHandler)
		bookings.POST("/:id/refund", bh.RefundHandler)
	}

	customers := r.Group("/api/customers")
	{
		customers.GET("/:customerId/bookings", bh.ListCustomerBookingsHandler)
	}
}
