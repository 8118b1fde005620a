package handlers

import (
	"net/http"

	"slotwise/models"
	"slotwise/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle to the calling layer.
type BookingHandler struct {
	Service *booking.Service
	Logger  *zap.Logger
}

func NewBookingHandler(service *booking.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// CreateRequestHandler opens a booking request against a held interval.
func (h *BookingHandler) CreateRequestHandler(c *gin.Context) {
	var input struct {
		CustomerID    string                `json:"customerId" binding:"required"`
		ProviderID    string                `json:"providerId" binding:"required"`
		ServiceID     string                `json:"serviceId" binding:"required"`
		StaffID       string                `json:"staffId"`
		Date          string                `json:"date" binding:"required"`
		Start         int                   `json:"start"` // minutes from midnight; 0 is a valid midnight start
		DurationMin   int                   `json:"durationMin" binding:"required"`
		Price         float64               `json:"price" binding:"required"`
		Currency      string                `json:"currency" binding:"required"`
		Policy        models.PolicySnapshot `json:"policy"`
		CustomerNotes string                `json:"customerNotes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Start < 0 || input.Start >= 24*60 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be minutes from midnight in [0, 1440)"})
		return
	}

	b, err := h.Service.CreateRequest(c.Request.Context(), booking.CreateRequestInput{
		CustomerID:    input.CustomerID,
		ProviderID:    input.ProviderID,
		ServiceID:     input.ServiceID,
		StaffID:       input.StaffID,
		Date:          input.Date,
		Start:         input.Start,
		DurationMin:   input.DurationMin,
		Price:         input.Price,
		Currency:      input.Currency,
		Policy:        input.Policy,
		CustomerNotes: input.CustomerNotes,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// ConfirmHandler moves a requested booking to confirmed and books its slot.
func (h *BookingHandler) ConfirmHandler(c *gin.Context) {
	b, err := h.Service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// AuthorizePaymentHandler obtains a gateway reference for a deposit or the
// outstanding balance.
func (h *BookingHandler) AuthorizePaymentHandler(c *gin.Context) {
	var input struct {
		Kind string `json:"kind" binding:"required"` // "deposit" or "full"
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Service.AuthorizePayment(c.Request.Context(), c.Param("id"), input.Kind)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": res})
}

// ProcessDepositHandler captures and records a deposit payment.
func (h *BookingHandler) ProcessDepositHandler(c *gin.Context) {
	var input struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.ProcessDepositPayment(c.Request.Context(), c.Param("id"), input.Reference)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ProcessFullPaymentHandler captures and records the outstanding balance.
func (h *BookingHandler) ProcessFullPaymentHandler(c *gin.Context) {
	var input struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.ProcessFullPayment(c.Request.Context(), c.Param("id"), input.Reference)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// CompleteHandler marks a confirmed, fully-paid booking as delivered.
func (h *BookingHandler) CompleteHandler(c *gin.Context) {
	var input struct {
		StaffNotes string `json:"staffNotes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.Complete(c.Request.Context(), c.Param("id"), input.StaffNotes)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// CancelHandler cancels a booking, computing any cancellation fee.
func (h *BookingHandler) CancelHandler(c *gin.Context) {
	var input struct {
		Reason     string `json:"reason"`
		ByProvider bool   `json:"byProvider"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), input.Reason, input.ByProvider)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "cancellationFee": b.Ledger.CancellationFee})
}

// NoShowHandler records that the customer never arrived.
func (h *BookingHandler) NoShowHandler(c *gin.Context) {
	var input struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.MarkAsNoShow(c.Request.Context(), c.Param("id"), input.Notes)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// RescheduleHandler moves a confirmed booking to a new time, returning the
// replacement booking.
func (h *BookingHandler) RescheduleHandler(c *gin.Context) {
	var input struct {
		Date  string `json:"date" binding:"required"`
		Start int    `json:"start"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Start < 0 || input.Start >= 24*60 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be minutes from midnight in [0, 1440)"})
		return
	}

	replacement, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), input.Date, input.Start)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": replacement})
}

// RefundHandler returns money to the customer on a cancelled or no-show
// booking.
func (h *BookingHandler) RefundHandler(c *gin.Context) {
	var input struct {
		Amount float64 `json:"amount" binding:"required"`
		Reason string  `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.ProcessRefund(c.Request.Context(), c.Param("id"), input.Amount, input.Reason)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// GetBookingHandler fetches one booking.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ListCustomerBookingsHandler lists a customer's bookings, newest first.
func (h *BookingHandler) ListCustomerBookingsHandler(c *gin.Context) {
	bookings, err := h.Service.ListCustomerBookings(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListProviderBookingsHandler lists a provider's bookings, optionally for
// one date.
func (h *BookingHandler) ListProviderBookingsHandler(c *gin.Context) {
	bookings, err := h.Service.ListProviderBookings(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
