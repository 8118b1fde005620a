package handlers

import (
	"errors"
	"net/http"

	bookingRepo "slotwise/database/repository/booking"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
)

// writeDomainError translates the typed error taxonomy into HTTP responses:
// slot conflicts read as "pick another time", policy violations carry their
// reason code, incomplete payment prompts for payment.
func writeDomainError(c *gin.Context, err error) {
	var templateErr *models.InvalidTemplateError
	var unavailableErr *models.SlotUnavailableError
	var stateErr *models.InvalidStateError
	var policyErr *models.PolicyViolationError
	var paymentErr *models.PaymentIncompleteError

	switch {
	case errors.As(err, &templateErr):
		utils.JSONError(c, http.StatusBadRequest, "invalid business hours template", templateErr.Message)
	case errors.As(err, &unavailableErr):
		utils.JSONError(c, http.StatusConflict, "this time is no longer available, please choose another", unavailableErr.Message)
	case errors.As(err, &stateErr):
		utils.JSONError(c, http.StatusConflict, "operation not allowed in the current state", stateErr.Error())
	case errors.As(err, &policyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "booking policy violation",
			"code":    policyErr.Code,
			"details": policyErr.Message,
		})
	case errors.As(err, &paymentErr):
		utils.JSONError(c, http.StatusPaymentRequired, "payment required before completion", paymentErr.Error())
	case errors.Is(err, slotRepo.ErrNotFound), errors.Is(err, bookingRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
