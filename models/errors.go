package models

import "fmt"

// Typed errors returned by the availability engine and the booking state
// machine. Callers are expected to match with errors.As and translate into
// user-facing responses.

// InvalidTemplateError reports malformed business-hours input.
type InvalidTemplateError struct {
	Message string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid business hours template: %s", e.Message)
}

// SlotUnavailableError reports an overlap with an already-claimed interval,
// or a lost race for the same slot. Callers should treat it as
// retryable-with-a-different-slot.
type SlotUnavailableError struct {
	ProviderID string
	StaffID    string
	Date       string
	Start      int
	End        int
	Message    string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s %s-%s unavailable for provider %s: %s",
		e.Date, FormatMinutes(e.Start), FormatMinutes(e.End), e.ProviderID, e.Message)
}

// InvalidStateError reports an illegal slot or booking transition attempt.
type InvalidStateError struct {
	Entity    string // "slot" or "booking"
	ID        string
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from state %q", e.Entity, e.ID, e.Attempted, e.Current)
}

// Reason codes carried by PolicyViolationError.
const (
	PolicyReasonAdvanceTooSoon     = "advance_too_soon"
	PolicyReasonAdvanceTooFar      = "advance_too_far"
	PolicyReasonDepositRequired    = "deposit_required"
	PolicyReasonRescheduleDisabled = "reschedule_disabled"
	PolicyReasonRescheduleTooLate  = "reschedule_too_late"
	PolicyReasonRefundNotPermitted = "refund_not_permitted"
)

// PolicyViolationError reports a broken advance-booking, cancellation-window
// or reschedule-window rule. Code is one of the PolicyReason constants.
type PolicyViolationError struct {
	Code    string
	Message string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation (%s): %s", e.Code, e.Message)
}

// PaymentIncompleteError reports completion attempted without full
// settlement.
type PaymentIncompleteError struct {
	BookingID string
	Paid      float64
	Total     float64
}

func (e *PaymentIncompleteError) Error() string {
	return fmt.Sprintf("booking %s is not fully paid: %.2f of %.2f", e.BookingID, e.Paid, e.Total)
}
