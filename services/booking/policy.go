package booking

import (
	"fmt"
	"time"

	"slotwise/models"
)

// Action is a lifecycle operation the policy evaluator can rule on.
type Action string

const (
	ActionCreate     Action = "create"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
)

// Decision is the evaluator's verdict. A denied decision carries the reason
// code for the caller's PolicyViolationError; an allowed cancellation may
// still carry a fee percentage.
type Decision struct {
	Allowed       bool
	ReasonCode    string
	Message       string
	FeePercentage float64
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(code, message string) Decision {
	return Decision{ReasonCode: code, Message: message}
}

// Evaluate rules on an action against a policy snapshot at a given clock
// time. It is pure: same inputs, same decision.
func Evaluate(p models.PolicySnapshot, now, bookingStart time.Time, action Action) Decision {
	switch action {
	case ActionCreate:
		return EvaluateAdvanceWindow(p, now, bookingStart)
	case ActionCancel:
		return EvaluateCancellation(p, now, bookingStart, false)
	case ActionReschedule:
		return EvaluateReschedule(p, now, bookingStart)
	default:
		return deny("unknown_action", fmt.Sprintf("no rule for action %q", action))
	}
}

// EvaluateAdvanceWindow checks that a requested start respects the
// minimum-notice and maximum-lookahead rules.
func EvaluateAdvanceWindow(p models.PolicySnapshot, now, bookingStart time.Time) Decision {
	if p.MinAdvanceBookingHours > 0 {
		earliest := now.Add(time.Duration(p.MinAdvanceBookingHours) * time.Hour)
		if bookingStart.Before(earliest) {
			return deny(models.PolicyReasonAdvanceTooSoon,
				fmt.Sprintf("bookings require at least %dh notice", p.MinAdvanceBookingHours))
		}
	}
	if p.MaxAdvanceBookingDays > 0 {
		latest := now.AddDate(0, 0, p.MaxAdvanceBookingDays)
		if bookingStart.After(latest) {
			return deny(models.PolicyReasonAdvanceTooFar,
				fmt.Sprintf("bookings open at most %d days ahead", p.MaxAdvanceBookingDays))
		}
	}
	return allow()
}

// EvaluateCancellation always permits cancelling but attaches the full
// cancellation fee when the customer cancels inside the window. Provider
// cancellations never carry a fee.
func EvaluateCancellation(p models.PolicySnapshot, now, bookingStart time.Time, byProvider bool) Decision {
	d := allow()
	if byProvider {
		return d
	}
	windowOpens := bookingStart.Add(-time.Duration(p.CancellationWindowHours) * time.Hour)
	if !now.Before(windowOpens) {
		d.FeePercentage = p.CancellationFeePercentage
	}
	return d
}

// EvaluateReschedule checks that rescheduling is enabled and that the
// original start is still outside the reschedule window.
func EvaluateReschedule(p models.PolicySnapshot, now, bookingStart time.Time) Decision {
	if !p.AllowRescheduling {
		return deny(models.PolicyReasonRescheduleDisabled, "this service does not allow rescheduling")
	}
	windowOpens := bookingStart.Add(-time.Duration(p.RescheduleWindowHours) * time.Hour)
	if !now.Before(windowOpens) {
		return deny(models.PolicyReasonRescheduleTooLate,
			fmt.Sprintf("rescheduling closes %dh before the appointment", p.RescheduleWindowHours))
	}
	return allow()
}

// DepositDue returns the deposit amount a policy demands for a total price,
// zero when no deposit is required.
func DepositDue(p models.PolicySnapshot, totalPrice float64) float64 {
	if !p.RequireDeposit {
		return 0
	}
	return totalPrice * p.DepositPercentage / 100
}

// CancellationFee converts a fee percentage into an amount.
func CancellationFee(totalPrice, feePercentage float64) float64 {
	return totalPrice * feePercentage / 100
}
