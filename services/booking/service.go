package booking

import (
	"context"
	"fmt"

	bookingRepo "slotwise/database/repository/booking"
	"slotwise/models"
	"slotwise/services/availability"
	"slotwise/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the booking lifecycle state machine. Every transition is
// validated against the booking's policy snapshot before any state moves,
// and transitions that touch the slot run inside one unit of work with the
// availability engine's mutation.
type Service struct {
	Bookings bookingRepo.Repository
	Engine   *availability.Engine
	Gateway  PaymentGateway
	Clock    utils.Clock
	Logger   *zap.Logger
}

// CreateRequestInput carries everything needed to open a booking request.
// Policy is snapshotted onto the booking verbatim and never changes again.
type CreateRequestInput struct {
	CustomerID    string
	ProviderID    string
	ServiceID     string
	StaffID       string
	Date          string // "YYYY-MM-DD"
	Start         int    // minutes from midnight
	DurationMin   int
	Price         float64
	Currency      string
	Policy        models.PolicySnapshot
	CustomerNotes string
}

// CreateRequest places a tentative hold on the requested interval and
// constructs a booking in Requested state against it.
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.Booking, error) {
	if in.DurationMin <= 0 {
		return nil, fmt.Errorf("invalid duration %d", in.DurationMin)
	}

	startAt, err := models.MinutesOnDate(in.Date, in.Start)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if d := EvaluateAdvanceWindow(in.Policy, now, startAt); !d.Allowed {
		return nil, &models.PolicyViolationError{Code: d.ReasonCode, Message: d.Message}
	}

	end := in.Start + in.DurationMin
	hold, err := s.Engine.PlaceTentativeHold(ctx, in.ProviderID, in.StaffID, in.Date, in.Start, end)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:            uuid.New().String(),
		CustomerID:    in.CustomerID,
		ProviderID:    in.ProviderID,
		ServiceID:     in.ServiceID,
		StaffID:       in.StaffID,
		SlotID:        hold.ID,
		Date:          in.Date,
		Start:         in.Start,
		End:           end,
		Status:        models.BookingRequested,
		Policy:        in.Policy,
		Ledger:        models.PaymentLedger{TotalPrice: in.Price, Currency: in.Currency},
		CustomerNotes: in.CustomerNotes,
		RequestedAt:   now,
	}

	if err := s.Bookings.Insert(ctx, booking); err != nil {
		// Give the interval back rather than waiting for the hold to expire.
		if relErr := s.Engine.ReleaseSlot(ctx, hold.ID, availability.ReleaseCancelled); relErr != nil {
			s.Logger.Error("failed to release hold after insert failure",
				zap.String("slotId", hold.ID), zap.Error(relErr))
		}
		return nil, err
	}

	s.Logger.Info("booking requested",
		zap.String("bookingId", booking.ID), zap.String("customerId", in.CustomerID),
		zap.String("date", in.Date), zap.Int("start", in.Start))
	return booking, nil
}

// Confirm moves a Requested booking to Confirmed and books its slot. When
// the policy requires a deposit, a successful deposit payment must already
// be on the ledger.
func (s *Service) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingRequested {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "confirm"}
	}
	if booking.Policy.RequireDeposit && booking.Ledger.DepositAmount <= 0 {
		return nil, &models.PolicyViolationError{
			Code:    models.PolicyReasonDepositRequired,
			Message: "a deposit payment is required before confirmation",
		}
	}

	now := s.Clock.Now()
	err = s.Bookings.WithTransaction(ctx, func(txCtx context.Context) error {
		booking.Status = models.BookingConfirmed
		booking.ConfirmedAt = &now
		if err := s.Bookings.Update(txCtx, booking); err != nil {
			return err
		}
		return s.Engine.MarkBooked(txCtx, booking.SlotID, booking.ID)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking confirmed", zap.String("bookingId", bookingID))
	return booking, nil
}

// AuthorizePayment asks the gateway for a payment reference covering either
// the deposit or the outstanding balance. The ledger is untouched until the
// payment is processed.
func (s *Service) AuthorizePayment(ctx context.Context, bookingID, kind string) (*models.ChargeResult, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.Terminal() {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "authorize payment"}
	}

	var amount float64
	switch kind {
	case "deposit":
		amount = DepositDue(booking.Policy, booking.Ledger.TotalPrice)
		if amount <= 0 {
			return nil, fmt.Errorf("booking %s requires no deposit", bookingID)
		}
	case "full":
		amount = booking.Ledger.TotalPrice - booking.Ledger.PaidAmount
		if amount <= 0 {
			return nil, fmt.Errorf("booking %s is already settled", bookingID)
		}
	default:
		return nil, fmt.Errorf("unknown payment kind %q", kind)
	}

	return s.Gateway.Authorize(ctx, models.ChargeRequest{
		CustomerID:  booking.CustomerID,
		Amount:      amount,
		Currency:    booking.Ledger.Currency,
		Description: fmt.Sprintf("%s payment for booking %s", kind, bookingID),
		Metadata:    map[string]string{"bookingId": bookingID, "kind": kind},
	})
}

// ProcessDepositPayment captures an authorized deposit and records it on the
// ledger. It never changes booking status.
func (s *Service) ProcessDepositPayment(ctx context.Context, bookingID, reference string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.Terminal() {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "pay deposit"}
	}
	if booking.Ledger.DepositAmount > 0 {
		return nil, fmt.Errorf("booking %s already has a deposit on record", bookingID)
	}

	res, err := s.Gateway.Capture(ctx, reference)
	if err != nil {
		return nil, err
	}

	amount := res.Amount
	if amount <= 0 {
		amount = DepositDue(booking.Policy, booking.Ledger.TotalPrice)
	}

	booking.Ledger.DepositAmount = amount
	booking.Ledger.PaidAmount += amount
	booking.Ledger.References = append(booking.Ledger.References, models.PaymentReference{
		Kind: "deposit", Reference: res.Reference, Amount: amount, At: s.Clock.Now(),
	})
	if err := s.Bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.Logger.Info("deposit recorded",
		zap.String("bookingId", bookingID), zap.Float64("amount", amount))
	return booking, nil
}

// ProcessFullPayment captures the outstanding balance and records it. It
// never changes booking status.
func (s *Service) ProcessFullPayment(ctx context.Context, bookingID, reference string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status.Terminal() {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "pay balance"}
	}

	res, err := s.Gateway.Capture(ctx, reference)
	if err != nil {
		return nil, err
	}

	amount := res.Amount
	if amount <= 0 {
		amount = booking.Ledger.TotalPrice - booking.Ledger.PaidAmount
	}

	booking.Ledger.PaidAmount += amount
	booking.Ledger.References = append(booking.Ledger.References, models.PaymentReference{
		Kind: "full", Reference: res.Reference, Amount: amount, At: s.Clock.Now(),
	})
	if err := s.Bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.Logger.Info("payment recorded",
		zap.String("bookingId", bookingID), zap.Float64("amount", amount))
	return booking, nil
}

// Complete marks a Confirmed booking as delivered. The service cannot be
// marked delivered without full settlement.
func (s *Service) Complete(ctx context.Context, bookingID, staffNotes string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingConfirmed {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "complete"}
	}
	if !booking.Ledger.FullyPaid() {
		return nil, &models.PaymentIncompleteError{
			BookingID: bookingID,
			Paid:      booking.Ledger.PaidAmount,
			Total:     booking.Ledger.TotalPrice,
		}
	}

	now := s.Clock.Now()
	booking.Status = models.BookingCompleted
	booking.CompletedAt = &now
	if staffNotes != "" {
		booking.StaffNotes = staffNotes
	}
	if err := s.Bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.Logger.Info("booking completed", zap.String("bookingId", bookingID))
	return booking, nil
}

// Cancel moves a Requested or Confirmed booking to Cancelled and releases
// its slot. Customer cancellations inside the cancellation window accrue the
// policy's fee; provider cancellations never do.
func (s *Service) Cancel(ctx context.Context, bookingID, reason string, byProvider bool) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingRequested && booking.Status != models.BookingConfirmed {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "cancel"}
	}

	startAt, err := booking.StartTime()
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	decision := EvaluateCancellation(booking.Policy, now, startAt, byProvider)
	fee := CancellationFee(booking.Ledger.TotalPrice, decision.FeePercentage)

	err = s.Bookings.WithTransaction(ctx, func(txCtx context.Context) error {
		booking.Status = models.BookingCancelled
		booking.CancelledAt = &now
		booking.CancellationReason = reason
		booking.CancelledByProvider = byProvider
		booking.Ledger.CancellationFee = fee
		if err := s.Bookings.Update(txCtx, booking); err != nil {
			return err
		}
		return s.Engine.ReleaseSlot(txCtx, booking.SlotID, availability.ReleaseCancelled)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking cancelled",
		zap.String("bookingId", bookingID), zap.Bool("byProvider", byProvider),
		zap.Float64("fee", fee))
	return booking, nil
}

// MarkAsNoShow records that the customer never arrived. Only permitted on a
// Confirmed booking after its scheduled start; funds on the ledger are
// retained as the no-show penalty.
func (s *Service) MarkAsNoShow(ctx context.Context, bookingID, notes string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingConfirmed {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "mark no-show"}
	}

	startAt, err := booking.StartTime()
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	if now.Before(startAt) {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "mark no-show before start"}
	}

	err = s.Bookings.WithTransaction(ctx, func(txCtx context.Context) error {
		booking.Status = models.BookingNoShow
		booking.NoShowAt = &now
		if notes != "" {
			booking.StaffNotes = notes
		}
		if err := s.Bookings.Update(txCtx, booking); err != nil {
			return err
		}
		return s.Engine.ReleaseSlot(txCtx, booking.SlotID, availability.ReleaseReviewBlock)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("booking marked no-show", zap.String("bookingId", bookingID))
	return booking, nil
}

// Reschedule spawns a new Requested booking at the new time, links both
// records, moves the original to Rescheduled, and swaps the slots: the
// original is released, the new interval held. The new booking inherits the
// original policy snapshot.
func (s *Service) Reschedule(ctx context.Context, bookingID, newDate string, newStart int) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingConfirmed {
		return nil, &models.InvalidStateError{Entity: "booking", ID: bookingID, Current: string(booking.Status), Attempted: "reschedule"}
	}

	startAt, err := booking.StartTime()
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	if d := EvaluateReschedule(booking.Policy, now, startAt); !d.Allowed {
		return nil, &models.PolicyViolationError{Code: d.ReasonCode, Message: d.Message}
	}

	newStartAt, err := models.MinutesOnDate(newDate, newStart)
	if err != nil {
		return nil, err
	}
	if d := EvaluateAdvanceWindow(booking.Policy, now, newStartAt); !d.Allowed {
		return nil, &models.PolicyViolationError{Code: d.ReasonCode, Message: d.Message}
	}

	duration := booking.End - booking.Start
	newEnd := newStart + duration

	// Hold the new interval before entering the unit of work so a slow
	// gateway or transaction never sits on an exclusive slot claim.
	hold, err := s.Engine.PlaceTentativeHold(ctx, booking.ProviderID, booking.StaffID, newDate, newStart, newEnd)
	if err != nil {
		return nil, err
	}

	replacement := &models.Booking{
		ID:                uuid.New().String(),
		CustomerID:        booking.CustomerID,
		ProviderID:        booking.ProviderID,
		ServiceID:         booking.ServiceID,
		StaffID:           booking.StaffID,
		SlotID:            hold.ID,
		Date:              newDate,
		Start:             newStart,
		End:               newEnd,
		Status:            models.BookingRequested,
		Policy:            booking.Policy,
		Ledger:            models.PaymentLedger{TotalPrice: booking.Ledger.TotalPrice, Currency: booking.Ledger.Currency},
		CustomerNotes:     booking.CustomerNotes,
		RequestedAt:       now,
		PreviousBookingID: booking.ID,
	}

	err = s.Bookings.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Bookings.Insert(txCtx, replacement); err != nil {
			return err
		}
		booking.Status = models.BookingRescheduled
		booking.RescheduledAt = &now
		booking.RescheduledToBookingID = replacement.ID
		if err := s.Bookings.Update(txCtx, booking); err != nil {
			return err
		}
		return s.Engine.ReleaseSlot(txCtx, booking.SlotID, availability.ReleaseRescheduled)
	})
	if err != nil {
		if relErr := s.Engine.ReleaseSlot(ctx, hold.ID, availability.ReleaseCancelled); relErr != nil {
			s.Logger.Error("failed to release replacement hold after reschedule failure",
				zap.String("slotId", hold.ID), zap.Error(relErr))
		}
		return nil, err
	}

	s.Logger.Info("booking rescheduled",
		zap.String("bookingId", bookingID), zap.String("newBookingId", replacement.ID),
		zap.String("newDate", newDate), zap.Int("newStart", newStart))
	return replacement, nil
}

// ProcessRefund returns money to the customer. Permitted only on Cancelled
// and NoShow bookings — the deliberate asymmetry: provider-initiated
// cancellations typically refund in full, no-shows retain funds unless
// explicitly refunded here.
func (s *Service) ProcessRefund(ctx context.Context, bookingID string, amount float64, reason string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingCancelled && booking.Status != models.BookingNoShow {
		return nil, &models.PolicyViolationError{
			Code:    models.PolicyReasonRefundNotPermitted,
			Message: fmt.Sprintf("refunds are not permitted while the booking is %s", booking.Status),
		}
	}

	refundable := booking.Ledger.PaidAmount - booking.Ledger.RefundedAmount
	if amount <= 0 || amount > refundable+0.005 {
		return nil, fmt.Errorf("refund of %.2f exceeds refundable balance %.2f", amount, refundable)
	}

	reference := lastChargeReference(booking.Ledger)
	if reference == "" {
		return nil, fmt.Errorf("booking %s has no charge to refund against", bookingID)
	}

	res, err := s.Gateway.Refund(ctx, reference, amount)
	if err != nil {
		return nil, err
	}

	booking.Ledger.RefundedAmount += amount
	booking.Ledger.References = append(booking.Ledger.References, models.PaymentReference{
		Kind: "refund", Reference: res.Reference, Amount: amount, At: s.Clock.Now(),
	})
	if err := s.Bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.Logger.Info("refund recorded",
		zap.String("bookingId", bookingID), zap.Float64("amount", amount),
		zap.String("reason", reason))
	return booking, nil
}

// GetBooking fetches one booking by id.
func (s *Service) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Bookings.GetByID(ctx, bookingID)
}

// ListCustomerBookings returns a customer's bookings, newest first.
func (s *Service) ListCustomerBookings(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.Bookings.ListByCustomer(ctx, customerID)
}

// ListProviderBookings returns a provider's bookings, optionally narrowed to
// one date.
func (s *Service) ListProviderBookings(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	return s.Bookings.ListByProvider(ctx, providerID, date)
}

func lastChargeReference(l models.PaymentLedger) string {
	for i := len(l.References) - 1; i >= 0; i-- {
		if l.References[i].Kind != "refund" {
			return l.References[i].Reference
		}
	}
	return ""
}
