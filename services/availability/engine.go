package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Release reasons accepted by ReleaseSlot. Reasons other than the block
// reasons return the slot to Available.
const (
	ReleaseCancelled   = "cancelled"
	ReleaseExpiredHold = "hold_expired"
	ReleaseRescheduled = "rescheduled"
	ReleaseAdminBlock  = "admin_block"
	ReleaseReviewBlock = "pending_review"
)

// Engine owns the slot records for all providers. It is the only writer of
// slot status, hold expiry and booking linkage, and arbitrates concurrent
// claims on the same interval through compare-and-swap transitions in the
// slot store.
type Engine struct {
	Slots       slotRepo.Repository
	Clock       utils.Clock
	Logger      *zap.Logger
	HoldTTL     time.Duration
	SlotMinutes int // default generation granularity
}

func NewEngine(slots slotRepo.Repository, clock utils.Clock, logger *zap.Logger, holdTTL time.Duration, slotMinutes int) *Engine {
	if holdTTL <= 0 {
		holdTTL = 10 * time.Minute
	}
	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	return &Engine{
		Slots:       slots,
		Clock:       clock,
		Logger:      logger,
		HoldTTL:     holdTTL,
		SlotMinutes: slotMinutes,
	}
}

// FindOverlapping returns every slot whose half-open interval intersects
// [start, end) for the given provider/staff/date, optionally excluding one
// slot id. Every write path verifies availability through this primitive
// before mutating state.
func (e *Engine) FindOverlapping(ctx context.Context, providerID, staffID, date string, start, end int, excludeID string) ([]models.Slot, error) {
	if start >= end {
		return nil, fmt.Errorf("invalid interval %s-%s", models.FormatMinutes(start), models.FormatMinutes(end))
	}
	return e.Slots.FindOverlapping(ctx, providerID, staffID, date, start, end, excludeID)
}

// PlaceTentativeHold gives a caller a short exclusive window on an interval
// while the customer completes payment or confirmation. The hold expires at
// now + TTL and is released by reconciliation if never confirmed.
func (e *Engine) PlaceTentativeHold(ctx context.Context, providerID, staffID, date string, start, end int) (*models.Slot, error) {
	overlapping, err := e.FindOverlapping(ctx, providerID, staffID, date, start, end, "")
	if err != nil {
		return nil, err
	}

	var exact *models.Slot
	for i := range overlapping {
		s := overlapping[i]
		if s.Blocking() {
			return nil, &models.SlotUnavailableError{
				ProviderID: providerID, StaffID: staffID, Date: date, Start: start, End: end,
				Message: fmt.Sprintf("interval %s-%s is already claimed", models.FormatMinutes(s.Start), models.FormatMinutes(s.End)),
			}
		}
		if s.Status == models.SlotAvailable && s.Start == start && s.End == end {
			exact = &overlapping[i]
		}
	}

	expiry := e.Clock.Now().Add(e.HoldTTL)

	if exact != nil {
		err := e.Slots.Transition(ctx, exact.ID, exact.Version, []models.SlotStatus{models.SlotAvailable}, slotRepo.StatusChange{
			Status:        models.SlotTentativeHold,
			HoldExpiresAt: &expiry,
		})
		if errors.Is(err, slotRepo.ErrTransitionConflict) {
			return nil, &models.SlotUnavailableError{
				ProviderID: providerID, StaffID: staffID, Date: date, Start: start, End: end,
				Message: "slot was claimed by another request",
			}
		}
		if err != nil {
			return nil, err
		}
		held := *exact
		held.Status = models.SlotTentativeHold
		held.HoldExpiresAt = &expiry
		held.Version = exact.Version + 1
		e.Logger.Debug("placed tentative hold",
			zap.String("slotId", held.ID), zap.String("providerId", providerID),
			zap.Time("holdExpiresAt", expiry))
		return &held, nil
	}

	if len(overlapping) > 0 {
		// Partial coverage by open slots: claiming would leave fragments
		// that violate the per-day overlap invariant.
		return nil, &models.SlotUnavailableError{
			ProviderID: providerID, StaffID: staffID, Date: date, Start: start, End: end,
			Message: "requested interval does not align with an open slot",
		}
	}

	// No materialized slot covers the interval; create the hold directly.
	now := e.Clock.Now()
	hold := models.Slot{
		ID:            uuid.New().String(),
		ProviderID:    providerID,
		StaffID:       staffID,
		Date:          date,
		Start:         start,
		End:           end,
		Status:        models.SlotTentativeHold,
		HoldExpiresAt: &expiry,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.Slots.Insert(ctx, hold); err != nil {
		return nil, err
	}

	// Insert-then-verify: two racing inserts can both land, so the loser
	// (younger record, id as tiebreak) withdraws.
	rivals, err := e.Slots.FindOverlapping(ctx, providerID, staffID, date, start, end, hold.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range rivals {
		if !r.Blocking() {
			continue
		}
		if r.CreatedAt.Before(hold.CreatedAt) || (r.CreatedAt.Equal(hold.CreatedAt) && r.ID < hold.ID) {
			if delErr := e.Slots.DeleteByID(ctx, hold.ID); delErr != nil {
				e.Logger.Error("failed to withdraw losing hold",
					zap.String("slotId", hold.ID), zap.Error(delErr))
			}
			return nil, &models.SlotUnavailableError{
				ProviderID: providerID, StaffID: staffID, Date: date, Start: start, End: end,
				Message: "slot was claimed by another request",
			}
		}
	}

	e.Logger.Debug("placed tentative hold",
		zap.String("slotId", hold.ID), zap.String("providerId", providerID),
		zap.Time("holdExpiresAt", expiry))
	return &hold, nil
}

// MarkBooked transitions a slot from Available or TentativeHold to Booked.
// This is the double-booking guard: a slot already booked by another booking
// refuses the transition.
func (e *Engine) MarkBooked(ctx context.Context, slotID, bookingID string) error {
	slot, err := e.Slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.Status == models.SlotBooked && slot.BookingID == bookingID {
		return nil
	}

	err = e.Slots.Transition(ctx, slotID, slot.Version,
		[]models.SlotStatus{models.SlotAvailable, models.SlotTentativeHold},
		slotRepo.StatusChange{Status: models.SlotBooked, BookingID: bookingID})
	if errors.Is(err, slotRepo.ErrTransitionConflict) {
		current, readErr := e.Slots.GetByID(ctx, slotID)
		state := "unknown"
		if readErr == nil {
			state = string(current.Status)
		}
		return &models.InvalidStateError{Entity: "slot", ID: slotID, Current: state, Attempted: "mark booked"}
	}
	if err != nil {
		return err
	}

	e.Logger.Info("slot booked",
		zap.String("slotId", slotID), zap.String("bookingId", bookingID))
	return nil
}

// ReleaseSlot returns a Booked or TentativeHold slot to Available, or to
// Blocked when the reason is an administrative block. Releasing an
// already-Available slot is a no-op.
func (e *Engine) ReleaseSlot(ctx context.Context, slotID, reason string) error {
	slot, err := e.Slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.Status == models.SlotAvailable {
		return nil
	}

	change := slotRepo.StatusChange{Status: models.SlotAvailable}
	if reason == ReleaseAdminBlock || reason == ReleaseReviewBlock {
		change = slotRepo.StatusChange{Status: models.SlotBlocked, BlockReason: reason}
	}

	err = e.Slots.Transition(ctx, slotID, slot.Version,
		[]models.SlotStatus{models.SlotBooked, models.SlotTentativeHold, models.SlotBlocked},
		change)
	if errors.Is(err, slotRepo.ErrTransitionConflict) {
		current, readErr := e.Slots.GetByID(ctx, slotID)
		if readErr == nil && current.Status == models.SlotAvailable {
			return nil
		}
		state := "unknown"
		if readErr == nil {
			state = string(current.Status)
		}
		return &models.InvalidStateError{Entity: "slot", ID: slotID, Current: state, Attempted: "release"}
	}
	if err != nil {
		return err
	}

	e.Logger.Info("slot released",
		zap.String("slotId", slotID), zap.String("reason", reason),
		zap.String("newStatus", string(change.Status)))
	return nil
}

// BlockSlot takes an Available slot out of circulation with a reason.
func (e *Engine) BlockSlot(ctx context.Context, slotID, reason string) error {
	slot, err := e.Slots.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if reason == "" {
		reason = ReleaseAdminBlock
	}

	err = e.Slots.Transition(ctx, slotID, slot.Version,
		[]models.SlotStatus{models.SlotAvailable},
		slotRepo.StatusChange{Status: models.SlotBlocked, BlockReason: reason})
	if errors.Is(err, slotRepo.ErrTransitionConflict) {
		return &models.InvalidStateError{Entity: "slot", ID: slotID, Current: string(slot.Status), Attempted: "block"}
	}
	return err
}

// ReconcileExpiredHolds releases every tentative hold whose expiry is at or
// before now and returns the count released. It uses the same CAS discipline
// as live booking attempts, so a hold confirmed between scan and release
// loses the race safely; per-slot failures are logged and skipped so one
// stuck slot cannot starve the sweep.
func (e *Engine) ReconcileExpiredHolds(ctx context.Context, now time.Time) (int, error) {
	expired, err := e.Slots.FindExpiredHolds(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expired hold scan failed: %w", err)
	}

	released := 0
	for _, slot := range expired {
		err := e.Slots.Transition(ctx, slot.ID, slot.Version,
			[]models.SlotStatus{models.SlotTentativeHold},
			slotRepo.StatusChange{Status: models.SlotAvailable})
		if errors.Is(err, slotRepo.ErrTransitionConflict) {
			// Confirmed or released since the scan.
			e.Logger.Debug("skipping hold that moved since scan", zap.String("slotId", slot.ID))
			continue
		}
		if err != nil {
			e.Logger.Error("failed to release expired hold",
				zap.String("slotId", slot.ID), zap.Error(err))
			continue
		}
		released++
	}

	if released > 0 {
		e.Logger.Info("reconciled expired holds", zap.Int("released", released))
	}
	return released, nil
}
