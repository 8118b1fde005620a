package slotRepo

import (
	"context"
	"errors"
	"time"

	"slotwise/models"
)

// ErrTransitionConflict is returned when a conditional status transition
// matched no document: either the slot changed status under the caller or
// its version moved. The caller re-reads and decides what that means.
var ErrTransitionConflict = errors.New("slot transition conflict")

// ErrNotFound is returned when a slot id does not exist.
var ErrNotFound = errors.New("slot not found")

// StatusChange describes the target state of a slot transition. Linkage
// fields not relevant to the target status are cleared by the repository.
type StatusChange struct {
	Status        models.SlotStatus
	BookingID     string
	HoldExpiresAt *time.Time
	BlockReason   string
}

// Repository is the slot store. The availability engine is its only writer.
type Repository interface {
	Insert(ctx context.Context, slot models.Slot) error
	InsertMany(ctx context.Context, slots []models.Slot) error
	GetByID(ctx context.Context, id string) (*models.Slot, error)
	DeleteByID(ctx context.Context, id string) error

	// FindOverlapping returns all slots for (providerID, staffID, date)
	// whose half-open interval intersects [start, end), optionally
	// excluding one slot id.
	FindOverlapping(ctx context.Context, providerID, staffID, date string, start, end int, excludeID string) ([]models.Slot, error)

	// ListByDate returns all slots for a provider on a date, every staff
	// member included.
	ListByDate(ctx context.Context, providerID, date string) ([]models.Slot, error)

	// FindExpiredHolds returns tentative holds whose expiry is at or before
	// now.
	FindExpiredHolds(ctx context.Context, now time.Time) ([]models.Slot, error)

	// Transition atomically moves a slot from one of the expected statuses
	// (at the expected version) to the given change. Returns
	// ErrTransitionConflict when no document matched.
	Transition(ctx context.Context, slotID string, expectVersion int, from []models.SlotStatus, change StatusChange) error
}
