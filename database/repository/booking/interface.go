package bookingRepo

import (
	"context"
	"errors"

	"slotwise/models"
)

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("booking not found")

// ErrVersionConflict is returned when an update lost a concurrent write
// race; the caller should re-read and retry the whole operation.
var ErrVersionConflict = errors.New("booking version conflict")

// Repository is the booking store. Bookings are never deleted; terminal
// states are retained for history and reporting.
type Repository interface {
	Insert(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// Update persists the booking with a compare-and-swap on Version; on
	// success the in-memory Version is advanced.
	Update(ctx context.Context, booking *models.Booking) error

	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListByProvider(ctx context.Context, providerID, date string) ([]models.Booking, error)

	// WithTransaction runs fn inside one unit of work. Slot and booking
	// mutations issued with the callback's context commit or roll back
	// together.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
