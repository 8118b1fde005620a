package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingRepo "slotwise/database/repository/booking"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/models"
	"slotwise/services/availability"
	"slotwise/utils"

	"go.uber.org/zap"
)

// --- fakes -----------------------------------------------------------------

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *fakeBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := b
	return &copied, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[booking.ID]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if stored.Version != booking.Version {
		return bookingRepo.ErrVersionConflict
	}
	booking.Version++
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListByProvider(ctx context.Context, providerID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID && (date == "" || b.Date == date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]models.Slot
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: make(map[string]models.Slot)}
}

func (r *fakeSlotStore) Insert(ctx context.Context, slot models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = slot
	return nil
}

func (r *fakeSlotStore) InsertMany(ctx context.Context, slots []models.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range slots {
		r.slots[s.ID] = s
	}
	return nil
}

func (r *fakeSlotStore) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrNotFound
	}
	copied := s
	return &copied, nil
}

func (r *fakeSlotStore) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, id)
	return nil
}

func (r *fakeSlotStore) FindOverlapping(ctx context.Context, providerID, staffID, date string, start, end int, excludeID string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.slots {
		if s.ProviderID != providerID || s.StaffID != staffID || s.Date != date || s.ID == excludeID {
			continue
		}
		if s.Overlaps(start, end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSlotStore) ListByDate(ctx context.Context, providerID, date string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.slots {
		if s.ProviderID == providerID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSlotStore) FindExpiredHolds(ctx context.Context, now time.Time) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Slot
	for _, s := range r.slots {
		if s.Status == models.SlotTentativeHold && s.HoldExpiresAt != nil && !s.HoldExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSlotStore) Transition(ctx context.Context, slotID string, expectVersion int, from []models.SlotStatus, change slotRepo.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok || s.Version != expectVersion {
		return slotRepo.ErrTransitionConflict
	}
	matched := false
	for _, st := range from {
		if s.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return slotRepo.ErrTransitionConflict
	}
	s.Status = change.Status
	s.BookingID = change.BookingID
	s.HoldExpiresAt = change.HoldExpiresAt
	s.BlockReason = change.BlockReason
	s.Version++
	r.slots[slotID] = s
	return nil
}

type fakeGateway struct {
	mu         sync.Mutex
	captured   []string
	refunds    map[string]float64
	captureErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{refunds: make(map[string]float64)}
}

func (g *fakeGateway) Authorize(ctx context.Context, req models.ChargeRequest) (*models.ChargeResult, error) {
	return &models.ChargeResult{
		Reference: fmt.Sprintf("pi_fake_%s", req.Metadata["kind"]),
		Amount:    req.Amount,
		Currency:  req.Currency,
		Status:    "requires_capture",
	}, nil
}

func (g *fakeGateway) Capture(ctx context.Context, reference string) (*models.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	g.captured = append(g.captured, reference)
	return &models.ChargeResult{Reference: reference, Status: "succeeded"}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, reference string, amount float64) (*models.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds[reference] += amount
	return &models.RefundResult{Reference: "re_" + reference, Amount: amount, Status: "succeeded"}, nil
}

// --- fixtures --------------------------------------------------------------

var serviceNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service  *Service
	bookings *fakeBookingRepo
	slots    *fakeSlotStore
	gateway  *fakeGateway
}

func newFixture() *fixture {
	bookings := newFakeBookingRepo()
	slots := newFakeSlotStore()
	gateway := newFakeGateway()
	clock := utils.NewFixedClock(serviceNow)
	engine := availability.NewEngine(slots, clock, zap.NewNop(), 10*time.Minute, 30)
	return &fixture{
		service: &Service{
			Bookings: bookings,
			Engine:   engine,
			Gateway:  gateway,
			Clock:    clock,
			Logger:   zap.NewNop(),
		},
		bookings: bookings,
		slots:    slots,
		gateway:  gateway,
	}
}

func defaultPolicy() models.PolicySnapshot {
	return models.PolicySnapshot{
		MinAdvanceBookingHours:    2,
		MaxAdvanceBookingDays:     30,
		CancellationWindowHours:   24,
		CancellationFeePercentage: 50,
		AllowRescheduling:         true,
		RescheduleWindowHours:     12,
	}
}

// seedBooking plants a booking and its slot directly in the fakes.
func (f *fixture) seedBooking(id string, status models.BookingStatus, date string, start, end int, policy models.PolicySnapshot) *models.Booking {
	slot := models.Slot{
		ID:         "slot-" + id,
		ProviderID: "prov-1",
		Date:       date,
		Start:      start,
		End:        end,
		Status:     models.SlotTentativeHold,
		CreatedAt:  serviceNow.Add(-time.Hour),
	}
	if status == models.BookingConfirmed {
		slot.Status = models.SlotBooked
		slot.BookingID = id
	}
	f.slots.slots[slot.ID] = slot

	b := models.Booking{
		ID:          id,
		CustomerID:  "cust-1",
		ProviderID:  "prov-1",
		ServiceID:   "svc-1",
		SlotID:      slot.ID,
		Date:        date,
		Start:       start,
		End:         end,
		Status:      status,
		Policy:      policy,
		Ledger:      models.PaymentLedger{TotalPrice: 100, Currency: "usd"},
		RequestedAt: serviceNow.Add(-time.Hour),
	}
	f.bookings.bookings[b.ID] = b
	return &b
}

// --- tests -----------------------------------------------------------------

func TestCreateRequest(t *testing.T) {
	t.Parallel()

	input := func() CreateRequestInput {
		return CreateRequestInput{
			CustomerID:  "cust-1",
			ProviderID:  "prov-1",
			ServiceID:   "svc-1",
			Date:        "2026-09-02",
			Start:       600,
			DurationMin: 60,
			Price:       100,
			Currency:    "usd",
			Policy:      defaultPolicy(),
		}
	}

	t.Run("opens a requested booking against a fresh hold", func(t *testing.T) {
		f := newFixture()

		b, err := f.service.CreateRequest(context.Background(), input())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Status != models.BookingRequested {
			t.Fatalf("expected status %s, got %s", models.BookingRequested, b.Status)
		}
		if b.End != 660 {
			t.Fatalf("expected end 660, got %d", b.End)
		}
		slot, err := f.slots.GetByID(context.Background(), b.SlotID)
		if err != nil {
			t.Fatalf("hold not persisted: %v", err)
		}
		if slot.Status != models.SlotTentativeHold {
			t.Fatalf("expected held slot, got %s", slot.Status)
		}
	})

	t.Run("rejects a start inside the minimum notice", func(t *testing.T) {
		f := newFixture()
		in := input()
		in.Date = "2026-09-01"
		in.Start = 13 * 60 // one hour from the fixed clock

		_, err := f.service.CreateRequest(context.Background(), in)
		var policyErr *models.PolicyViolationError
		if !errors.As(err, &policyErr) {
			t.Fatalf("error type = %T, want *PolicyViolationError", err)
		}
		if policyErr.Code != models.PolicyReasonAdvanceTooSoon {
			t.Fatalf("code = %q, want %q", policyErr.Code, models.PolicyReasonAdvanceTooSoon)
		}
		if len(f.slots.slots) != 0 {
			t.Fatalf("no hold should be placed on a denied request")
		}
	})

	t.Run("rejects an interval held by someone else", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("other", models.BookingRequested, "2026-09-02", 600, 660, defaultPolicy())

		_, err := f.service.CreateRequest(context.Background(), input())
		var unavailable *models.SlotUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("error type = %T, want *SlotUnavailableError", err)
		}
	})
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	t.Run("confirms and books the slot", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingRequested, "2026-09-02", 600, 660, defaultPolicy())

		b, err := f.service.Confirm(context.Background(), "b1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Status != models.BookingConfirmed || b.ConfirmedAt == nil {
			t.Fatalf("expected confirmed with timestamp, got %s/%v", b.Status, b.ConfirmedAt)
		}
		slot, _ := f.slots.GetByID(context.Background(), b.SlotID)
		if slot.Status != models.SlotBooked || slot.BookingID != "b1" {
			t.Fatalf("expected slot booked by b1, got %s/%s", slot.Status, slot.BookingID)
		}
	})

	t.Run("refuses confirmation without a required deposit", func(t *testing.T) {
		f := newFixture()
		policy := defaultPolicy()
		policy.RequireDeposit = true
		policy.DepositPercentage = 25
		f.seedBooking("b1", models.BookingRequested, "2026-09-02", 600, 660, policy)

		_, err := f.service.Confirm(context.Background(), "b1")
		var policyErr *models.PolicyViolationError
		if !errors.As(err, &policyErr) {
			t.Fatalf("error type = %T, want *PolicyViolationError", err)
		}
		if policyErr.Code != models.PolicyReasonDepositRequired {
			t.Fatalf("code = %q, want %q", policyErr.Code, models.PolicyReasonDepositRequired)
		}
	})

	t.Run("confirms once the deposit is on the ledger", func(t *testing.T) {
		f := newFixture()
		policy := defaultPolicy()
		policy.RequireDeposit = true
		policy.DepositPercentage = 25
		f.seedBooking("b1", models.BookingRequested, "2026-09-02", 600, 660, policy)

		paid, err := f.service.ProcessDepositPayment(context.Background(), "b1", "pi_dep_1")
		if err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		if paid.Ledger.DepositAmount != 25 || paid.Ledger.PaidAmount != 25 {
			t.Fatalf("ledger = %+v, want 25 deposit and 25 paid", paid.Ledger)
		}

		b, err := f.service.Confirm(context.Background(), "b1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Status != models.BookingConfirmed {
			t.Fatalf("expected confirmed, got %s", b.Status)
		}
	})

	t.Run("rejects a non-requested booking", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-02", 600, 660, defaultPolicy())

		_, err := f.service.Confirm(context.Background(), "b1")
		var stateErr *models.InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("error type = %T, want *InvalidStateError", err)
		}
	})
}

func TestComplete(t *testing.T) {
	t.Parallel()

	t.Run("refuses completion while underpaid", func(t *testing.T) {
		f := newFixture()
		b := f.seedBooking("b1", models.BookingConfirmed, "2026-09-01", 600, 660, defaultPolicy())
		b.Ledger.PaidAmount = 25
		f.bookings.bookings[b.ID] = *b

		_, err := f.service.Complete(context.Background(), "b1", "")
		var payErr *models.PaymentIncompleteError
		if !errors.As(err, &payErr) {
			t.Fatalf("error type = %T, want *PaymentIncompleteError", err)
		}
		if payErr.Paid != 25 || payErr.Total != 100 {
			t.Fatalf("payment error = %+v, want 25/100", payErr)
		}
	})

	t.Run("completes after full settlement", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-01", 600, 660, defaultPolicy())

		if _, err := f.service.ProcessFullPayment(context.Background(), "b1", "pi_full_1"); err != nil {
			t.Fatalf("payment failed: %v", err)
		}
		b, err := f.service.Complete(context.Background(), "b1", "great visit")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Status != models.BookingCompleted || b.CompletedAt == nil {
			t.Fatalf("expected completed with timestamp, got %s/%v", b.Status, b.CompletedAt)
		}
		if b.StaffNotes != "great visit" {
			t.Fatalf("staff notes = %q", b.StaffNotes)
		}
	})
}

func TestCancel(t *testing.T) {
	t.Parallel()

	t.Run("customer cancelling outside the window pays no fee", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-03", 720, 780, defaultPolicy())

		b, err := f.service.Cancel(context.Background(), "b1", "changed plans", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Status != models.BookingCancelled || b.Ledger.CancellationFee != 0 {
			t.Fatalf("expected cancelled with no fee, got %s/fee=%v", b.Status, b.Ledger.CancellationFee)
		}
		slot, _ := f.slots.GetByID(context.Background(), b.SlotID)
		if slot.Status != models.SlotAvailable {
			t.Fatalf("expected slot released, got %s", slot.Status)
		}
	})

	t.Run("customer cancelling inside the window pays the fee", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-01", 840, 900, defaultPolicy())

		b, err := f.service.Cancel(context.Background(), "b1", "", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Ledger.CancellationFee != 50 {
			t.Fatalf("expected fee 50, got %v", b.Ledger.CancellationFee)
		}
	})

	t.Run("provider cancelling inside the window waives the fee", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-01", 840, 900, defaultPolicy())

		b, err := f.service.Cancel(context.Background(), "b1", "staff sick", true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Ledger.CancellationFee != 0 || !b.CancelledByProvider {
			t.Fatalf("expected no fee by provider, got fee=%v byProvider=%v", b.Ledger.CancellationFee, b.CancelledByProvider)
		}
	})

	t.Run("rejects cancelling a terminal booking", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingCompleted, "2026-09-01", 600, 660, defaultPolicy())

		_, err := f.service.Cancel(context.Background(), "b1", "", false)
		var stateErr *models.InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("error type = %T, want *InvalidStateError", err)
		}
	})
}

func TestMarkAsNoShow(t *testing.T) {
	t.Parallel()

	t.Run("rejects a no-show before the scheduled start", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-01", 840, 900, defaultPolicy())

		_, err := f.service.MarkAsNoShow(context.Background(), "b1", "")
		var stateErr *models.InvalidStateError
		if !errors.As(err, &stateErr) {
			t.Fatalf("error type = %T, want *InvalidStateError", err)
		}
	})

	t.Run("records a no-show after the start and blocks the slot for review", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-01", 600, 660, defaultPolicy())

		b, err := f.service.MarkAsNoShow(context.Background(), "b1", "never arrived")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Status != models.BookingNoShow || b.NoShowAt == nil {
			t.Fatalf("expected no-show with timestamp, got %s/%v", b.Status, b.NoShowAt)
		}
		slot, _ := f.slots.GetByID(context.Background(), b.SlotID)
		if slot.Status != models.SlotBlocked {
			t.Fatalf("expected slot blocked for review, got %s", slot.Status)
		}
	})
}

func TestReschedule(t *testing.T) {
	t.Parallel()

	t.Run("spawns a linked replacement and swaps the slots", func(t *testing.T) {
		f := newFixture()
		original := f.seedBooking("b1", models.BookingConfirmed, "2026-09-03", 600, 660, defaultPolicy())

		replacement, err := f.service.Reschedule(context.Background(), "b1", "2026-09-04", 840)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if replacement.Status != models.BookingRequested {
			t.Fatalf("expected replacement requested, got %s", replacement.Status)
		}
		if replacement.PreviousBookingID != "b1" {
			t.Fatalf("replacement not linked back, got %q", replacement.PreviousBookingID)
		}
		if replacement.End-replacement.Start != original.End-original.Start {
			t.Fatalf("duration changed: %d", replacement.End-replacement.Start)
		}
		if replacement.Ledger.PaidAmount != 0 || replacement.Ledger.TotalPrice != 100 {
			t.Fatalf("replacement ledger = %+v, want fresh with same total", replacement.Ledger)
		}

		moved, _ := f.service.GetBooking(context.Background(), "b1")
		if moved.Status != models.BookingRescheduled || moved.RescheduledToBookingID != replacement.ID {
			t.Fatalf("original = %s linked to %q", moved.Status, moved.RescheduledToBookingID)
		}

		oldSlot, _ := f.slots.GetByID(context.Background(), original.SlotID)
		if oldSlot.Status != models.SlotAvailable {
			t.Fatalf("expected original slot released, got %s", oldSlot.Status)
		}
		newSlot, _ := f.slots.GetByID(context.Background(), replacement.SlotID)
		if newSlot.Status != models.SlotTentativeHold {
			t.Fatalf("expected replacement slot held, got %s", newSlot.Status)
		}
	})

	t.Run("rejects rescheduling inside the window", func(t *testing.T) {
		f := newFixture()
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-01", 840, 900, defaultPolicy())

		_, err := f.service.Reschedule(context.Background(), "b1", "2026-09-04", 840)
		var policyErr *models.PolicyViolationError
		if !errors.As(err, &policyErr) {
			t.Fatalf("error type = %T, want *PolicyViolationError", err)
		}
		if policyErr.Code != models.PolicyReasonRescheduleTooLate {
			t.Fatalf("code = %q, want %q", policyErr.Code, models.PolicyReasonRescheduleTooLate)
		}
	})

	t.Run("rejects rescheduling when the policy disables it", func(t *testing.T) {
		f := newFixture()
		policy := defaultPolicy()
		policy.AllowRescheduling = false
		f.seedBooking("b1", models.BookingConfirmed, "2026-09-03", 600, 660, policy)

		_, err := f.service.Reschedule(context.Background(), "b1", "2026-09-04", 840)
		var policyErr *models.PolicyViolationError
		if !errors.As(err, &policyErr) {
			t.Fatalf("error type = %T, want *PolicyViolationError", err)
		}
		if policyErr.Code != models.PolicyReasonRescheduleDisabled {
			t.Fatalf("code = %q, want %q", policyErr.Code, models.PolicyReasonRescheduleDisabled)
		}
	})
}

func TestProcessRefund(t *testing.T) {
	t.Parallel()

	seedPaid := func(f *fixture, status models.BookingStatus) {
		b := f.seedBooking("b1", status, "2026-09-01", 600, 660, defaultPolicy())
		b.Ledger.PaidAmount = 50
		b.Ledger.References = []models.PaymentReference{
			{Kind: "deposit", Reference: "pi_dep_1", Amount: 50, At: serviceNow.Add(-time.Hour)},
		}
		f.bookings.bookings[b.ID] = *b
	}

	t.Run("refunds against the last charge on a cancelled booking", func(t *testing.T) {
		f := newFixture()
		seedPaid(f, models.BookingCancelled)

		b, err := f.service.ProcessRefund(context.Background(), "b1", 30, "goodwill")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if b.Ledger.RefundedAmount != 30 {
			t.Fatalf("refunded = %v, want 30", b.Ledger.RefundedAmount)
		}
		if got := f.gateway.refunds["pi_dep_1"]; got != 30 {
			t.Fatalf("gateway refunded %v against pi_dep_1, want 30", got)
		}
	})

	t.Run("rejects refunds outside cancelled and no-show", func(t *testing.T) {
		f := newFixture()
		seedPaid(f, models.BookingConfirmed)

		_, err := f.service.ProcessRefund(context.Background(), "b1", 30, "")
		var policyErr *models.PolicyViolationError
		if !errors.As(err, &policyErr) {
			t.Fatalf("error type = %T, want *PolicyViolationError", err)
		}
		if policyErr.Code != models.PolicyReasonRefundNotPermitted {
			t.Fatalf("code = %q, want %q", policyErr.Code, models.PolicyReasonRefundNotPermitted)
		}
	})

	t.Run("rejects refunds beyond the refundable balance", func(t *testing.T) {
		f := newFixture()
		seedPaid(f, models.BookingNoShow)

		if _, err := f.service.ProcessRefund(context.Background(), "b1", 80, ""); err == nil {
			t.Fatal("expected an error for over-refund")
		}
	})
}
