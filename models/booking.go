package models

import "time"

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	BookingRequested   BookingStatus = "requested"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingCompleted   BookingStatus = "completed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingNoShow      BookingStatus = "no_show"
	BookingRescheduled BookingStatus = "rescheduled"
)

// Terminal reports whether a booking status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingCompleted, BookingCancelled, BookingNoShow, BookingRescheduled:
		return true
	}
	return false
}

// PolicySnapshot is a copy of a service's booking rules taken when the
// booking request is created. It is never mutated afterwards, so mid-flight
// policy changes cannot affect an existing booking.
type PolicySnapshot struct {
	MinAdvanceBookingHours    int     `bson:"minAdvanceBookingHours" json:"minAdvanceBookingHours"`
	MaxAdvanceBookingDays     int     `bson:"maxAdvanceBookingDays" json:"maxAdvanceBookingDays"`
	CancellationWindowHours   int     `bson:"cancellationWindowHours" json:"cancellationWindowHours"`
	CancellationFeePercentage float64 `bson:"cancellationFeePercentage" json:"cancellationFeePercentage"`
	AllowRescheduling         bool    `bson:"allowRescheduling" json:"allowRescheduling"`
	RescheduleWindowHours     int     `bson:"rescheduleWindowHours" json:"rescheduleWindowHours"`
	RequireDeposit            bool    `bson:"requireDeposit" json:"requireDeposit"`
	DepositPercentage         float64 `bson:"depositPercentage" json:"depositPercentage"`
}

// PaymentReference records one opaque gateway reference in the ledger.
type PaymentReference struct {
	Kind      string    `bson:"kind" json:"kind"` // "deposit", "full" or "refund"
	Reference string    `bson:"reference" json:"reference"`
	Amount    float64   `bson:"amount" json:"amount"`
	At        time.Time `bson:"at" json:"at"`
}

// PaymentLedger tracks money movement for one booking. Amounts are in the
// ledger's currency; gateway wire details live behind the references.
type PaymentLedger struct {
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	PaidAmount      float64            `bson:"paidAmount" json:"paidAmount"`
	DepositAmount   float64            `bson:"depositAmount" json:"depositAmount"`
	RefundedAmount  float64            `bson:"refundedAmount" json:"refundedAmount"`
	CancellationFee float64            `bson:"cancellationFee" json:"cancellationFee"`
	Currency        string             `bson:"currency" json:"currency"`
	References      []PaymentReference `bson:"references,omitempty" json:"references,omitempty"`
}

// FullyPaid reports whether the booking has been settled in full.
func (l PaymentLedger) FullyPaid() bool {
	return l.PaidAmount >= l.TotalPrice-0.005
}

// Booking represents one customer's reservation of a service with a
// provider/staff at a specific time. Start and End are minutes from midnight
// on Date, mirroring the slot representation.
type Booking struct {
	ID         string        `bson:"id" json:"id"`
	CustomerID string        `bson:"customerId" json:"customerId"`
	ProviderID string        `bson:"providerId" json:"providerId"`
	ServiceID  string        `bson:"serviceId" json:"serviceId"`
	StaffID    string        `bson:"staffId,omitempty" json:"staffId,omitempty"`
	SlotID     string        `bson:"slotId" json:"slotId"`
	Date       string        `bson:"date" json:"date"`
	Start      int           `bson:"start" json:"start"`
	End        int           `bson:"end" json:"end"`
	Status     BookingStatus `bson:"status" json:"status"`

	Policy PolicySnapshot `bson:"policy" json:"policy"`
	Ledger PaymentLedger  `bson:"ledger" json:"ledger"`

	CustomerNotes       string `bson:"customerNotes,omitempty" json:"customerNotes,omitempty"`
	StaffNotes          string `bson:"staffNotes,omitempty" json:"staffNotes,omitempty"`
	CancellationReason  string `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancelledByProvider bool   `bson:"cancelledByProvider,omitempty" json:"cancelledByProvider,omitempty"`

	RequestedAt   time.Time  `bson:"requestedAt" json:"requestedAt"`
	ConfirmedAt   *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt   *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CompletedAt   *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	RescheduledAt *time.Time `bson:"rescheduledAt,omitempty" json:"rescheduledAt,omitempty"`
	NoShowAt      *time.Time `bson:"noShowAt,omitempty" json:"noShowAt,omitempty"`

	// Set when this booking was created by rescheduling another, and vice
	// versa.
	PreviousBookingID      string `bson:"previousBookingId,omitempty" json:"previousBookingId,omitempty"`
	RescheduledToBookingID string `bson:"rescheduledToBookingId,omitempty" json:"rescheduledToBookingId,omitempty"`

	Version int `bson:"version" json:"version"`
}

// StartTime resolves the booking's start to an absolute instant in UTC.
func (b Booking) StartTime() (time.Time, error) {
	return MinutesOnDate(b.Date, b.Start)
}
