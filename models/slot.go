package models

import (
	"fmt"
	"time"
)

// SlotStatus is the lifecycle state of a bookable interval.
type SlotStatus string

const (
	SlotAvailable     SlotStatus = "available"
	SlotBooked        SlotStatus = "booked"
	SlotBlocked       SlotStatus = "blocked"
	SlotTentativeHold SlotStatus = "tentative_hold"
	// SlotBreak exists for completeness; break periods are carved out of
	// generation and never materialized as slot records.
	SlotBreak SlotStatus = "break"
)

// BlockingStatuses are the statuses that make an interval unclaimable.
var BlockingStatuses = []SlotStatus{SlotBooked, SlotTentativeHold, SlotBlocked}

// Slot represents one bookable interval for one provider (and optionally one
// staff member) on one calendar date. Start and End are minutes from midnight
// (e.g., 600 for 10:00 AM) and form a half-open interval [Start, End).
type Slot struct {
	ID            string     `bson:"id" json:"id"`
	ProviderID    string     `bson:"providerId" json:"providerId"`
	StaffID       string     `bson:"staffId,omitempty" json:"staffId,omitempty"`
	Date          string     `bson:"date" json:"date"` // e.g., "2026-09-03"
	Start         int        `bson:"start" json:"start"`
	End           int        `bson:"end" json:"end"`
	Status        SlotStatus `bson:"status" json:"status"`
	BookingID     string     `bson:"bookingId,omitempty" json:"bookingId,omitempty"`         // set iff Status == SlotBooked
	HoldExpiresAt *time.Time `bson:"holdExpiresAt,omitempty" json:"holdExpiresAt,omitempty"` // set iff Status == SlotTentativeHold
	BlockReason   string     `bson:"blockReason,omitempty" json:"blockReason,omitempty"`     // set iff Status == SlotBlocked
	Version       int        `bson:"version" json:"version"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Overlaps reports whether the slot's half-open interval intersects
// [start, end). Adjacent intervals (10:00-10:30 and 10:30-11:00) do not
// overlap.
func (s Slot) Overlaps(start, end int) bool {
	return s.Start < end && s.End > start
}

// Blocking reports whether the slot's status makes its interval unclaimable.
func (s Slot) Blocking() bool {
	for _, st := range BlockingStatuses {
		if s.Status == st {
			return true
		}
	}
	return false
}

// StartTime resolves the slot's start to an absolute instant in UTC.
func (s Slot) StartTime() (time.Time, error) {
	return MinutesOnDate(s.Date, s.Start)
}

// MinutesOnDate combines a "YYYY-MM-DD" date with minutes from midnight.
func MinutesOnDate(date string, minutes int) (time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// FormatMinutes renders minutes from midnight as "HH:MM" for messages.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
