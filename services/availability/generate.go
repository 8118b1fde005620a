package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"slotwise/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateSlots materializes Available slots for every sub-interval of the
// provider's weekly template not covered by a break, for each date in
// [from, to). Break periods are simply never created as slots. Intervals
// already covered by existing slots (booked, held, blocked or previously
// generated) are skipped, so regeneration never violates the overlap
// invariant.
func (e *Engine) GenerateSlots(ctx context.Context, providerID, staffID string, tpl models.BusinessHoursTemplate, from, to time.Time) ([]models.Slot, error) {
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	granularity := tpl.SlotMinutes
	if granularity <= 0 {
		granularity = e.SlotMinutes
	}

	now := e.Clock.Now()
	var created []models.Slot

	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		hours, ok := tpl.HoursFor(day.Weekday())
		if !ok {
			continue
		}
		date := day.Format("2006-01-02")

		existing, err := e.Slots.ListByDate(ctx, providerID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load existing slots for %s: %w", date, err)
		}

		for _, window := range carveBreaks(hours.Open, hours.Close, tpl.BreaksFor(day.Weekday())) {
			for start := window[0]; start+granularity <= window[1]; start += granularity {
				end := start + granularity
				if covered(existing, staffID, start, end) {
					continue
				}
				created = append(created, models.Slot{
					ID:         uuid.New().String(),
					ProviderID: providerID,
					StaffID:    staffID,
					Date:       date,
					Start:      start,
					End:        end,
					Status:     models.SlotAvailable,
					CreatedAt:  now,
					UpdatedAt:  now,
				})
			}
		}
	}

	if err := e.Slots.InsertMany(ctx, created); err != nil {
		return nil, err
	}

	e.Logger.Info("generated slots",
		zap.String("providerId", providerID), zap.Int("count", len(created)),
		zap.String("from", from.Format("2006-01-02")), zap.String("to", to.Format("2006-01-02")))
	return created, nil
}

func validateTemplate(tpl models.BusinessHoursTemplate) error {
	for _, d := range tpl.Days {
		if d.Open >= d.Close {
			return &models.InvalidTemplateError{
				Message: fmt.Sprintf("%s opens at %s but closes at %s",
					d.Weekday, models.FormatMinutes(d.Open), models.FormatMinutes(d.Close)),
			}
		}
		if d.Open < 0 || d.Close > 24*60 {
			return &models.InvalidTemplateError{
				Message: fmt.Sprintf("%s hours fall outside the day", d.Weekday),
			}
		}
	}
	for _, b := range tpl.Breaks {
		if b.Start >= b.End {
			return &models.InvalidTemplateError{
				Message: fmt.Sprintf("break on %s starts at %s but ends at %s",
					b.Weekday, models.FormatMinutes(b.Start), models.FormatMinutes(b.End)),
			}
		}
	}
	return nil
}

// carveBreaks subtracts break periods from [open, close) and returns the
// remaining open windows in order.
func carveBreaks(open, close int, breaks []models.BreakPeriod) [][2]int {
	sorted := make([]models.BreakPeriod, len(breaks))
	copy(sorted, breaks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	windows := [][2]int{}
	cursor := open
	for _, b := range sorted {
		if b.End <= cursor || b.Start >= close {
			continue
		}
		if b.Start > cursor {
			windows = append(windows, [2]int{cursor, b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < close {
		windows = append(windows, [2]int{cursor, close})
	}
	return windows
}

func covered(existing []models.Slot, staffID string, start, end int) bool {
	for _, s := range existing {
		if s.StaffID != staffID {
			continue
		}
		if s.Overlaps(start, end) {
			return true
		}
	}
	return false
}
