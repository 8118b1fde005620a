package models

import "time"

// DayHours is one weekday's open/close window in minutes from midnight.
type DayHours struct {
	Weekday time.Weekday `bson:"weekday" json:"weekday"`
	Open    int          `bson:"open" json:"open"`
	Close   int          `bson:"close" json:"close"`
}

// BreakPeriod is a recurring interval carved out of a weekday's hours.
// Breaks are never materialized as slots.
type BreakPeriod struct {
	Weekday time.Weekday `bson:"weekday" json:"weekday"`
	Start   int          `bson:"start" json:"start"`
	End     int          `bson:"end" json:"end"`
}

// BusinessHoursTemplate describes a provider's recurring weekly hours.
// SlotMinutes is the generation granularity; zero means the configured
// default applies.
type BusinessHoursTemplate struct {
	Days        []DayHours    `bson:"days" json:"days"`
	Breaks      []BreakPeriod `bson:"breaks,omitempty" json:"breaks,omitempty"`
	SlotMinutes int           `bson:"slotMinutes,omitempty" json:"slotMinutes,omitempty"`
}

// HoursFor returns the open/close window for a weekday, if any.
func (t BusinessHoursTemplate) HoursFor(wd time.Weekday) (DayHours, bool) {
	for _, d := range t.Days {
		if d.Weekday == wd {
			return d, true
		}
	}
	return DayHours{}, false
}

// BreaksFor returns the break periods for a weekday.
func (t BusinessHoursTemplate) BreaksFor(wd time.Weekday) []BreakPeriod {
	var out []BreakPeriod
	for _, b := range t.Breaks {
		if b.Weekday == wd {
			out = append(out, b)
		}
	}
	return out
}
