package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar-day value type (the engine's only notion of time)
// =============================================================================

// Day is a calendar day with no timezone semantics. Timezone normalization
// is the caller's responsibility; the engine compares days by date only.
type Day struct {
	t time.Time
}

// DayFormat is the wire format the platform uses for calendar days.
const DayFormat = "02.01.2006"

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a DD.MM.YYYY string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q (want DD.MM.YYYY): %w", s, err)
	}
	return Day{t: t}, nil
}

// DayOf truncates an instant to its calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func (d Day) Equal(o Day) bool  { return d.t.Equal(o.t) }
func (d Day) Before(o Day) bool { return d.t.Before(o.t) }
func (d Day) After(o Day) bool  { return d.t.After(o.t) }
func (d Day) IsZero() bool      { return d.t.IsZero() }

func (d Day) Year() int         { return d.t.Year() }
func (d Day) Month() time.Month { return d.t.Month() }
func (d Day) Day() int          { return d.t.Day() }

// Start returns the first instant of the day.
func (d Day) Start() time.Time { return d.t }

// End returns the last second of the day. Quests expire here unless an
// explicit expiry was set at creation.
func (d Day) End() time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 23, 59, 59, 0, time.UTC)
}

func (d Day) String() string { return d.t.Format(DayFormat) }

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid day JSON: %s", s)
	}
	parsed, err := ParseDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
