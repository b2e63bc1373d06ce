package services

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const dateLayout = "2006-01-02"

// Calendar resolves "today" in a fixed zone from an injectable clock.
type Calendar struct {
	Clock    clockwork.Clock
	Location *time.Location
}

func NewCalendar(clock clockwork.Clock, loc *time.Location) Calendar {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Clock: clock, Location: loc}
}

// Today is the ISO date of the clock's current instant in the calendar's zone.
func (c Calendar) Today() string {
	return c.Clock.Now().In(c.Location).Format(dateLayout)
}

// Now is the current instant.
func (c Calendar) Now() time.Time {
	return c.Clock.Now()
}

// ShiftDate moves an ISO date by whole calendar days. Unparseable input is returned as is.
func ShiftDate(date string, days int) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(dateLayout)
}
