package testfixtures

import (
	"sync"
	"time"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/scheduler"
)

// Clock is a settable time source whose current date doubles as the booking
// day under test.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts the clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc returns Now for injection, or time.Now on a nil clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// Day returns local midnight of the current booking day.
func (c *Clock) Day() time.Time {
	return scheduler.StartOfDay(c.Now())
}

// NextDay moves the clock to midnight of the following day.
func (c *Clock) NextDay() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = scheduler.StartOfDay(c.current).AddDate(0, 0, 1)
	return c.current
}

// At returns hour:minute on the current booking day.
func (c *Clock) At(hour, minute int) time.Time {
	y, m, d := c.Now().Date()
	return time.Date(y, m, d, hour, minute, 0, 0, c.Now().Location())
}

// Stamp formats At(hour, minute) the way reservation requests carry times.
func (c *Clock) Stamp(hour, minute int) string {
	return c.At(hour, minute).Format(application.TimestampLayout)
}

// Slot returns the slot between two times of the current booking day.
func (c *Clock) Slot(startHour, startMinute, endHour, endMinute int) scheduler.TimeSlot {
	return scheduler.TimeSlot{Start: c.At(startHour, startMinute), End: c.At(endHour, endMinute)}
}
