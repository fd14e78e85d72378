package holidays

import (
	"sync"
	"time"
)

// Calendar memoizes Compute per year and is safe for concurrent use.
type Calendar struct {
	mu    sync.RWMutex
	years map[int]Set
}

// NewCalendar returns an empty holiday calendar.
func NewCalendar() *Calendar {
	return &Calendar{years: make(map[int]Set)}
}

// Year returns the holiday set for year, computing it on first use.
func (c *Calendar) Year(year int) Set {
	c.mu.RLock()
	set, ok := c.years[year]
	c.mu.RUnlock()
	if ok {
		return set
	}

	set = Compute(year)
	c.mu.Lock()
	c.years[year] = set
	c.mu.Unlock()
	return set
}

// On reports the holiday on t's calendar date, if any.
func (c *Calendar) On(t time.Time) (Holiday, bool) {
	return c.Year(t.Year()).On(t)
}

// IsHoliday reports whether the clinic is closed on t's calendar date.
func (c *Calendar) IsHoliday(t time.Time) bool {
	_, ok := c.On(t)
	return ok
}
