// Package format renders dates and times the way the clinic UI shows them.
package format

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of dates exchanged with the backend.
const DateLayout = "2006-01-02"

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var weekdayNames = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// MonthName returns the lowercase Spanish name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthTitle returns a grid header such as "Septiembre 2025".
func MonthTitle(year int, m time.Month) string {
	name := MonthName(m)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:] + fmt.Sprintf(" %d", year)
}

// WeekdayName returns the lowercase Spanish weekday name.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// LongDate renders "18 de septiembre de 2025".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), MonthName(t.Month()), t.Year())
}

// LongDateWithWeekday renders "jueves, 18 de septiembre de 2025".
func LongDateWithWeekday(t time.Time) string {
	return WeekdayName(t.Weekday()) + ", " + LongDate(t)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date. Timestamps
// with a time part are truncated to their date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("format: invalid date %q: %w", s, err)
	}
	return t, nil
}

// DateString formats t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// DateInput renders a backend date string as a long Spanish date. Unparseable
// input is returned unchanged.
func DateInput(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return LongDate(t)
}

// Time renders "HH:MM:SS" or "HH:MM" as 24 hour "HH:MM".
func Time(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, ":")
	hours := parts[0]
	minutes := "00"
	if len(parts) > 1 && parts[1] != "" {
		minutes = parts[1]
	}
	if len(minutes) == 1 {
		minutes = "0" + minutes
	}
	return hours + ":" + minutes
}

// Today returns the current calendar date in loc as a UTC midnight, which is
// how every grid and session compares dates.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
