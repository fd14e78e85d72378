package calendar

import (
	"fmt"
	"time"

	"github.com/wolfman30/pochita-booking/internal/format"
	"github.com/wolfman30/pochita-booking/internal/holidays"
)

// HolidayBadge is the label shown on closed days.
const HolidayBadge = "Feriado"

// minCells keeps the grid at five rows even for short months.
const minCells = 35

// WeekdayHeaders are the Monday-first column titles.
var WeekdayHeaders = []string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}

// Badge is a short label with a display tone.
type Badge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// Cell is one day of the month grid.
type Cell struct {
	Date           string  `json:"date"`
	Day            int     `json:"day"`
	InMonth        bool    `json:"in_month"`
	IsHoliday      bool    `json:"is_holiday"`
	HolidayName    string  `json:"holiday_name,omitempty"`
	AvailableCount int     `json:"available_count"`
	OccupiedCount  int     `json:"occupied_count"`
	IsPast         bool    `json:"is_past"`
	IsToday        bool    `json:"is_today"`
	IsSelected     bool    `json:"is_selected"`
	Selectable     bool    `json:"selectable"`
	Badges         []Badge `json:"badges,omitempty"`
}

// YearMonth identifies a month for navigation links.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Navigate moves delta months from year/month.
func Navigate(year int, month time.Month, delta int) YearMonth {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Month is a rendered month grid.
type Month struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Title    string     `json:"title"`
	Weekdays []string   `json:"weekdays"`
	Cells    []Cell     `json:"cells"`
	Selected string     `json:"selected,omitempty"`
	Prev     YearMonth  `json:"prev"`
	Next     YearMonth  `json:"next"`
}

// Cell returns the in-month cell for date.
func (m Month) Cell(date string) (Cell, bool) {
	for _, c := range m.Cells {
		if c.InMonth && c.Date == date {
			return c, true
		}
	}
	return Cell{}, false
}

// Weeks splits the cells into rows of seven.
func (m Month) Weeks() [][]Cell {
	var weeks [][]Cell
	for i := 0; i+7 <= len(m.Cells); i += 7 {
		weeks = append(weeks, m.Cells[i:i+7])
	}
	return weeks
}

type dayTotals struct {
	available int
	occupied  int
}

// RenderMonth builds the Monday-first grid for year/month.
//
// hs must be the holiday set of year. today is compared by calendar date only.
// selected marks at most one cell; a date outside the month is dropped so a
// month change starts unselected.
func RenderMonth(year int, month time.Month, days []DayAvailability, hs holidays.Set, today time.Time, selected string) Month {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	totals := make(map[string]dayTotals, len(days))
	for _, d := range days {
		t := totals[d.Date]
		t.available += len(d.AvailableSlots)
		t.occupied += len(d.OccupiedSlots)
		totals[d.Date] = t
	}

	out := Month{
		Year:     year,
		Month:    month,
		Title:    format.MonthTitle(year, month),
		Weekdays: WeekdayHeaders,
		Prev:     Navigate(year, month, -1),
		Next:     Navigate(year, month, 1),
	}

	// Monday is column zero.
	lead := (int(first.Weekday()) + 6) % 7
	total := lead + daysInMonth
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}
	if total < minCells {
		total = minCells
	}

	cells := make([]Cell, 0, total)
	for i := 0; i < total; i++ {
		day := first.AddDate(0, 0, i-lead)
		dateStr := format.DateString(day)
		cell := Cell{
			Date:    dateStr,
			Day:     day.Day(),
			InMonth: day.Month() == month,
			IsPast:  day.Before(today),
			IsToday: day.Equal(today),
		}
		if !cell.InMonth {
			cells = append(cells, cell)
			continue
		}

		if h, ok := hs.Lookup(month, day.Day()); ok && hs.Year == year {
			cell.IsHoliday = true
			cell.HolidayName = h.Name
			cell.Badges = []Badge{{Label: HolidayBadge, Tone: "danger"}}
		} else {
			t := totals[dateStr]
			cell.AvailableCount = t.available
			cell.OccupiedCount = t.occupied
			if t.available > 0 {
				cell.Badges = append(cell.Badges, Badge{Label: fmt.Sprintf("%d disponibles", t.available), Tone: "success"})
			}
			if t.occupied > 0 {
				cell.Badges = append(cell.Badges, Badge{Label: fmt.Sprintf("%d ocupados", t.occupied), Tone: "secondary"})
			}
		}

		cell.Selectable = !cell.IsPast && !cell.IsHoliday && cell.AvailableCount > 0
		if selected != "" && selected == dateStr && !cell.IsHoliday {
			cell.IsSelected = true
			out.Selected = dateStr
		}
		cells = append(cells, cell)
	}
	out.Cells = cells
	return out
}
