package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pochita-booking/internal/holidays"
)

func slots(n int, startID int) []Slot {
	out := make([]Slot, n)
	for i := range out {
		out[i] = Slot{
			ID:        startID + i,
			StartTime: fmt.Sprintf("%02d:00:00", 9+i),
			EndTime:   fmt.Sprintf("%02d:30:00", 9+i),
		}
	}
	return out
}

func occupied(n int) []OccupiedSlot {
	out := make([]OccupiedSlot, n)
	for i := range out {
		out[i] = OccupiedSlot{TimeSlotID: 900 + i, StartTime: fmt.Sprintf("%02d:00:00", 15+i), EndTime: fmt.Sprintf("%02d:30:00", 15+i)}
	}
	return out
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestRenderMonthHolidayWithSlotsIsBlocked(t *testing.T) {
	days := []DayAvailability{
		{Date: "2025-09-18", VeterinarianID: 1, VeterinarianName: "Ana", AvailableSlots: slots(3, 1)},
	}
	today := day(time.Date(2025, 9, 1, 15, 0, 0, 0, time.UTC))
	m := RenderMonth(2025, time.September, days, holidays.Compute(2025), today, "")

	cell, ok := m.Cell("2025-09-18")
	require.True(t, ok)
	assert.True(t, cell.IsHoliday)
	assert.False(t, cell.Selectable)
	assert.Equal(t, "Día de la Independencia Nacional", cell.HolidayName)
	require.Len(t, cell.Badges, 1)
	assert.Equal(t, "Feriado", cell.Badges[0].Label)
}

func TestRenderMonthChristmasWithFiveSlotsIsBlocked(t *testing.T) {
	days := []DayAvailability{
		{Date: "2025-12-25", VeterinarianID: 2, AvailableSlots: slots(5, 10)},
	}
	m := RenderMonth(2025, time.December, days, holidays.Compute(2025), time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), "2025-12-25")

	cell, ok := m.Cell("2025-12-25")
	require.True(t, ok)
	assert.False(t, cell.Selectable)
	assert.False(t, cell.IsSelected)
	assert.Empty(t, m.Selected)
}

func TestRenderMonthPastDaysNotSelectable(t *testing.T) {
	days := []DayAvailability{
		{Date: "2025-09-09", VeterinarianID: 1, AvailableSlots: slots(2, 1)},
		{Date: "2025-09-10", VeterinarianID: 1, AvailableSlots: slots(2, 3)},
		{Date: "2025-09-11", VeterinarianID: 1, OccupiedSlots: occupied(2)},
	}
	today := time.Date(2025, 9, 10, 18, 45, 0, 0, time.UTC)
	m := RenderMonth(2025, time.September, days, holidays.Compute(2025), today, "")

	past, _ := m.Cell("2025-09-09")
	assert.True(t, past.IsPast)
	assert.False(t, past.Selectable)

	present, _ := m.Cell("2025-09-10")
	assert.False(t, present.IsPast)
	assert.True(t, present.IsToday)
	assert.True(t, present.Selectable)

	full, _ := m.Cell("2025-09-11")
	assert.False(t, full.Selectable, "no available slots")
	assert.Equal(t, 2, full.OccupiedCount)
}

func TestRenderMonthAggregatesAcrossVeterinarians(t *testing.T) {
	days := []DayAvailability{
		{Date: "2025-09-22", VeterinarianID: 1, AvailableSlots: slots(2, 1), OccupiedSlots: occupied(1)},
		{Date: "2025-09-22", VeterinarianID: 2, AvailableSlots: slots(3, 10)},
		{Date: "2025-09-23", VeterinarianID: 2, AvailableSlots: []Slot{}},
	}
	m := RenderMonth(2025, time.September, days, holidays.Compute(2025), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "")

	cell, _ := m.Cell("2025-09-22")
	assert.Equal(t, 5, cell.AvailableCount)
	assert.Equal(t, 1, cell.OccupiedCount)
	assert.True(t, cell.Selectable)
	require.Len(t, cell.Badges, 2)
	assert.Equal(t, "5 disponibles", cell.Badges[0].Label)
	assert.Equal(t, "1 ocupados", cell.Badges[1].Label)

	empty, _ := m.Cell("2025-09-23")
	assert.False(t, empty.Selectable)
	assert.Empty(t, empty.Badges)
}

func TestRenderMonthGridLayout(t *testing.T) {
	hs := holidays.Compute(2025)
	today := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// September 2025 starts on a Monday: no leading cells, padded to 35.
	sep := RenderMonth(2025, time.September, nil, hs, today, "")
	require.Len(t, sep.Cells, 35)
	assert.Equal(t, "2025-09-01", sep.Cells[0].Date)
	assert.True(t, sep.Cells[0].InMonth)
	assert.False(t, sep.Cells[34].InMonth)
	assert.Equal(t, "2025-10-05", sep.Cells[34].Date)
	assert.Len(t, sep.Weeks(), 5)

	// March 2025 starts on a Saturday and needs six rows.
	mar := RenderMonth(2025, time.March, nil, hs, today, "")
	require.Len(t, mar.Cells, 42)
	assert.Equal(t, "2025-02-24", mar.Cells[0].Date)
	assert.False(t, mar.Cells[0].InMonth)
	assert.Equal(t, "2025-03-01", mar.Cells[5].Date)
	assert.Equal(t, "Marzo 2025", mar.Title)
	assert.Equal(t, YearMonth{Year: 2025, Month: time.February}, mar.Prev)
	assert.Equal(t, YearMonth{Year: 2025, Month: time.April}, mar.Next)

	// February 2021 fills exactly four weeks but still renders five rows.
	feb := RenderMonth(2021, time.February, nil, holidays.Compute(2021), today, "")
	assert.Len(t, feb.Cells, 35)
}

func TestRenderMonthAdjacentDaysNeverSelectable(t *testing.T) {
	days := []DayAvailability{
		{Date: "2025-10-01", VeterinarianID: 1, AvailableSlots: slots(4, 1)},
	}
	m := RenderMonth(2025, time.September, days, holidays.Compute(2025), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "2025-10-01")

	for _, c := range m.Cells {
		if c.Date == "2025-10-01" {
			assert.False(t, c.InMonth)
			assert.False(t, c.Selectable)
			assert.False(t, c.IsSelected)
			assert.Zero(t, c.AvailableCount)
		}
	}
	assert.Empty(t, m.Selected, "selection from another month is dropped")
}

func TestRenderMonthSelectionIsExclusive(t *testing.T) {
	days := []DayAvailability{
		{Date: "2025-09-22", VeterinarianID: 1, AvailableSlots: slots(1, 1)},
		{Date: "2025-09-24", VeterinarianID: 1, AvailableSlots: slots(1, 2)},
	}
	m := RenderMonth(2025, time.September, days, holidays.Compute(2025), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "2025-09-24")

	selected := 0
	for _, c := range m.Cells {
		if c.IsSelected {
			selected++
			assert.Equal(t, "2025-09-24", c.Date)
		}
	}
	assert.Equal(t, 1, selected)
	assert.Equal(t, "2025-09-24", m.Selected)
}

func TestNavigateAcrossYears(t *testing.T) {
	assert.Equal(t, YearMonth{Year: 2026, Month: time.January}, Navigate(2025, time.December, 1))
	assert.Equal(t, YearMonth{Year: 2024, Month: time.December}, Navigate(2025, time.January, -1))
}

func TestForVeterinarianAndFindSlot(t *testing.T) {
	days := []DayAvailability{
		{Date: "2025-09-22", VeterinarianID: 1, AvailableSlots: slots(2, 1)},
		{Date: "2025-09-22", VeterinarianID: 2, AvailableSlots: slots(2, 10)},
	}
	assert.Len(t, ForVeterinarian(days, 2), 1)
	assert.Len(t, ForVeterinarian(days, 0), 2)

	slot, rec, ok := FindSlot(days, "2025-09-22", 11)
	require.True(t, ok)
	assert.Equal(t, 2, slot.VeterinarianID)
	assert.Equal(t, 2, rec.VeterinarianID)
	assert.Equal(t, "10:00 - 10:30", slot.Label())

	_, _, ok = FindSlot(days, "2025-09-23", 11)
	assert.False(t, ok)
}
