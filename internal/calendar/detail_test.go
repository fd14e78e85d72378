package calendar

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/pochita-booking/internal/holidays"
)

func TestDayDetailGroupsByVeterinarian(t *testing.T) {
	days := []DayAvailability{
		{
			Date: "2025-09-22", VeterinarianID: 7, VeterinarianName: "Pedro Soto",
			AvailableSlots: []Slot{{ID: 3, StartTime: "11:00:00", EndTime: "11:30:00"}, {ID: 2, StartTime: "09:00:00", EndTime: "09:30:00"}},
		},
		{
			Date: "2025-09-22", VeterinarianID: 4, VeterinarianName: "Ana María",
			AvailableSlots: []Slot{{ID: 8, StartTime: "10:00:00", EndTime: "10:30:00"}},
			OccupiedSlots:  []OccupiedSlot{{TimeSlotID: 9, StartTime: "12:00:00", EndTime: "12:30:00", PetName: "Luna"}},
		},
		{Date: "2025-09-23", VeterinarianID: 4, AvailableSlots: []Slot{{ID: 20}}},
	}

	d, err := DayDetail("2025-09-22", days, holidays.Compute(2025))
	require.NoError(t, err)
	assert.Equal(t, "lunes, 22 de septiembre de 2025", d.Label)
	assert.Equal(t, 3, d.AvailableCount)
	assert.Equal(t, 1, d.OccupiedCount)
	require.Len(t, d.Veterinarians, 2)

	assert.Equal(t, "Ana María", d.Veterinarians[0].VeterinarianName)
	assert.Equal(t, "Luna", d.Veterinarians[0].Occupied[0].PetName)

	pedro := d.Veterinarians[1]
	require.Len(t, pedro.Available, 2)
	assert.Equal(t, "09:00:00", pedro.Available[0].StartTime)
	assert.Equal(t, 7, pedro.Available[0].VeterinarianID)
}

func TestDayDetailHoliday(t *testing.T) {
	days := []DayAvailability{{Date: "2025-09-18", VeterinarianID: 1, AvailableSlots: []Slot{{ID: 1}}}}
	d, err := DayDetail("2025-09-18", days, holidays.Compute(2025))
	require.NoError(t, err)
	assert.True(t, d.IsHoliday)
	assert.Empty(t, d.Veterinarians)
}

func TestDayDetailErrors(t *testing.T) {
	_, err := DayDetail("2025-09-30", nil, holidays.Compute(2025))
	assert.True(t, errors.Is(err, ErrDateNotInData))

	_, err = DayDetail("30-09-2025", nil, holidays.Compute(2025))
	assert.Error(t, err)
}

func TestNewClosedNotice(t *testing.T) {
	n := NewClosedNotice("Navidad", "56949729777", "+56 9 4972 9777")
	assert.Equal(t, "¡Clínica Cerrada por Feriado!", n.Title)
	assert.Equal(t, "Navidad", n.HolidayName)
	assert.True(t, strings.HasPrefix(n.WhatsAppURL, "https://wa.me/56949729777?text="))
	assert.Equal(t, "+56 9 4972 9777", n.Phone)

	blank := NewClosedNotice("", "", "")
	assert.Equal(t, "Feriado", blank.HolidayName)
	assert.Empty(t, blank.WhatsAppURL)
}
