package holidays

import (
	"strings"
	"sync"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEaster(t *testing.T) {
	tests := []struct {
		year int
		want time.Time
	}{
		{2024, date(2024, time.March, 31)},
		{2025, date(2025, time.April, 20)},
		{2019, date(2019, time.April, 21)},
		{2008, date(2008, time.March, 23)},
		{2000, date(2000, time.April, 23)},
		{2038, date(2038, time.April, 25)},
		{1961, date(1961, time.April, 2)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Easter(tt.year), "easter %d", tt.year)
	}
}

func TestCompute2024(t *testing.T) {
	set := Compute(2024)
	assert.Equal(t, 2024, set.Year)
	assert.Equal(t, 14, set.Len())

	gf, ok := set.Lookup(time.March, 29)
	require.True(t, ok)
	assert.Equal(t, "Viernes Santo", gf.Name)
	assert.Equal(t, OriginComputed, gf.Origin)

	hs, ok := set.Lookup(time.March, 30)
	require.True(t, ok)
	assert.Equal(t, "Sábado Santo", hs.Name)

	xmas, ok := set.Lookup(time.December, 25)
	require.True(t, ok)
	assert.Equal(t, "Navidad", xmas.Name)
	assert.Equal(t, OriginFixed, xmas.Origin)

	// Dec 8 2024 is a Sunday; fixed holidays never move.
	_, ok = set.Lookup(time.December, 8)
	assert.True(t, ok)
	_, ok = set.Lookup(time.December, 9)
	assert.False(t, ok)
}

func TestHolyWeekEveryYear(t *testing.T) {
	for year := 1900; year <= 2200; year++ {
		set := Compute(year)
		easter := Easter(year)

		var fridays, saturdays []Holiday
		for _, h := range set.List() {
			switch h.Name {
			case "Viernes Santo":
				fridays = append(fridays, h)
			case "Sábado Santo":
				saturdays = append(saturdays, h)
			}
		}
		require.Len(t, fridays, 1, "year %d", year)
		require.Len(t, saturdays, 1, "year %d", year)
		assert.Equal(t, easter.AddDate(0, 0, -2), fridays[0].Date(year), "year %d", year)
		assert.Equal(t, easter.AddDate(0, 0, -1), saturdays[0].Date(year), "year %d", year)
	}
}

func TestSundayHolidaysMoveToMonday(t *testing.T) {
	// June 29 2025 and October 12 2025 are Sundays.
	set := Compute(2025)

	_, ok := set.Lookup(time.June, 29)
	assert.False(t, ok, "june 29 should not be observed on a Sunday")
	h, ok := set.Lookup(time.June, 30)
	require.True(t, ok)
	assert.Equal(t, "San Pedro y San Pablo", h.Name)
	assert.Equal(t, time.Monday, h.Date(2025).Weekday())

	_, ok = set.Lookup(time.October, 12)
	assert.False(t, ok)
	h, ok = set.Lookup(time.October, 13)
	require.True(t, ok)
	assert.Equal(t, "Encuentro de Dos Mundos", h.Name)

	// On a weekday the base date is kept.
	set = Compute(2024)
	h, ok = set.Lookup(time.June, 29)
	require.True(t, ok)
	assert.Equal(t, "San Pedro y San Pablo", h.Name)
}

func TestJuneThirtyMondayRuleAcrossYears(t *testing.T) {
	for year := 1990; year <= 2100; year++ {
		if date(year, time.June, 30).Weekday() != time.Monday {
			continue
		}
		set := Compute(year)
		h, ok := set.Lookup(time.June, 30)
		require.True(t, ok, "year %d", year)
		assert.Equal(t, "San Pedro y San Pablo", h.Name)
		_, ok = set.Lookup(time.June, 29)
		assert.False(t, ok, "year %d", year)
	}
}

func TestReformationDayCollisionKeepsOneName(t *testing.T) {
	// October 31 2027 is a Sunday and November 1 is already a fixed holiday.
	set := Compute(2027)

	nov1, ok := set.Lookup(time.November, 1)
	require.True(t, ok)
	assert.Equal(t, "Día de Todos los Santos", nov1.Name)

	oct31, ok := set.Lookup(time.October, 31)
	require.True(t, ok)
	assert.Equal(t, "Día de las Iglesias Evangélicas y Protestantes", oct31.Name)
}

func TestComputeIsDeterministic(t *testing.T) {
	assert.Equal(t, Compute(2026).List(), Compute(2026).List())
}

func TestSetOnIgnoresOtherYears(t *testing.T) {
	set := Compute(2025)
	_, ok := set.On(date(2025, time.September, 18))
	assert.True(t, ok)
	_, ok = set.On(date(2026, time.September, 18))
	assert.False(t, ok)
}

func TestInMonth(t *testing.T) {
	sept := Compute(2025).InMonth(time.September)
	require.Len(t, sept, 2)
	assert.Equal(t, 18, sept[0].Day)
	assert.Equal(t, 19, sept[1].Day)
	assert.Empty(t, Compute(2025).InMonth(time.February))
}

func TestCalendarMemoizesConcurrently(t *testing.T) {
	c := NewCalendar()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, c.IsHoliday(date(2025, time.December, 25)))
		}()
	}
	wg.Wait()

	h, ok := c.On(date(2024, time.March, 29))
	require.True(t, ok)
	assert.Equal(t, "Viernes Santo", h.Name)
	assert.False(t, c.IsHoliday(date(2024, time.March, 28)))
}

func TestICSExport(t *testing.T) {
	set := Compute(2024)
	out := ICS(set, ICSOptions{
		ClinicName: "Veterinaria Pochita",
		UIDDomain:  "pochita.cl",
		Stamp:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "feriado-20240329@pochita.cl")

	parsed, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := parsed.Events()
	require.Len(t, events, set.Len())

	summaries := map[string]bool{}
	for _, ev := range events {
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			summaries[p.Value] = true
		}
	}
	assert.True(t, summaries["Viernes Santo"])
	assert.True(t, summaries["Navidad"])
}
