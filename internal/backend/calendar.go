package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func monthQuery(year, month, vetID int) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	if vetID > 0 {
		q.Set("veterinarian_id", strconv.Itoa(vetID))
	}
	return q.Encode()
}

// MonthlyCalendar returns per-veterinarian availability for a month. vetID 0
// means every veterinarian. The backend refuses veterinarians (403) and
// months outside 1..12 (400).
func (u *UserClient) MonthlyCalendar(ctx context.Context, year, month, vetID int) (*MonthlyCalendar, error) {
	path := "/api/appointments/calendar/monthly/?" + monthQuery(year, month, vetID)
	var out MonthlyCalendar
	if err := u.call(ctx, "monthly_calendar", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Year == 0 {
		out.Year, out.Month = year, month
	}
	return &out, nil
}

// PublicAvailability returns one veterinarian's free slots for a month
// without authentication.
func (c *Client) PublicAvailability(ctx context.Context, year, month, vetID int) (*MonthlyCalendar, error) {
	if vetID <= 0 {
		return nil, fmt.Errorf("public_availability: veterinarian id required")
	}
	path := "/api/appointments/availability/public/?" + monthQuery(year, month, vetID)
	var out MonthlyCalendar
	if err := c.doJSON(ctx, "public_availability", http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	out.Year, out.Month = year, month
	return &out, nil
}
