package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/wolfman30/pochita-booking/internal/format"
	"github.com/wolfman30/pochita-booking/internal/holidays"
)

// ErrDateNotInData is returned when a day has no availability records.
var ErrDateNotInData = errors.New("calendar: no availability for date")

// VetSlots is one veterinarian's slots on a selected day.
type VetSlots struct {
	VeterinarianID   int            `json:"veterinarian_id"`
	VeterinarianName string         `json:"veterinarian_name"`
	Available        []Slot         `json:"available_slots"`
	Occupied         []OccupiedSlot `json:"occupied_slots"`
}

// Day is the per-veterinarian breakdown of a selected date.
type Day struct {
	Date           string        `json:"date"`
	Label          string        `json:"label"`
	IsHoliday      bool          `json:"is_holiday"`
	HolidayName    string        `json:"holiday_name,omitempty"`
	AvailableCount int           `json:"available_count"`
	OccupiedCount  int           `json:"occupied_count"`
	Veterinarians  []VetSlots    `json:"veterinarians"`
	Closed         *ClosedNotice `json:"closed,omitempty"`
}

// DayDetail groups the records of date by veterinarian, ordering vets by name
// and slots by start time. Holidays return no slots.
func DayDetail(date string, days []DayAvailability, hs holidays.Set) (Day, error) {
	t, err := format.ParseDate(date)
	if err != nil {
		return Day{}, err
	}
	out := Day{Date: format.DateString(t), Label: format.LongDateWithWeekday(t)}
	if h, ok := hs.On(t); ok {
		out.IsHoliday = true
		out.HolidayName = h.Name
		return out, nil
	}

	byVet := map[int]*VetSlots{}
	for _, d := range days {
		if d.Date != out.Date {
			continue
		}
		v, ok := byVet[d.VeterinarianID]
		if !ok {
			v = &VetSlots{VeterinarianID: d.VeterinarianID, VeterinarianName: d.VeterinarianName}
			byVet[d.VeterinarianID] = v
		}
		for _, s := range d.AvailableSlots {
			s.VeterinarianID = d.VeterinarianID
			v.Available = append(v.Available, s)
		}
		v.Occupied = append(v.Occupied, d.OccupiedSlots...)
	}
	if len(byVet) == 0 {
		return out, fmt.Errorf("%w: %s", ErrDateNotInData, out.Date)
	}

	for _, v := range byVet {
		sort.SliceStable(v.Available, func(i, j int) bool { return v.Available[i].StartTime < v.Available[j].StartTime })
		sort.SliceStable(v.Occupied, func(i, j int) bool { return v.Occupied[i].StartTime < v.Occupied[j].StartTime })
		out.AvailableCount += len(v.Available)
		out.OccupiedCount += len(v.Occupied)
		out.Veterinarians = append(out.Veterinarians, *v)
	}
	sort.Slice(out.Veterinarians, func(i, j int) bool {
		a, b := out.Veterinarians[i], out.Veterinarians[j]
		if a.VeterinarianName != b.VeterinarianName {
			return a.VeterinarianName < b.VeterinarianName
		}
		return a.VeterinarianID < b.VeterinarianID
	})
	return out, nil
}

// ClosedNotice is shown when a holiday is clicked.
type ClosedNotice struct {
	Title       string `json:"title"`
	HolidayName string `json:"holiday_name"`
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// NewClosedNotice builds the emergency-contact notice for a holiday.
// whatsAppNumber is digits only, e.g. "56949729777".
func NewClosedNotice(holidayName, whatsAppNumber, phone string) ClosedNotice {
	if holidayName == "" {
		holidayName = HolidayBadge
	}
	n := ClosedNotice{
		Title:       "¡Clínica Cerrada por Feriado!",
		HolidayName: holidayName,
		Message:     "La clínica está cerrada en días feriados. Si hay una emergencia, contáctenos por WhatsApp o teléfono.",
		Phone:       phone,
	}
	if whatsAppNumber != "" {
		text := url.QueryEscape("Hola, tengo una emergencia veterinaria y necesito atención urgente.")
		n.WhatsAppURL = "https://wa.me/" + whatsAppNumber + "?text=" + text
	}
	return n
}
