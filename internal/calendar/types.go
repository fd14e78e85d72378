// Package calendar turns monthly veterinarian availability and the holiday
// set into a render-ready month grid.
package calendar

import (
	"github.com/wolfman30/pochita-booking/internal/format"
)

// Slot is one bookable block of a veterinarian's time.
type Slot struct {
	ID             int    `json:"id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	VeterinarianID int    `json:"veterinarian_id,omitempty"`
}

// Label renders the slot as "09:00 - 09:30".
func (s Slot) Label() string {
	return format.Time(s.StartTime) + " - " + format.Time(s.EndTime)
}

// OccupiedSlot is a booked block. Appointment fields are only sent to staff.
type OccupiedSlot struct {
	TimeSlotID    int    `json:"time_slot_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	AppointmentID int    `json:"appointment_id,omitempty"`
	PetName       string `json:"pet_name,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
	Status        string `json:"status,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// DayAvailability is the backend record for one (date, veterinarian) pair.
type DayAvailability struct {
	Date             string         `json:"date"`
	VeterinarianID   int            `json:"veterinarian_id"`
	VeterinarianName string         `json:"veterinarian_name,omitempty"`
	AvailableSlots   []Slot         `json:"available_slots"`
	OccupiedSlots    []OccupiedSlot `json:"occupied_slots"`
}

// ForVeterinarian keeps only the records of vetID. Zero keeps everything.
func ForVeterinarian(days []DayAvailability, vetID int) []DayAvailability {
	if vetID == 0 {
		return days
	}
	out := make([]DayAvailability, 0, len(days))
	for _, d := range days {
		if d.VeterinarianID == vetID {
			out = append(out, d)
		}
	}
	return out
}

// FindSlot looks up an available slot by id on date.
func FindSlot(days []DayAvailability, date string, slotID int) (Slot, DayAvailability, bool) {
	for _, d := range days {
		if d.Date != date {
			continue
		}
		for _, s := range d.AvailableSlots {
			if s.ID == slotID {
				s.VeterinarianID = d.VeterinarianID
				return s, d, true
			}
		}
	}
	return Slot{}, DayAvailability{}, false
}
