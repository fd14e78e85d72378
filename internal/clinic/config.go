// Package clinic provides the clinic profile: contact data, opening hours and
// the bookable service catalog.
package clinic

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/pochita-booking/internal/holidays"
)

// DayHours represents the opening hours for a single day.
// Nil means the clinic is closed that day.
type DayHours struct {
	Open  string `json:"open" yaml:"open"`   // "09:00" in 24-hour format
	Close string `json:"close" yaml:"close"` // "18:00" in 24-hour format
}

// BusinessHours maps day names to their hours.
type BusinessHours struct {
	Monday    *DayHours `json:"monday,omitempty" yaml:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty" yaml:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty" yaml:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty" yaml:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty" yaml:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty" yaml:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty" yaml:"sunday,omitempty"`
}

// EmergencyContact is shown when the clinic is closed.
type EmergencyContact struct {
	WhatsApp string `json:"whatsapp" yaml:"whatsapp"` // digits only, e.g. 56949729777
	Phone    string `json:"phone" yaml:"phone"`
}

// Service is one bookable service inside an area.
type Service struct {
	Code  string `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
}

// Area groups services by medical area.
type Area struct {
	Code     string    `json:"code" yaml:"code"`
	Label    string    `json:"label" yaml:"label"`
	Services []Service `json:"services" yaml:"services"`
}

// Config is the clinic profile.
type Config struct {
	ClinicID      string           `json:"clinic_id" yaml:"clinic_id"`
	Name          string           `json:"name" yaml:"name"`
	Branch        string           `json:"branch" yaml:"branch"`
	BranchName    string           `json:"branch_name" yaml:"branch_name"`
	Address       string           `json:"address,omitempty" yaml:"address,omitempty"`
	Email         string           `json:"email,omitempty" yaml:"email,omitempty"`
	Timezone      string           `json:"timezone" yaml:"timezone"`
	Emergency     EmergencyContact `json:"emergency" yaml:"emergency"`
	BusinessHours BusinessHours    `json:"business_hours" yaml:"business_hours"`
	Areas         []Area           `json:"areas" yaml:"areas"`
	UpdatedAt     time.Time        `json:"updated_at,omitempty" yaml:"-"`
}

// DefaultCatalog is the service catalog offered by the booking wizard.
func DefaultCatalog() []Area {
	return []Area{
		{Code: "CONSULTA_VETERINARIA", Label: "Consulta Veterinaria", Services: []Service{
			{Code: "CONSULTA_VETERINARIA", Label: "Consulta Veterinaria"},
			{Code: "VACUNACION", Label: "Vacunación"},
			{Code: "URGENCIA", Label: "Urgencia"},
		}},
		{Code: "EXAMENES", Label: "Exámenes", Services: []Service{
			{Code: "ANALISIS_SANGRE", Label: "Análisis de Sangre"},
			{Code: "ANALISIS_ORINA", Label: "Análisis de Orina"},
			{Code: "RADIOLOGIA", Label: "Radiología"},
		}},
		{Code: "IMAGENOLOGIA", Label: "Imagenología", Services: []Service{
			{Code: "RADIOGRAFIA", Label: "Radiografía"},
			{Code: "ULTRASONIDO", Label: "Ultrasonido"},
			{Code: "ECOCARDIOGRAMA", Label: "Ecocardiograma"},
		}},
		{Code: "CONSULTA_ESPECIALISTA", Label: "Consulta Especialista", Services: []Service{
			{Code: "DERMATOLOGIA", Label: "Dermatología"},
			{Code: "CARDIOLOGIA", Label: "Cardiología"},
			{Code: "NEUROLOGIA", Label: "Neurología"},
		}},
	}
}

// DefaultConfig returns the Pochita Chiguayante profile.
func DefaultConfig(clinicID string) *Config {
	weekday := func() *DayHours { return &DayHours{Open: "09:00", Close: "19:00"} }
	return &Config{
		ClinicID:   clinicID,
		Name:       "Veterinaria Pochita",
		Branch:     "CHIGUAYANTE",
		BranchName: "Chiguayante",
		Timezone:   "America/Santiago",
		Emergency: EmergencyContact{
			WhatsApp: "56949729777",
			Phone:    "+56 9 4972 9777",
		},
		BusinessHours: BusinessHours{
			Monday:    weekday(),
			Tuesday:   weekday(),
			Wednesday: weekday(),
			Thursday:  weekday(),
			Friday:    weekday(),
			Saturday:  &DayHours{Open: "10:00", Close: "14:00"},
		},
		Areas: DefaultCatalog(),
	}
}

// Validate checks the fields the booking flow depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("clinic: name required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("clinic: invalid timezone %q: %w", c.Timezone, err)
	}
	for _, d := range []*DayHours{
		c.BusinessHours.Monday, c.BusinessHours.Tuesday, c.BusinessHours.Wednesday,
		c.BusinessHours.Thursday, c.BusinessHours.Friday, c.BusinessHours.Saturday, c.BusinessHours.Sunday,
	} {
		if d == nil {
			continue
		}
		open, err1 := time.Parse("15:04", d.Open)
		closing, err2 := time.Parse("15:04", d.Close)
		if err1 != nil || err2 != nil || !open.Before(closing) {
			return fmt.Errorf("clinic: invalid hours %s-%s", d.Open, d.Close)
		}
	}
	for _, a := range c.Areas {
		if a.Code == "" || len(a.Services) == 0 {
			return fmt.Errorf("clinic: area %q needs a code and services", a.Label)
		}
	}
	return nil
}

// Location returns the clinic time zone, UTC when unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FindArea looks up an area by code.
func (c *Config) FindArea(code string) (Area, bool) {
	for _, a := range c.Areas {
		if strings.EqualFold(a.Code, code) {
			return a, true
		}
	}
	return Area{}, false
}

// FindService looks up a service inside an area.
func (c *Config) FindService(areaCode, serviceCode string) (Service, bool) {
	area, ok := c.FindArea(areaCode)
	if !ok {
		return Service{}, false
	}
	for _, s := range area.Services {
		if strings.EqualFold(s.Code, serviceCode) {
			return s, true
		}
	}
	return Service{}, false
}

// GetHoursForDay returns the hours for a given weekday (0=Sunday, 6=Saturday).
func (b *BusinessHours) GetHoursForDay(weekday time.Weekday) *DayHours {
	switch weekday {
	case time.Sunday:
		return b.Sunday
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return nil
	}
}

// IsOpenAt reports whether the clinic is open at t. Holidays are closed
// regardless of the weekday schedule.
func (c *Config) IsOpenAt(t time.Time, hs *holidays.Calendar) bool {
	local := t.In(c.Location())
	if hs != nil && hs.IsHoliday(local) {
		return false
	}
	hours := c.BusinessHours.GetHoursForDay(local.Weekday())
	if hours == nil {
		return false
	}
	open, err := time.Parse("15:04", hours.Open)
	if err != nil {
		return false
	}
	closing, err := time.Parse("15:04", hours.Close)
	if err != nil {
		return false
	}
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= open.Hour()*60+open.Minute() && minutes < closing.Hour()*60+closing.Minute()
}

// NextOpenTime returns when the clinic next opens, skipping holidays.
// Returns t if already open, and the zero time when no opening is found
// within two weeks.
func (c *Config) NextOpenTime(t time.Time, hs *holidays.Calendar) time.Time {
	loc := c.Location()
	local := t.In(loc)
	if c.IsOpenAt(local, hs) {
		return local
	}
	for i := 0; i < 14; i++ {
		day := local.AddDate(0, 0, i)
		if hs != nil && hs.IsHoliday(day) {
			continue
		}
		hours := c.BusinessHours.GetHoursForDay(day.Weekday())
		if hours == nil {
			continue
		}
		open, err := time.Parse("15:04", hours.Open)
		if err != nil {
			continue
		}
		at := time.Date(day.Year(), day.Month(), day.Day(), open.Hour(), open.Minute(), 0, 0, loc)
		if at.After(local) {
			return at
		}
	}
	return time.Time{}
}

// WeekSchedule renders the opening hours as Spanish display rows, Monday first.
func (c *Config) WeekSchedule() []ScheduleRow {
	days := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
	rows := make([]ScheduleRow, 0, len(days))
	for _, d := range days {
		row := ScheduleRow{Day: weekdayNames[d], Hours: "Cerrado"}
		if h := c.BusinessHours.GetHoursForDay(d); h != nil {
			row.Hours = h.Open + " - " + h.Close
			row.Open = true
		}
		rows = append(rows, row)
	}
	return rows
}

// ScheduleRow is one weekday in WeekSchedule.
type ScheduleRow struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
	Open  bool   `json:"open"`
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}
