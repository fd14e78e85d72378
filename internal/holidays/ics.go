package holidays

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ICSOptions tunes the iCalendar export.
type ICSOptions struct {
	ClinicName string
	// UIDDomain makes event UIDs globally unique, e.g. "pochita.cl".
	UIDDomain string
	// Stamp is written as DTSTAMP; zero means now.
	Stamp time.Time
}

// ICS renders a year of holidays as an iCalendar feed of all-day events.
func ICS(set Set, opts ICSOptions) string {
	if opts.ClinicName == "" {
		opts.ClinicName = "Clínica Veterinaria"
	}
	if opts.UIDDomain == "" {
		opts.UIDDomain = "localhost"
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//%s//Feriados %d//ES", opts.ClinicName, set.Year))
	cal.SetXWRCalName(fmt.Sprintf("Feriados %s %d", opts.ClinicName, set.Year))

	for _, h := range set.List() {
		day := h.Date(set.Year)
		uid := fmt.Sprintf("feriado-%s@%s", day.Format("20060102"), opts.UIDDomain)
		event := cal.AddEvent(uid)
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(h.Name)
		event.SetDescription(fmt.Sprintf("%s cerrada por feriado: %s", opts.ClinicName, h.Name))
	}
	return cal.Serialize()
}
