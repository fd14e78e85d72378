// Package holidays computes the Chilean public holidays the clinic closes on.
package holidays

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"
)

// Origin says whether a holiday comes from the fixed table or a rule.
type Origin string

const (
	OriginFixed    Origin = "fixed"
	OriginComputed Origin = "computed"
)

// Holiday is one closed day of a year.
type Holiday struct {
	Month  time.Month `json:"month"`
	Day    int        `json:"day"`
	Name   string     `json:"name"`
	Origin Origin     `json:"origin"`
}

// Date returns the holiday as a UTC midnight in the given year.
func (h Holiday) Date(year int) time.Time {
	return time.Date(year, h.Month, h.Day, 0, 0, 0, 0, time.UTC)
}

// A fixed-date holiday falling on Sunday is observed on the next Monday.
var sundayToMonday = []cal.AltDay{{Day: time.Sunday, Offset: 1}}

var fixedRules = []*cal.Holiday{
	{Name: "Año Nuevo", Month: time.January, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "Día del Trabajador", Month: time.May, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "Día de las Glorias Navales", Month: time.May, Day: 21, Func: cal.CalcDayOfMonth},
	{Name: "Asunción de la Virgen", Month: time.August, Day: 15, Func: cal.CalcDayOfMonth},
	{Name: "Día de la Independencia Nacional", Month: time.September, Day: 18, Func: cal.CalcDayOfMonth},
	{Name: "Día del Ejército", Month: time.September, Day: 19, Func: cal.CalcDayOfMonth},
	{Name: "Día de Todos los Santos", Month: time.November, Day: 1, Func: cal.CalcDayOfMonth},
	{Name: "Inmaculada Concepción", Month: time.December, Day: 8, Func: cal.CalcDayOfMonth},
	{Name: "Navidad", Month: time.December, Day: 25, Func: cal.CalcDayOfMonth},
}

var computedRules = []*cal.Holiday{
	{Name: "San Pedro y San Pablo", Month: time.June, Day: 29, Observed: sundayToMonday, Func: cal.CalcDayOfMonth},
	{Name: "Encuentro de Dos Mundos", Month: time.October, Day: 12, Observed: sundayToMonday, Func: cal.CalcDayOfMonth},
	{Name: "Día de las Iglesias Evangélicas y Protestantes", Month: time.October, Day: 31, Observed: sundayToMonday, Func: cal.CalcDayOfMonth},
	{Name: "Viernes Santo", Offset: -2, Func: calcEasterOffset},
	{Name: "Sábado Santo", Offset: -1, Func: calcEasterOffset},
}

// Easter returns Western Easter Sunday for year using the Meeus/Jones/Butcher
// Gregorian algorithm. Valid from 1583.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func calcEasterOffset(h *cal.Holiday, year int) time.Time {
	return Easter(year).AddDate(0, 0, h.Offset)
}

type monthDay struct {
	month time.Month
	day   int
}

// Set is the holiday list of a single year. It is immutable once built.
type Set struct {
	Year   int
	byDate map[monthDay]Holiday
}

// Compute builds the holiday set for year. The result depends only on year.
//
// Fixed holidays are placed first. A computed holiday whose observed date is
// already taken stays on its base date; if that is taken too it is dropped, so
// a date never carries two names.
func Compute(year int) Set {
	s := Set{Year: year, byDate: make(map[monthDay]Holiday, len(fixedRules)+len(computedRules))}

	for _, rule := range fixedRules {
		actual, _ := rule.Calc(year)
		s.place(actual, rule.Name, OriginFixed)
	}
	for _, rule := range computedRules {
		actual, observed := rule.Calc(year)
		if s.place(observed, rule.Name, OriginComputed) {
			continue
		}
		s.place(actual, rule.Name, OriginComputed)
	}
	return s
}

func (s Set) place(t time.Time, name string, origin Origin) bool {
	if t.IsZero() {
		return false
	}
	key := monthDay{month: t.Month(), day: t.Day()}
	if _, taken := s.byDate[key]; taken {
		return false
	}
	s.byDate[key] = Holiday{Month: t.Month(), Day: t.Day(), Name: name, Origin: origin}
	return true
}

// Lookup returns the holiday on month/day of the set's year.
func (s Set) Lookup(month time.Month, day int) (Holiday, bool) {
	h, ok := s.byDate[monthDay{month: month, day: day}]
	return h, ok
}

// On returns the holiday falling on t's calendar date. Dates outside the
// set's year never match.
func (s Set) On(t time.Time) (Holiday, bool) {
	if t.Year() != s.Year {
		return Holiday{}, false
	}
	return s.Lookup(t.Month(), t.Day())
}

// Len returns the number of holidays in the set.
func (s Set) Len() int {
	return len(s.byDate)
}

// List returns the holidays in calendar order.
func (s Set) List() []Holiday {
	out := make([]Holiday, 0, len(s.byDate))
	for _, h := range s.byDate {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// InMonth returns the holidays of one month in day order.
func (s Set) InMonth(month time.Month) []Holiday {
	var out []Holiday
	for _, h := range s.List() {
		if h.Month == month {
			out = append(out, h)
		}
	}
	return out
}
