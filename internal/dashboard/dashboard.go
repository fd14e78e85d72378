// Package dashboard builds the role-aware landing panel: menu, upcoming
// appointments and staff statistics.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/format"
)

// UpcomingLimit caps the landing panel list.
const UpcomingLimit = 5

// MenuItem is one navigation entry.
type MenuItem struct {
	Section string `json:"section"`
	Label   string `json:"label"`
	Path    string `json:"path"`
}

// Menu returns the sections visible to role.
func Menu(role backend.Role) []MenuItem {
	switch role {
	case backend.RoleClient:
		return []MenuItem{
			{Section: "pets", Label: "Mis Mascotas", Path: "/dashboard/pets/"},
			{Section: "appointments", Label: "Mis Citas", Path: "/dashboard/appointments/"},
			{Section: "medical-records", Label: "Historial Médico", Path: "/dashboard/medical-records/"},
		}
	case backend.RoleVeterinarian:
		return []MenuItem{
			{Section: "medical-records", Label: "Fichas Médicas", Path: "/dashboard/medical-records/"},
			{Section: "agenda", Label: "Mi Agenda", Path: "/dashboard/appointments/"},
		}
	case backend.RoleReceptionist:
		return []MenuItem{
			{Section: "appointments", Label: "Gestión de Citas", Path: "/dashboard/appointments/"},
			{Section: "calendar", Label: "Calendario de Citas", Path: "/calendario/"},
		}
	}
	return nil
}

// RoleLabel is the role caption shown under the user name.
func RoleLabel(role backend.Role) string {
	if role == "" {
		return "Usuario"
	}
	return string(role)
}

// DisplayName is the header name for u.
func DisplayName(u backend.User) string {
	if name := u.FullName(); name != "" {
		return name
	}
	return "Usuario"
}

// Badge is a status pill.
type Badge struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

var statusBadges = map[backend.Status]Badge{
	backend.StatusPending:     {Label: "Pendiente", Tone: "warning"},
	backend.StatusConfirmed:   {Label: "Confirmada", Tone: "success"},
	backend.StatusAttended:    {Label: "Atendida", Tone: "info"},
	backend.StatusCancelled:   {Label: "Cancelada", Tone: "danger"},
	backend.StatusRescheduled: {Label: "Reprogramada", Tone: "secondary"},
}

// StatusBadge maps an appointment status to its pill. Unknown statuses keep
// their raw text.
func StatusBadge(s backend.Status) Badge {
	if b, ok := statusBadges[s]; ok {
		return b
	}
	return Badge{Label: string(s), Tone: "secondary"}
}

// Item is an appointment prepared for display.
type Item struct {
	backend.Appointment
	DateLabel string `json:"date_label"`
	TimeLabel string `json:"time_label"`
	Badge     Badge  `json:"badge"`
	// CanAttend marks the veterinarian's own confirmed appointments.
	CanAttend bool `json:"can_attend"`
}

func newItem(a backend.Appointment, viewer backend.User) Item {
	it := Item{Appointment: a, Badge: StatusBadge(a.Status), TimeLabel: format.Time(a.AppointmentTime)}
	it.DateLabel = format.DateInput(a.AppointmentDate)
	it.CanAttend = viewer.Role == backend.RoleVeterinarian && a.Veterinarian == viewer.ID && a.Status == backend.StatusConfirmed
	return it
}

// dateKey normalizes backend dates and timestamps to YYYY-MM-DD.
func dateKey(s string) string {
	t, err := format.ParseDate(s)
	if err != nil {
		return s
	}
	return format.DateString(t)
}

// sortKey orders by date then time; a missing time sorts first.
func sortKey(a backend.Appointment) string {
	t := a.AppointmentTime
	if t == "" {
		t = "00:00:00"
	}
	return dateKey(a.AppointmentDate) + "T" + t
}

func sortByDate(apts []backend.Appointment) {
	sort.SliceStable(apts, func(i, j int) bool { return sortKey(apts[i]) < sortKey(apts[j]) })
}

// Upcoming picks the landing list: a veterinarian sees only their own
// confirmed appointments, everyone else every appointment not cancelled.
// Sorted by date, at most UpcomingLimit.
func Upcoming(apts []backend.Appointment, viewer backend.User) []Item {
	var keep []backend.Appointment
	for _, a := range apts {
		if viewer.Role == backend.RoleVeterinarian {
			if a.Veterinarian == viewer.ID && a.Status == backend.StatusConfirmed {
				keep = append(keep, a)
			}
			continue
		}
		if a.Status != backend.StatusCancelled {
			keep = append(keep, a)
		}
	}
	sortByDate(keep)
	if len(keep) > UpcomingLimit {
		keep = keep[:UpcomingLimit]
	}
	items := make([]Item, 0, len(keep))
	for _, a := range keep {
		items = append(items, newItem(a, viewer))
	}
	return items
}

// Agenda is the appointments section split by time.
type Agenda struct {
	Title     string `json:"title"`
	Upcoming  []Item `json:"upcoming"`
	Past      []Item `json:"past"`
	Cancelled []Item `json:"cancelled"`
}

// BuildAgenda filters apts to what viewer may see and splits them into
// upcoming (today or later), past and cancelled.
func BuildAgenda(apts []backend.Appointment, viewer backend.User, today time.Time) Agenda {
	ag := Agenda{Title: "Mis Citas", Upcoming: []Item{}, Past: []Item{}, Cancelled: []Item{}}
	switch viewer.Role {
	case backend.RoleVeterinarian:
		ag.Title = "Mi Agenda"
	case backend.RoleReceptionist:
		ag.Title = "Gestión de Citas"
	}
	visible := make([]backend.Appointment, 0, len(apts))
	for _, a := range apts {
		switch viewer.Role {
		case backend.RoleVeterinarian:
			if a.Veterinarian != viewer.ID {
				continue
			}
		case backend.RoleReceptionist:
		default:
			if a.Client != viewer.ID {
				continue
			}
		}
		visible = append(visible, a)
	}
	sortByDate(visible)

	todayStr := format.DateString(today)
	for _, a := range visible {
		it := newItem(a, viewer)
		switch {
		case a.Status == backend.StatusCancelled:
			ag.Cancelled = append(ag.Cancelled, it)
		case dateKey(a.AppointmentDate) >= todayStr:
			ag.Upcoming = append(ag.Upcoming, it)
		default:
			ag.Past = append(ag.Past, it)
		}
	}
	return ag
}

// Stats are the staff counters.
type Stats struct {
	TodayAppointments int `json:"today_appointments"`
	Pending           int `json:"pending"`
	Pets              int `json:"pets"`
}

// ComputeStats counts today's and pending appointments plus pets.
func ComputeStats(apts []backend.Appointment, pets []backend.Pet, today time.Time) Stats {
	todayStr := format.DateString(today)
	var st Stats
	for _, a := range apts {
		if dateKey(a.AppointmentDate) == todayStr {
			st.TodayAppointments++
		}
		if a.Status == backend.StatusPending {
			st.Pending++
		}
	}
	st.Pets = len(pets)
	return st
}

// Source is the backend data the panel needs. *backend.UserClient satisfies it.
type Source interface {
	ListAppointments(ctx context.Context) ([]backend.Appointment, error)
	ListPets(ctx context.Context) ([]backend.Pet, error)
}

// Panel is the landing page payload.
type Panel struct {
	UserName  string     `json:"user_name"`
	RoleLabel string     `json:"role_label"`
	Menu      []MenuItem `json:"menu"`
	Upcoming  []Item     `json:"upcoming"`
	Stats     *Stats     `json:"stats,omitempty"`
}

// Build assembles the landing panel for user. Statistics are only loaded
// for staff.
func Build(ctx context.Context, src Source, user backend.User, today time.Time) (*Panel, error) {
	apts, err := src.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: appointments: %w", err)
	}
	p := &Panel{
		UserName:  DisplayName(user),
		RoleLabel: RoleLabel(user.Role),
		Menu:      Menu(user.Role),
		Upcoming:  Upcoming(apts, user),
	}
	if user.Role == backend.RoleReceptionist || user.Role == backend.RoleVeterinarian {
		pets, err := src.ListPets(ctx)
		if err != nil {
			return nil, fmt.Errorf("dashboard: pets: %w", err)
		}
		st := ComputeStats(apts, pets, today)
		p.Stats = &st
	}
	return p, nil
}
