package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/wolfman30/pochita-booking/internal/calendar"
)

// Role is a backend user role.
type Role string

const (
	RoleClient       Role = "CLIENTE"
	RoleReceptionist Role = "RECEPCIONISTA"
	RoleVeterinarian Role = "VETERINARIO"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusPending     Status = "PENDIENTE"
	StatusConfirmed   Status = "CONFIRMADA"
	StatusAttended    Status = "ATENDIDA"
	StatusCancelled   Status = "CANCELADA"
	StatusRescheduled Status = "REPROGRAMADA"
)

// FlexInt decodes ids the backend sometimes renders as strings inside
// validation payloads.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// Tokens is the JWT pair issued on login.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials is the login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is a backend account.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	RUT       string `json:"rut,omitempty"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Registration is the sign-up payload.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            Role   `json:"role,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
	RUT             string `json:"rut,omitempty"`
}

// MonthlyCalendar is the availability payload for one month.
type MonthlyCalendar struct {
	Year     int                        `json:"year"`
	Month    int                        `json:"month"`
	Calendar []calendar.DayAvailability `json:"calendar"`
}

// Appointment mirrors the backend appointment resource.
type Appointment struct {
	ID               int    `json:"id"`
	Pet              int    `json:"pet"`
	PetName          string `json:"pet_name,omitempty"`
	Client           int    `json:"client"`
	ClientName       string `json:"client_name,omitempty"`
	Veterinarian     int    `json:"veterinarian"`
	VeterinarianName string `json:"veterinarian_name,omitempty"`
	TimeSlot         int    `json:"time_slot"`
	AppointmentDate  string `json:"appointment_date"`
	AppointmentTime  string `json:"appointment_time"`
	Reason           string `json:"reason"`
	Status           Status `json:"status"`
	StatusDisplay    string `json:"status_display,omitempty"`
	Notes            string `json:"notes,omitempty"`
	RescheduledFrom  int    `json:"rescheduled_from,omitempty"`
}

// AppointmentRequest creates an appointment.
type AppointmentRequest struct {
	Pet             int    `json:"pet"`
	Client          int    `json:"client"`
	Veterinarian    int    `json:"veterinarian"`
	TimeSlot        int    `json:"time_slot"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes,omitempty"`
}

// RescheduleRequest moves an appointment to a new slot.
type RescheduleRequest struct {
	NewDate         string `json:"new_date"`
	NewTime         string `json:"new_time"`
	NewVeterinarian int    `json:"new_veterinarian,omitempty"`
	NewTimeSlot     int    `json:"new_time_slot,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// PartyInfo is the compact client or pet echo returned by lifecycle actions.
type PartyInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Species string `json:"species,omitempty"`
}

// ActionResult is returned by reschedule, cancel and attend.
type ActionResult struct {
	Message          string         `json:"message"`
	Appointment      *Appointment   `json:"appointment,omitempty"`
	Client           *PartyInfo     `json:"client,omitempty"`
	Pet              *PartyInfo     `json:"pet,omitempty"`
	OldData          map[string]any `json:"old_data,omitempty"`
	FreedSlot        map[string]any `json:"freed_slot,omitempty"`
	WaitingListCount int            `json:"waiting_list_count,omitempty"`
}

// Pet mirrors the backend pet resource.
type Pet struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed,omitempty"`
	Gender    string  `json:"gender,omitempty"`
	BirthDate string  `json:"birth_date,omitempty"`
	Color     string  `json:"color,omitempty"`
	Weight    FlexNum `json:"weight,omitempty"`
	Owner     int     `json:"owner"`
	OwnerName string  `json:"owner_name,omitempty"`
	Microchip string  `json:"microchip,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	IsActive  bool    `json:"is_active"`
	Age       int     `json:"age,omitempty"`
}

// PetRequest creates a pet. Only dogs and cats are accepted.
type PetRequest struct {
	Name      string `json:"name"`
	Species   string `json:"species"`
	Breed     string `json:"breed,omitempty"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date,omitempty"`
	Color     string `json:"color,omitempty"`
	Weight    string `json:"weight,omitempty"`
	Microchip string `json:"microchip,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// PreRegistration registers a pet for an owner who has no account yet.
type PreRegistration struct {
	PetRequest
	OwnerEmail string `json:"owner_email"`
	OwnerName  string `json:"owner_name"`
	OwnerPhone string `json:"owner_phone,omitempty"`
}

// MedicalRecord is one clinical visit entry.
type MedicalRecord struct {
	ID               int     `json:"id,omitempty"`
	Pet              int     `json:"pet"`
	PetName          string  `json:"pet_name,omitempty"`
	Veterinarian     int     `json:"veterinarian,omitempty"`
	VeterinarianName string  `json:"veterinarian_name,omitempty"`
	VisitDate        string  `json:"visit_date,omitempty"`
	Reason           string  `json:"reason"`
	Diagnosis        string  `json:"diagnosis"`
	Treatment        string  `json:"treatment"`
	Prescription     string  `json:"prescription,omitempty"`
	WeightAtVisit    FlexNum `json:"weight_at_visit,omitempty"`
	Temperature      FlexNum `json:"temperature,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	NextVisit        string  `json:"next_visit,omitempty"`
}

// FlexNum holds decimals the backend serializes as strings ("12.50").
type FlexNum string

func (f *FlexNum) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "null" {
		s = ""
	}
	*f = FlexNum(s)
	return nil
}

// decodeList accepts a bare array or a paginated {"results": [...]} page.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}
