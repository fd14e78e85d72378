// Package booking implements the appointment wizard: service, veterinarian,
// date and slot, identification, then confirmation against the backend.
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/calendar"
	"github.com/wolfman30/pochita-booking/internal/clinic"
)

// DefaultReason is sent when the user gives no reason.
const DefaultReason = "Consulta veterinaria"

// SubmitFallbackMessage is shown when the backend gives no usable reason.
const SubmitFallbackMessage = "Error al agendar la cita"

// Step is a wizard state.
type Step int

const (
	StepServiceSelection Step = iota + 1
	StepVeterinarianSelection
	StepDateTimeSelection
	StepIdentification
	StepConfirmed
)

var stepNames = map[Step]string{
	StepServiceSelection:      "service_selection",
	StepVeterinarianSelection: "veterinarian_selection",
	StepDateTimeSelection:     "date_time_selection",
	StepIdentification:        "identification",
	StepConfirmed:             "confirmed",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Mode tells whether the wizard creates or moves an appointment.
type Mode string

const (
	ModeCreate     Mode = "create"
	ModeReschedule Mode = "reschedule"
)

// Veterinarian is the selected veterinarian.
type Veterinarian struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// VeterinarianFromUser converts a staff directory entry.
func VeterinarianFromUser(u backend.User) Veterinarian {
	return Veterinarian{ID: u.ID, Name: u.FullName(), Email: u.Email}
}

// Identity is the authenticated user driving the wizard.
type Identity struct {
	UserID int          `json:"user_id"`
	Name   string       `json:"name"`
	Role   backend.Role `json:"role"`
}

// PetRef is the selected pet.
type PetRef struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species,omitempty"`
	OwnerID int    `json:"owner_id,omitempty"`
}

// Session is the persisted wizard state.
type Session struct {
	ID            string                            `json:"id"`
	Mode          Mode                              `json:"mode"`
	AppointmentID int                               `json:"appointment_id,omitempty"`
	Step          Step                              `json:"step"`
	AreaCode      string                            `json:"area_code,omitempty"`
	ServiceCode   string                            `json:"service_code,omitempty"`
	ServiceLabel  string                            `json:"service_label,omitempty"`
	Veterinarian  *Veterinarian                     `json:"veterinarian,omitempty"`
	Date          string                            `json:"date,omitempty"`
	Slot          *calendar.Slot                    `json:"slot,omitempty"`
	Identity      *Identity                         `json:"identity,omitempty"`
	Pet           *PetRef                           `json:"pet,omitempty"`
	Reason        string                            `json:"reason,omitempty"`
	Notes         string                            `json:"notes,omitempty"`
	Alternatives  []backend.AlternativeVeterinarian `json:"alternatives,omitempty"`
	LastError     string                            `json:"last_error,omitempty"`
	Result        *backend.Appointment              `json:"result,omitempty"`
	ResultMessage string                            `json:"result_message,omitempty"`
	CreatedAt     time.Time                         `json:"created_at"`
	UpdatedAt     time.Time                         `json:"updated_at"`
}

// New starts a booking wizard at service selection.
func New(id string, now time.Time) *Session {
	return &Session{ID: id, Mode: ModeCreate, Step: StepServiceSelection, CreatedAt: now, UpdatedAt: now}
}

// NewReschedule opens the wizard for an existing appointment. Service and pet
// are fixed; the user picks a new date and slot, optionally with another
// veterinarian.
func NewReschedule(id string, apt backend.Appointment, now time.Time) *Session {
	s := New(id, now)
	s.Mode = ModeReschedule
	s.AppointmentID = apt.ID
	s.Step = StepDateTimeSelection
	s.Reason = apt.Reason
	if apt.Veterinarian != 0 {
		s.Veterinarian = &Veterinarian{ID: apt.Veterinarian, Name: apt.VeterinarianName}
	} else {
		s.Step = StepVeterinarianSelection
	}
	s.Pet = &PetRef{ID: apt.Pet, Name: apt.PetName, OwnerID: apt.Client}
	return s
}

// firstStep is where Back stops.
func (s *Session) firstStep() Step {
	if s.Mode == ModeReschedule {
		return StepVeterinarianSelection
	}
	return StepServiceSelection
}

func (s *Session) mutable(steps ...Step) error {
	if s.Step == StepConfirmed {
		return ErrAlreadyConfirmed
	}
	for _, st := range steps {
		if s.Step == st {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWrongStep, s.Step)
}

// SelectService records the area and service chosen from the catalog.
func (s *Session) SelectService(cfg *clinic.Config, areaCode, serviceCode string) error {
	if err := s.mutable(StepServiceSelection); err != nil {
		return err
	}
	if areaCode == "" || serviceCode == "" {
		return ErrServiceRequired
	}
	svc, ok := cfg.FindService(areaCode, serviceCode)
	if !ok {
		return ErrUnknownService
	}
	area, _ := cfg.FindArea(areaCode)
	s.AreaCode = area.Code
	s.ServiceCode = svc.Code
	s.ServiceLabel = svc.Label
	return nil
}

// SelectVeterinarian records the veterinarian. Changing it drops the date
// and slot chosen for the previous one.
func (s *Session) SelectVeterinarian(v Veterinarian) error {
	if err := s.mutable(StepVeterinarianSelection); err != nil {
		return err
	}
	if v.ID <= 0 {
		return ErrVeterinarianRequired
	}
	if s.Veterinarian == nil || s.Veterinarian.ID != v.ID {
		s.Date = ""
		s.Slot = nil
	}
	vet := v
	s.Veterinarian = &vet
	s.Alternatives = nil
	return nil
}

// SelectDate picks a day on the rendered month. Only selectable cells of the
// month are accepted. Changing the date drops the slot.
func (s *Session) SelectDate(m calendar.Month, date string) error {
	if err := s.mutable(StepDateTimeSelection); err != nil {
		return err
	}
	if s.Veterinarian == nil {
		return ErrVeterinarianRequired
	}
	if date == "" {
		return ErrDateRequired
	}
	cell, ok := m.Cell(date)
	if !ok || !cell.InMonth || !cell.Selectable {
		return ErrDateNotSelectable
	}
	if s.Date != cell.Date {
		s.Slot = nil
	}
	s.Date = cell.Date
	return nil
}

// SelectSlot picks one of the veterinarian's free slots on the selected date
// and moves on to identification.
func (s *Session) SelectSlot(days []calendar.DayAvailability, slotID int) error {
	if err := s.mutable(StepDateTimeSelection); err != nil {
		return err
	}
	if s.Veterinarian == nil {
		return ErrVeterinarianRequired
	}
	if s.Date == "" {
		return ErrDateRequired
	}
	slot, _, ok := calendar.FindSlot(calendar.ForVeterinarian(days, s.Veterinarian.ID), s.Date, slotID)
	if !ok {
		return ErrSlotNotAvailable
	}
	s.Slot = &slot
	s.Step = StepIdentification
	return nil
}

// Identify attaches the authenticated user. Veterinarians cannot book.
func (s *Session) Identify(u backend.User) error {
	if s.Step == StepConfirmed {
		return ErrAlreadyConfirmed
	}
	if u.ID <= 0 {
		return ErrNotAuthenticated
	}
	if u.Role == backend.RoleVeterinarian {
		return ErrRoleCannotBook
	}
	if s.Identity != nil && s.Identity.UserID != u.ID && s.Mode == ModeCreate {
		s.Pet = nil
	}
	s.Identity = &Identity{UserID: u.ID, Name: u.FullName(), Role: u.Role}
	return nil
}

// SelectPet picks the pet to book for. Clients may only pick their own pets.
func (s *Session) SelectPet(p backend.Pet) error {
	if err := s.mutable(StepIdentification); err != nil {
		return err
	}
	if s.Identity == nil {
		return ErrNotAuthenticated
	}
	if p.ID <= 0 {
		return ErrPetRequired
	}
	if s.Identity.Role == backend.RoleClient && p.Owner != 0 && p.Owner != s.Identity.UserID {
		return ErrPetNotOwned
	}
	s.Pet = &PetRef{ID: p.ID, Name: p.Name, Species: p.Species, OwnerID: p.Owner}
	return nil
}

// DefaultPet picks the first pet when none was chosen.
func (s *Session) DefaultPet(pets []backend.Pet) error {
	if s.Pet != nil {
		return nil
	}
	if len(pets) == 0 {
		return ErrPetRequired
	}
	return s.SelectPet(pets[0])
}

// SetReason records the free-text reason and notes.
func (s *Session) SetReason(reason, notes string) error {
	if s.Step == StepConfirmed {
		return ErrAlreadyConfirmed
	}
	s.Reason = reason
	s.Notes = notes
	return nil
}

// Next advances one step when the current step is complete. Confirmation
// goes through ReadyToConfirm and the backend instead.
func (s *Session) Next() error {
	switch s.Step {
	case StepServiceSelection:
		if s.AreaCode == "" || s.ServiceCode == "" {
			return ErrServiceRequired
		}
		s.Step = StepVeterinarianSelection
	case StepVeterinarianSelection:
		if s.Veterinarian == nil {
			return ErrVeterinarianRequired
		}
		s.Step = StepDateTimeSelection
	case StepDateTimeSelection:
		if s.Date == "" || s.Slot == nil {
			return ErrSlotRequired
		}
		s.Step = StepIdentification
	case StepIdentification:
		return fmt.Errorf("%w: confirm instead", ErrWrongStep)
	case StepConfirmed:
		return ErrAlreadyConfirmed
	}
	s.LastError = ""
	return nil
}

// Back returns to the previous step, keeping later selections.
func (s *Session) Back() error {
	if s.Step == StepConfirmed {
		return ErrAlreadyConfirmed
	}
	if s.Step <= s.firstStep() {
		return fmt.Errorf("%w: already at first step", ErrWrongStep)
	}
	s.Step--
	s.LastError = ""
	return nil
}

// ReadyToConfirm reports the first missing requirement for submission.
func (s *Session) ReadyToConfirm() error {
	if s.Step == StepConfirmed {
		return ErrAlreadyConfirmed
	}
	if s.Step != StepIdentification {
		return fmt.Errorf("%w: %s", ErrWrongStep, s.Step)
	}
	if s.Identity == nil {
		return ErrNotAuthenticated
	}
	if s.Veterinarian == nil {
		return ErrVeterinarianRequired
	}
	if s.Date == "" || s.Slot == nil {
		return ErrSlotRequired
	}
	if s.Pet == nil {
		return ErrPetRequired
	}
	return nil
}

func (s *Session) reason() string {
	reason := s.Reason
	if reason == "" {
		reason = DefaultReason
	}
	if s.ServiceLabel != "" && s.Reason == "" {
		reason = s.ServiceLabel + " - " + reason
	}
	return reason
}

// clientID is the pet owner when staff books on someone's behalf.
func (s *Session) clientID() int {
	if s.Identity.Role == backend.RoleReceptionist && s.Pet.OwnerID != 0 {
		return s.Pet.OwnerID
	}
	return s.Identity.UserID
}

// AppointmentRequest builds the create payload. Call ReadyToConfirm first.
func (s *Session) AppointmentRequest() backend.AppointmentRequest {
	return backend.AppointmentRequest{
		Pet:             s.Pet.ID,
		Client:          s.clientID(),
		Veterinarian:    s.Veterinarian.ID,
		TimeSlot:        s.Slot.ID,
		AppointmentDate: s.Date,
		AppointmentTime: s.Slot.StartTime,
		Reason:          s.reason(),
		Notes:           s.Notes,
	}
}

// RescheduleRequest builds the reschedule payload.
func (s *Session) RescheduleRequest() backend.RescheduleRequest {
	return backend.RescheduleRequest{
		NewDate:         s.Date,
		NewTime:         s.Slot.StartTime,
		NewVeterinarian: s.Veterinarian.ID,
		NewTimeSlot:     s.Slot.ID,
		Reason:          s.Reason,
	}
}

// Fail records a rejected submission. The step is kept; a slot conflict
// stores the alternatives offered by the backend.
func (s *Session) Fail(err error) {
	s.Alternatives = nil
	if be, ok := backend.AsError(err); ok && be.Kind == backend.KindConflict {
		s.Alternatives = be.Alternatives
	}
	if msg, ok := Message(err); ok {
		s.LastError = msg
		return
	}
	s.LastError = backend.UserMessage(err, SubmitFallbackMessage)
}

// Message returns the user-facing text of a wizard validation error.
func Message(err error) (string, bool) {
	for _, e := range wizardErrors {
		if errors.Is(err, e) {
			return strings.TrimPrefix(e.Error(), "booking: "), true
		}
	}
	return "", false
}

// Succeed records a confirmed appointment.
func (s *Session) Succeed(apt *backend.Appointment, message string) {
	s.Step = StepConfirmed
	s.Result = apt
	s.ResultMessage = message
	s.Alternatives = nil
	s.LastError = ""
}

// SelectAlternative re-targets the booking to a veterinarian offered after a
// slot conflict. Date and start time are kept; only the veterinarian and slot
// identity change. slotID 0 takes the slot offered with the veterinarian.
func (s *Session) SelectAlternative(vetID, slotID int) error {
	if s.Step == StepConfirmed {
		return ErrAlreadyConfirmed
	}
	if len(s.Alternatives) == 0 {
		return ErrNoAlternatives
	}
	if s.Slot == nil || s.Date == "" {
		return ErrSlotRequired
	}
	for _, alt := range s.Alternatives {
		if int(alt.ID) != vetID {
			continue
		}
		if slotID != 0 && int(alt.TimeSlotID) != slotID {
			continue
		}
		s.Veterinarian = &Veterinarian{ID: int(alt.ID), Name: alt.Name, Email: alt.Email}
		slot := *s.Slot
		slot.ID = int(alt.TimeSlotID)
		slot.VeterinarianID = int(alt.ID)
		s.Slot = &slot
		s.Alternatives = nil
		s.LastError = ""
		s.Step = StepIdentification
		return nil
	}
	return ErrUnknownAlternative
}
