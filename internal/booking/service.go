package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/pkg/logging"
)

var bookingTracer = otel.Tracer("pochita.internal.booking")

// Submitter sends confirmed wizards to the backend. *backend.UserClient
// satisfies it.
type Submitter interface {
	CreateAppointment(ctx context.Context, req backend.AppointmentRequest) (*backend.Appointment, error)
	RescheduleAppointment(ctx context.Context, id int, req backend.RescheduleRequest) (*backend.ActionResult, error)
}

// Recorder receives submission outcomes. *metrics.BookingMetrics satisfies it.
type Recorder interface {
	ObserveBooking(mode, outcome string)
	ObserveConflict()
}

type nopRecorder struct{}

func (nopRecorder) ObserveBooking(string, string) {}
func (nopRecorder) ObserveConflict()              {}

// Service loads, mutates and persists wizard sessions.
type Service struct {
	store    Store
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

// NewService wires a wizard service. A nil recorder disables metrics.
func NewService(store Store, recorder Recorder, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{store: store, recorder: recorder, logger: logger, now: time.Now}
}

// Start creates and persists a new booking wizard.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	sess := New(uuid.NewString(), s.now().UTC())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// StartReschedule opens a wizard for an existing appointment.
func (s *Service) StartReschedule(ctx context.Context, apt backend.Appointment) (*Session, error) {
	if apt.Status == backend.StatusAttended || apt.Status == backend.StatusCancelled {
		return nil, fmt.Errorf("%w: appointment %s", ErrWrongStep, apt.Status)
	}
	sess := NewReschedule(uuid.NewString(), apt, s.now().UTC())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a wizard by id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Discard drops a wizard.
func (s *Service) Discard(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Update applies fn to the stored wizard and persists the result. A wizard
// validation error is kept on the session as LastError and the session is
// still saved; other errors abort without saving.
func (s *Service) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyErr := fn(sess)
	if applyErr != nil {
		msg, ok := Message(applyErr)
		if !ok {
			return sess, applyErr
		}
		sess.LastError = msg
	} else {
		sess.LastError = ""
	}
	sess.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, applyErr
}

// Confirm submits the wizard. A backend failure is recorded on the session
// and returned; the wizard stays on its step so the user can retry or pick
// an alternative veterinarian.
func (s *Service) Confirm(ctx context.Context, id string, api Submitter) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx, span := bookingTracer.Start(ctx, "booking.Confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("pochita.booking.id", sess.ID),
		attribute.String("pochita.booking.mode", string(sess.Mode)),
	)

	submitErr := sess.ReadyToConfirm()
	if submitErr == nil {
		submitErr = s.submit(ctx, sess, api)
	}

	outcome := "ok"
	if submitErr != nil {
		outcome = "rejected"
		if be, ok := backend.AsError(submitErr); ok {
			outcome = string(be.Kind)
			if be.Kind == backend.KindConflict {
				s.recorder.ObserveConflict()
			}
		} else if errors.Is(submitErr, backend.ErrSessionExpired) {
			outcome = "session_expired"
		}
		span.RecordError(submitErr)
		span.SetStatus(codes.Error, outcome)
		sess.Fail(submitErr)
		s.logger.Warn("booking: submission failed",
			"booking_id", sess.ID,
			"mode", sess.Mode,
			"outcome", outcome,
			"error", submitErr,
		)
	} else {
		s.logger.Info("booking: appointment confirmed",
			"booking_id", sess.ID,
			"mode", sess.Mode,
			"veterinarian_id", sess.Veterinarian.ID,
			"date", sess.Date,
		)
	}
	s.recorder.ObserveBooking(string(sess.Mode), outcome)

	sess.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, submitErr
}

func (s *Service) submit(ctx context.Context, sess *Session, api Submitter) error {
	if sess.Mode == ModeReschedule {
		res, err := api.RescheduleAppointment(ctx, sess.AppointmentID, sess.RescheduleRequest())
		if err != nil {
			return fmt.Errorf("booking: reschedule: %w", err)
		}
		sess.Succeed(res.Appointment, valueOr(res.Message, "Cita reprogramada exitosamente"))
		return nil
	}
	apt, err := api.CreateAppointment(ctx, sess.AppointmentRequest())
	if err != nil {
		return fmt.Errorf("booking: create: %w", err)
	}
	sess.Succeed(apt, "¡Cita agendada exitosamente!")
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
