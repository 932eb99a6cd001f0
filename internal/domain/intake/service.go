package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/catalog"
)

// OptionLookup resolves a catalogue code for the searchable selects.
type OptionLookup interface {
	Lookup(ctx context.Context, kind catalog.Kind, code string) (*catalog.Option, error)
}

// Metrics receives intake events. The Prometheus collector implements it.
type Metrics interface {
	FieldVerdict(field, severity string)
	Submitted(outcome string)
	SubmitBlocked()
	SessionsOpen(n int)
}

type nopMetrics struct{}

func (nopMetrics) FieldVerdict(string, string) {}
func (nopMetrics) Submitted(string)            {}
func (nopMetrics) SubmitBlocked()              {}
func (nopMetrics) SessionsOpen(int)            {}

// MultiSubmitter delivers an intake to each sink in order and stops at the
// first error.
type MultiSubmitter []Submitter

func (m MultiSubmitter) SubmitIntake(ctx context.Context, in *Intake) error {
	for _, s := range m {
		if err := s.SubmitIntake(ctx, in); err != nil {
			return err
		}
	}
	return nil
}

// LogSubmitter writes a summary line for every submitted intake.
type LogSubmitter struct {
	Logger zerolog.Logger
}

func (l LogSubmitter) SubmitIntake(_ context.Context, in *Intake) error {
	ev := l.Logger.Info().
		Str("patient", in.PatientID).
		Str("encounter", in.EncounterID).
		Str("risk", string(in.Risk)).
		Strs("derived_procedures", in.DerivedProcedures).
		Dur("duration", in.EndedAt.Sub(in.StartedAt))
	logOutcome(ev, in.Outcome).Msg("intake submitted")
	return nil
}

func logOutcome(ev *zerolog.Event, o Outcome) *zerolog.Event {
	switch o := o.(type) {
	case Release:
		return ev.Str("outcome", string(o.Kind()))
	case AddToList:
		return ev.Str("outcome", string(o.Kind())).
			Str("professional", o.Professional).
			Str("team", o.Team).
			Strs("service_types", o.ServiceTypes)
	case Schedule:
		return ev.Str("outcome", string(o.Kind())).
			Str("professional", o.Professional).
			Str("appointment", o.Date+" "+o.Time)
	default:
		panic(fmt.Sprintf("intake: unhandled outcome %T", o))
	}
}

type ServiceOption func(*Service)

func WithSink(sink Submitter) ServiceOption {
	return func(s *Service) { s.sink = sink }
}

func WithMetrics(m Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithFormClock sets the clock of every form the service opens.
func WithFormClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// Service runs intake forms on behalf of HTTP and WebSocket callers.
type Service struct {
	sessions *Sessions
	options  OptionLookup
	sink     Submitter
	metrics  Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(sessions *Sessions, options OptionLookup, opts ...ServiceOption) *Service {
	s := &Service{
		sessions: sessions,
		options:  options,
		metrics:  nopMetrics{},
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "intake-service").Logger()
	return s
}

type OpenRequest struct {
	PatientID   string `json:"pacienteId" validate:"omitempty,max=64"`
	EncounterID string `json:"atendimentoId" validate:"omitempty,max=64"`
}

// Open starts a form and returns its session id with the initial snapshot.
func (s *Service) Open(req OpenRequest) (uuid.UUID, Snapshot) {
	f := NewForm(WithClock(s.now), WithPatient(req.PatientID), WithEncounter(req.EncounterID))
	id := s.sessions.Open(f)
	s.metrics.SessionsOpen(s.sessions.Len())
	s.logger.Debug().Str("session", id.String()).Str("encounter", req.EncounterID).Msg("intake opened")
	return id, f.Snapshot()
}

func (s *Service) Snapshot(id uuid.UUID) (Snapshot, error) {
	var snap Snapshot
	err := s.sessions.Do(id, func(f *Form) error {
		snap = f.Snapshot()
		return nil
	})
	return snap, err
}

// SetField applies raw to field and returns the field state with the
// resulting snapshot.
func (s *Service) SetField(id uuid.UUID, field Field, raw string) (FieldState, Snapshot, error) {
	var (
		state FieldState
		snap  Snapshot
	)
	err := s.sessions.Do(id, func(f *Form) error {
		var err error
		if state, err = f.Set(field, raw); err != nil {
			return err
		}
		snap = f.Snapshot()
		return nil
	})
	if err != nil {
		return FieldState{}, Snapshot{}, err
	}
	s.metrics.FieldVerdict(string(field), string(state.Verdict.Severity))
	return state, snap, nil
}

// Select picks the catalogue option code into a searchable-select field.
func (s *Service) Select(ctx context.Context, id uuid.UUID, field Field, code string) (FieldState, Snapshot, error) {
	kind, mode, ok := CatalogFor(field)
	if !ok {
		return FieldState{}, Snapshot{}, fmt.Errorf("%w: %q", ErrNotSelectable, field)
	}
	opt, err := s.options.Lookup(ctx, kind, code)
	if err != nil {
		return FieldState{}, Snapshot{}, fmt.Errorf("select %s: %w", field, err)
	}
	return s.updateSelection(id, field, mode, func(sel *catalog.Selection) { sel.Pick(*opt) })
}

// Deselect removes code from a searchable-select field. Removing a code that
// is not selected leaves the field as it was.
func (s *Service) Deselect(id uuid.UUID, field Field, code string) (FieldState, Snapshot, error) {
	_, mode, ok := CatalogFor(field)
	if !ok {
		return FieldState{}, Snapshot{}, fmt.Errorf("%w: %q", ErrNotSelectable, field)
	}
	return s.updateSelection(id, field, mode, func(sel *catalog.Selection) { sel.Remove(code) })
}

func (s *Service) updateSelection(id uuid.UUID, field Field, mode catalog.Mode, change func(*catalog.Selection)) (FieldState, Snapshot, error) {
	var (
		state FieldState
		snap  Snapshot
	)
	err := s.sessions.Do(id, func(f *Form) error {
		current, err := f.Value(field)
		if err != nil {
			return err
		}
		sel := catalog.ParseSelection(current, mode)
		change(sel)
		if state, err = f.Set(field, sel.Value()); err != nil {
			return err
		}
		snap = f.Snapshot()
		return nil
	})
	if err != nil {
		return FieldState{}, Snapshot{}, err
	}
	return state, snap, nil
}

// Submit submits the form of id and closes its session. Field errors come
// back as FieldErrors and leave the session open.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Intake, error) {
	var in *Intake
	err := s.sessions.Do(id, func(f *Form) error {
		var err error
		in, err = f.Submit(ctx, s.sink)
		return err
	})

	var fieldErrs FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		s.metrics.SubmitBlocked()
		s.logger.Debug().Str("session", id.String()).Int("errors", len(fieldErrs)).Msg("intake submit blocked")
		return nil, fieldErrs
	case err != nil:
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Error().Err(err).Str("session", id.String()).Msg("intake submit failed")
		}
		return nil, err
	}

	s.sessions.Close(id)
	s.metrics.Submitted(string(in.Outcome.Kind()))
	s.metrics.SessionsOpen(s.sessions.Len())
	logOutcome(s.logger.Info().Str("session", id.String()), in.Outcome).Msg("intake closed")
	return in, nil
}

// Cancel discards the form of id.
func (s *Service) Cancel(id uuid.UUID) error {
	err := s.sessions.Do(id, func(f *Form) error {
		f.Cancel(func() {
			s.logger.Info().Str("session", id.String()).Msg("intake cancelled")
		})
		return nil
	})
	if err != nil {
		return err
	}
	s.sessions.Close(id)
	s.metrics.SessionsOpen(s.sessions.Len())
	return nil
}

// RunSweeper expires idle sessions until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	s.sessions.Run(ctx, interval, func(ids []uuid.UUID) {
		for _, id := range ids {
			s.logger.Info().Str("session", id.String()).Msg("intake session expired")
		}
		s.metrics.SessionsOpen(s.sessions.Len())
	})
}
