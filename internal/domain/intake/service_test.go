package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/intake/internal/domain/catalog"
)

type fakeMetrics struct {
	mu       sync.Mutex
	verdicts map[string]int
	outcomes map[string]int
	blocked  int
	open     int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{verdicts: map[string]int{}, outcomes: map[string]int{}}
}

func (m *fakeMetrics) FieldVerdict(field, severity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts[field+"/"+severity]++
}

func (m *fakeMetrics) Submitted(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *fakeMetrics) SubmitBlocked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked++
}

func (m *fakeMetrics) SessionsOpen(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = n
}

func newTestService(sink Submitter, m *fakeMetrics) *Service {
	var metrics Metrics
	if m != nil {
		metrics = m
	}
	lookup := catalog.NewService(catalog.NewMemoryRepo(nil))
	return NewService(NewSessions(time.Hour), lookup,
		WithSink(sink),
		WithMetrics(metrics),
		WithFormClock(fixedClock(testNow)),
	)
}

func TestService_OpenAndSnapshot(t *testing.T) {
	m := newFakeMetrics()
	svc := newTestService(nil, m)

	id, snap := svc.Open(OpenRequest{PatientID: "pac-9"})
	if snap.Closed || len(snap.Sections) != 6 {
		t.Errorf("unexpected initial snapshot %+v", snap)
	}
	if m.open != 1 {
		t.Errorf("expected 1 open session metric, got %d", m.open)
	}
	if _, err := svc.Snapshot(id); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_SetFieldCountsVerdicts(t *testing.T) {
	m := newFakeMetrics()
	svc := newTestService(nil, m)
	id, _ := svc.Open(OpenRequest{})

	state, snap, err := svc.SetField(id, FieldTemperature, "39,5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Value != "39.5" || snap.Values.VitalSigns.Temperature != "39.5" {
		t.Errorf("unexpected state %+v", state)
	}
	if _, _, err := svc.SetField(id, FieldWeight, "900"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.verdicts["temperatura/none"] != 1 || m.verdicts["peso/block"] != 1 {
		t.Errorf("unexpected verdict counts %v", m.verdicts)
	}
}

func TestService_SelectMultiple(t *testing.T) {
	svc := newTestService(nil, nil)
	id, _ := svc.Open(OpenRequest{})
	ctx := context.Background()

	if _, _, err := svc.Select(ctx, id, FieldReason, "A03"); err != nil {
		t.Fatalf("select A03: %v", err)
	}
	if _, _, err := svc.Select(ctx, id, FieldReason, "d01"); err != nil {
		t.Fatalf("select D01: %v", err)
	}
	_, snap, err := svc.Select(ctx, id, FieldReason, "A03")
	if err != nil {
		t.Fatalf("reselect A03: %v", err)
	}
	want := "A03 - Febre; D01 - Dor abdominal geral/cólica"
	if snap.Values.Reason != want {
		t.Errorf("expected %q, got %q", want, snap.Values.Reason)
	}

	_, snap, err = svc.Deselect(id, FieldReason, "A03")
	if err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if snap.Values.Reason != "D01 - Dor abdominal geral/cólica" {
		t.Errorf("unexpected reason after deselect %q", snap.Values.Reason)
	}
}

func TestService_SelectSingleReplaces(t *testing.T) {
	svc := newTestService(nil, nil)
	id, _ := svc.Open(OpenRequest{})
	ctx := context.Background()

	_, _, _ = svc.Select(ctx, id, FieldOutcomeProfessional, "P001")
	_, snap, err := svc.Select(ctx, id, FieldOutcomeProfessional, "P002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Values.Professional != "P002 - Carlos Eduardo Lima (Médico de família)" {
		t.Errorf("unexpected professional %q", snap.Values.Professional)
	}
}

func TestService_SelectErrors(t *testing.T) {
	svc := newTestService(nil, nil)
	id, _ := svc.Open(OpenRequest{})
	ctx := context.Background()

	if _, _, err := svc.Select(ctx, id, FieldReason, "Z99"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected catalog.ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Select(ctx, id, FieldWeight, "A03"); !errors.Is(err, ErrNotSelectable) {
		t.Errorf("expected ErrNotSelectable, got %v", err)
	}
	if _, _, err := svc.Deselect(id, FieldRisk, "alto"); !errors.Is(err, ErrNotSelectable) {
		t.Errorf("expected ErrNotSelectable, got %v", err)
	}
}

func TestService_SubmitBlocked(t *testing.T) {
	m := newFakeMetrics()
	svc := newTestService(nil, m)
	id, _ := svc.Open(OpenRequest{})

	_, err := svc.Submit(context.Background(), id)
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if m.blocked != 1 {
		t.Errorf("expected blocked metric, got %d", m.blocked)
	}
	if _, err := svc.Snapshot(id); err != nil {
		t.Error("blocked submit must keep the session")
	}
}

func TestService_Submit(t *testing.T) {
	m := newFakeMetrics()
	var delivered []*Intake
	sink := SubmitterFunc(func(_ context.Context, in *Intake) error {
		delivered = append(delivered, in)
		return nil
	})
	svc := newTestService(MultiSubmitter{sink, LogSubmitter{Logger: zerolog.Nop()}}, m)
	id, _ := svc.Open(OpenRequest{EncounterID: "enc-7"})
	ctx := context.Background()

	_, _, _ = svc.Select(ctx, id, FieldReason, "A03")
	_, _, _ = svc.SetField(id, FieldRisk, "intermediario")
	_, _, _ = svc.SetField(id, FieldOutcome, "adicionar_lista")
	_, _, _ = svc.Select(ctx, id, FieldOutcomeTeam, "0001234561")
	_, _, _ = svc.Select(ctx, id, FieldServiceTypes, "consulta")

	in, err := svc.Submit(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delivered) != 1 || delivered[0].EncounterID != "enc-7" {
		t.Fatalf("expected one delivery, got %d", len(delivered))
	}
	list, ok := in.Outcome.(AddToList)
	if !ok || list.Team != "0001234561 - ESF Vila Nova" || len(list.ServiceTypes) != 1 {
		t.Errorf("unexpected outcome %#v", in.Outcome)
	}
	if m.outcomes["adicionar_lista"] != 1 || m.open != 0 {
		t.Errorf("unexpected metrics outcomes=%v open=%d", m.outcomes, m.open)
	}
	if _, err := svc.Snapshot(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected session closed after submit, got %v", err)
	}
}

func TestService_Cancel(t *testing.T) {
	svc := newTestService(nil, nil)
	id, _ := svc.Open(OpenRequest{})

	if err := svc.Cancel(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Cancel(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMultiSubmitter_StopsAtFirstError(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	m := MultiSubmitter{
		SubmitterFunc(func(context.Context, *Intake) error { calls++; return boom }),
		SubmitterFunc(func(context.Context, *Intake) error { calls++; return nil }),
	}
	if err := m.SubmitIntake(context.Background(), &Intake{Outcome: Release{}}); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}
