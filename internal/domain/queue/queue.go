package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/intake/internal/domain/intake"
)

// Metrics receives the number of open entries per risk after every change.
type Metrics interface {
	QueueSize(risk string, n int)
}

type Option func(*Queue)

func WithMetrics(m Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// Queue is the in-memory attendance list. It is safe for concurrent use.
type Queue struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
	sources map[string]uuid.UUID
	seq     uint64
	now     func() time.Time
	metrics Metrics
}

func New(opts ...Option) *Queue {
	q := &Queue{
		entries: make(map[uuid.UUID]*Entry),
		sources: make(map[string]uuid.UUID),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// SubmitIntake enqueues intakes whose outcome is AddToList and ignores the
// rest, so the queue can be used directly as an intake sink. A retried
// submit of the same form does not enqueue the patient twice.
func (q *Queue) SubmitIntake(_ context.Context, in *intake.Intake) error {
	out, ok := in.Outcome.(intake.AddToList)
	if !ok {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	key := sourceKey(in)
	if id, seen := q.sources[key]; seen {
		if _, ok := q.entries[id]; ok {
			return nil
		}
	}
	e := q.add(Entry{
		PatientID:    in.PatientID,
		EncounterID:  in.EncounterID,
		Reason:       in.Reason,
		Professional: out.Professional,
		Team:         out.Team,
		ServiceTypes: out.ServiceTypes,
		Risk:         in.Risk,
		Notes:        out.Notes,
	})
	q.sources[key] = e.ID
	return nil
}

// sourceKey identifies the form an intake came from. The start time is fixed
// when the form opens, so it is the same on every submit attempt.
func sourceKey(in *intake.Intake) string {
	return in.EncounterID + "|" + in.PatientID + "|" + in.StartedAt.UTC().Format(time.RFC3339Nano)
}

// Add appends e as a waiting entry and returns the stored copy.
func (q *Queue) Add(e Entry) Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.add(e)
}

// add stores e. Callers hold q.mu.
func (q *Queue) add(e Entry) Entry {
	q.seq++
	now := q.now()
	e.ID = uuid.New()
	e.Status = StatusWaiting
	e.ArrivedAt = now
	e.UpdatedAt = now
	e.seq = q.seq
	if e.ServiceTypes == nil {
		e.ServiceTypes = []string{}
	}
	q.entries[e.ID] = &e
	q.report()
	return e
}

// List returns the entries matching f, highest risk first and then in
// arrival order.
func (q *Queue) List(f Filter) []Entry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]Entry, 0, len(q.entries))
	for _, e := range q.entries {
		if f.match(e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Risk.Priority(), out[j].Risk.Priority()
		if pi != pj {
			return pi > pj
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func (q *Queue) Get(id uuid.UUID) (Entry, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	e, ok := q.entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return *e, nil
}

// SetStatus moves an entry along aguardando -> em_atendimento -> atendido.
// An entry in care may also go back to waiting. Setting the current status
// again is a no-op.
func (q *Queue) SetStatus(id uuid.UUID, status Status) (Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	if e.Status == status {
		return *e, nil
	}
	allowed := false
	for _, next := range transitions[e.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return Entry{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, e.Status, status)
	}
	e.Status = status
	e.UpdatedAt = q.now()
	q.report()
	return *e, nil
}

func (q *Queue) Remove(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(q.entries, id)
	for key, src := range q.sources {
		if src == id {
			delete(q.sources, key)
			break
		}
	}
	q.report()
	return nil
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries)
}

// report publishes open entries per risk. Callers hold q.mu.
func (q *Queue) report() {
	if q.metrics == nil {
		return
	}
	counts := make(map[intake.RiskLevel]int, len(intake.RiskLevels))
	for _, e := range q.entries {
		if e.Status != StatusDone {
			counts[e.Risk]++
		}
	}
	for _, r := range intake.RiskLevels {
		q.metrics.QueueSize(string(r), counts[r])
	}
}
