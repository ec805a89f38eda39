package screening

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/model"
)

// RunState is the store-wide screening run state.
type RunState string

const (
	RunNotStarted RunState = "Not Started"
	RunRunning    RunState = "Running"
	RunCompleted  RunState = "Completed"
)

// Run is a handle to one screening run.
type Run struct {
	id        string
	startedAt time.Time
	entityIDs []int
	terms     []string

	once        sync.Once
	done        chan struct{}
	err         error
	completedAt time.Time
}

func newRun(startedAt time.Time, entityIDs []int, terms []string) *Run {
	return &Run{
		id:        uuid.NewString(),
		startedAt: startedAt,
		entityIDs: entityIDs,
		terms:     terms,
		done:      make(chan struct{}),
	}
}

// ID returns the run's unique identifier.
func (r *Run) ID() string { return r.id }

// StartedAt returns when the run began.
func (r *Run) StartedAt() time.Time { return r.startedAt }

// Terms returns the search terms the run was started with.
func (r *Run) Terms() []string { return append([]string(nil), r.terms...) }

// EntityIDs returns the entities snapshotted at run start.
func (r *Run) EntityIDs() []int { return append([]int(nil), r.entityIDs...) }

// Done is closed once the run completes or is voided.
func (r *Run) Done() <-chan struct{} { return r.done }

// CompletedAt is the completion time. Zero until Done is closed, and for
// voided runs.
func (r *Run) CompletedAt() time.Time {
	select {
	case <-r.done:
		return r.completedAt
	default:
		return time.Time{}
	}
}

// Wait blocks until the run resolves or ctx is done. A voided run returns
// ErrRunSuperseded.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Run) resolve(completedAt time.Time, err error) {
	r.once.Do(func() {
		r.completedAt = completedAt
		r.err = err
		close(r.done)
	})
}

// StartRun begins a screening run over every current entity. If a run is
// already in flight its handle is returned with started == false and nothing
// changes.
func (s *Store) StartRun() (run *Run, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, ErrStoreClosed
	}
	if s.state == RunRunning && s.current != nil {
		return s.current, false, nil
	}

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.current != nil {
		s.current.resolve(time.Time{}, ErrRunSuperseded)
	}

	s.generation++
	gen := s.generation

	ids := make([]int, 0, len(s.entities))
	for i := range s.entities {
		e := &s.entities[i]
		ids = append(ids, e.ID)
		if e.SearchStatus != model.SearchComplete {
			e.SearchStatus = model.SearchInProgress
		}
	}

	terms := s.terms()
	run = newRun(s.clock.Now(), ids, terms)
	s.current = run
	s.state = RunRunning
	s.newDetected = true
	s.lastRunTerms = terms
	s.timer = s.clock.AfterFunc(s.cfg.RunLatency, func() { s.complete(gen) })
	s.recorder.RunStarted()

	zap.L().Info("screening: run started",
		zap.String("run_id", run.id),
		zap.Int("entities", len(ids)),
		zap.Strings("terms", terms),
	)
	return run, true, nil
}

// complete applies the completion of the run started at generation gen.
// Stale generations are ignored.
func (s *Store) complete(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation || s.current == nil || s.state != RunRunning {
		s.mu.Unlock()
		zap.L().Debug("screening: stale run completion ignored", zap.Uint64("generation", gen))
		return
	}

	now := s.clock.Now()
	run := s.current
	snapshot := make(map[int]bool, len(run.entityIDs))
	for _, id := range run.entityIDs {
		snapshot[id] = true
	}
	for i := range s.entities {
		if snapshot[s.entities[i].ID] {
			s.entities[i].SearchStatus = model.SearchComplete
		}
	}
	s.state = RunCompleted
	s.lastCompleted = now
	s.newDetected = false
	s.current = nil
	s.timer = nil
	s.mu.Unlock()

	run.resolve(now, nil)
	s.recorder.RunCompleted(now.Sub(run.startedAt))

	zap.L().Info("screening: run completed",
		zap.String("run_id", run.id),
		zap.Int("entities", len(run.entityIDs)),
		zap.Duration("elapsed", now.Sub(run.startedAt)),
	)
}

// Close stops any pending completion and voids the in-flight run. Mutations
// after Close return ErrStoreClosed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	run := s.current
	s.current = nil
	s.mu.Unlock()

	if run != nil {
		run.resolve(time.Time{}, ErrRunSuperseded)
		zap.L().Info("screening: in-flight run voided", zap.String("run_id", run.id))
	}
	return nil
}

// Status is a snapshot of the run state.
type Status struct {
	State               RunState   `json:"state"`
	RunID               string     `json:"run_id,omitempty"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	LastCompleted       *time.Time `json:"last_completed,omitempty"`
	NewEntitiesDetected bool       `json:"new_entities_detected"`
	Terms               []string   `json:"terms"`
	LastRunTerms        []string   `json:"last_run_terms"`
}

// Status returns the current run state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:               s.state,
		NewEntitiesDetected: s.newDetected,
		Terms:               s.terms(),
		LastRunTerms:        append([]string{}, s.lastRunTerms...),
	}
	if s.current != nil {
		st.RunID = s.current.id
		started := s.current.startedAt
		st.StartedAt = &started
	}
	if !s.lastCompleted.IsZero() {
		last := s.lastCompleted
		st.LastCompleted = &last
	}
	return st
}

// NewEntitiesDetected reports whether entities await screening.
func (s *Store) NewEntitiesDetected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newDetected
}

// LastCompleted returns the time of the last completed run, zero if none.
func (s *Store) LastCompleted() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCompleted
}
