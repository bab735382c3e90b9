// Package job implements the in-memory job store and FIFO queue that the
// worker pool drains. It is the single source of truth for a job's status
// and progress; every other package mutates a [model.Job] only through the
// accessors here.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shortform/scenecraft/internal/model"
)

// ErrNotFound is returned by Get, UpdateStatus, and the other single-job
// accessors when the ID does not name a known job.
var ErrNotFound = errors.New("job: not found")

// Store holds every job submitted for the lifetime of the process, plus the
// FIFO of job IDs waiting to be picked up by a worker. A zero Store is not
// usable; construct one with [NewStore].
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*model.Job
	order  map[string]int // ID -> insertion sequence, for a stable List order
	queue  []string
	seq    int
}

// NewStore returns an empty, ready-to-use Store.
func NewStore() *Store {
	return &Store{
		jobs:  make(map[string]*model.Job),
		order: make(map[string]int),
	}
}

// Create allocates a new job in StatusQueued, appends it to the FIFO, and
// returns it. The ID is a client-facing random UUID, not a sequential
// counter, so job IDs cannot be guessed or enumerated.
func (s *Store) Create(req model.JobRequest) *model.Job {
	now := nowFunc()
	j := &model.Job{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    model.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[j.ID] = j
	s.order[j.ID] = s.seq
	s.seq++
	s.queue = append(s.queue, j.ID)
	s.mu.Unlock()

	return j
}

// Pop removes and returns the next queued job ID, or ok=false if the queue
// is empty. It does not mutate the job's status — the caller (the worker
// pool) does that once it has actually committed to processing the job.
func (s *Store) Pop() (id string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return "", false
	}
	id = s.queue[0]
	s.queue = s.queue[1:]
	return id, true
}

// Get returns the job for id, or ErrNotFound. The returned pointer is the
// live job record; callers must not mutate it directly — use UpdateStatus
// or Mutate.
func (s *Store) Get(id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return j, nil
}

// List returns every job, oldest first by creation time.
func (s *Store) List() []*model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	order := s.order
	for i := 1; i < len(out); i++ {
		for k := i; k > 0 && order[out[k].ID] < order[out[k-1].ID]; k-- {
			out[k], out[k-1] = out[k-1], out[k]
		}
	}
	return out
}

// UpdateStatus sets a job's status and progress under the store lock.
func (s *Store) UpdateStatus(id string, status model.Status, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = status
	j.Progress = progress
	j.UpdatedAt = nowFunc()
	return nil
}

// Mutate runs fn against the job for id under the store's write lock. It is
// the escape hatch for stages that need to attach more than status/progress
// (a parsed script, a finished scene) in a single atomic step.
func (s *Store) Mutate(id string, fn func(*model.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	fn(j)
	j.UpdatedAt = nowFunc()
	return nil
}

// Finish marks a job terminal with the given result.
func (s *Store) Finish(id string, status model.Status, result *model.JobResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = status
	j.Result = result
	j.UpdatedAt = nowFunc()
	if status == model.StatusCompleted {
		j.Progress = 100
	}
	return nil
}

// nowFunc is a var so tests can pin the clock; production never overrides it.
var nowFunc = time.Now
