// Package scheduler owns the periodic triggers for the background jobs.
// Each registered job ticks on its own fixed cadence, fully concurrent
// with the others; a failing or panicking tick never prevents subsequent
// ticks of the same or any other job.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is a unit of periodic background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// entry holds a registered job and its trigger state.
type entry struct {
	job      Job
	interval time.Duration

	// busy guards against re-entrant overlap: a tick firing while the
	// previous tick of the same job is still running is skipped.
	busy sync.Mutex
}

// Scheduler owns its registered triggers and their lifecycle. Construct
// one explicitly and pass it around; there is no shared global state.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	stopCh  chan struct{}
	running bool
	wg      sync.WaitGroup
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Register adds a job ticking at the given interval. Must be called
// before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, &entry{job: job, interval: interval})
}

// Start begins ticking all registered jobs, each in its own goroutine.
// Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	entries := s.entries
	s.mu.Unlock()

	for _, e := range entries {
		s.wg.Add(1)
		go s.loop(e, stopCh)
	}

	log.Printf("scheduler: started %d jobs", len(entries))
}

// Stop cancels all triggers and waits for in-flight ticks to finish
// naturally. It is idempotent and safe to call when never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.stopCh = nil
	s.mu.Unlock()

	s.wg.Wait()
	log.Printf("scheduler: stopped")
}

// loop runs the ticker for a single job until stopCh closes.
func (s *Scheduler) loop(e *entry, stopCh chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	// Run once immediately so state catches up right after boot.
	s.runJob(e)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.runJob(e)
		}
	}
}

// runJob executes one tick of a job, catching errors and panics so the
// trigger keeps firing.
func (s *Scheduler) runJob(e *entry) {
	if !e.busy.TryLock() {
		log.Printf("scheduler: %s still running, skipping tick", e.job.Name())
		return
	}
	defer e.busy.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: %s panicked: %v", e.job.Name(), r)
		}
	}()

	if err := e.job.Run(context.Background()); err != nil {
		log.Printf("scheduler: %s failed: %v", e.job.Name(), err)
	}
}
