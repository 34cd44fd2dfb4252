package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countingJob counts its runs and can be made to block, fail, or panic.
type countingJob struct {
	name     string
	runs     atomic.Int32
	inFlight atomic.Int32
	overlaps atomic.Int32
	block    chan struct{}
	fail     bool
	panics   bool
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	if j.inFlight.Add(1) > 1 {
		j.overlaps.Add(1)
	}
	defer j.inFlight.Add(-1)

	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	if j.panics {
		panic("tick gone wrong")
	}
	if j.fail {
		return errors.New("tick failed")
	}
	return nil
}

func TestSchedulerRunsRegisteredJobs(t *testing.T) {
	s := New()
	fast := &countingJob{name: "fast"}
	slow := &countingJob{name: "slow"}
	s.Register(fast, 10*time.Millisecond)
	s.Register(slow, time.Hour)

	s.Start()
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	if got := fast.runs.Load(); got < 2 {
		t.Errorf("fast job ran %d times, want at least 2", got)
	}
	// The slow job still gets its immediate first run.
	if got := slow.runs.Load(); got != 1 {
		t.Errorf("slow job ran %d times, want 1", got)
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := New()

	// Stopping a scheduler that never started must not panic.
	s.Stop()

	s.Register(&countingJob{name: "job"}, time.Hour)
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	s := New()
	job := &countingJob{name: "job"}
	s.Register(job, time.Hour)

	s.Start()
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if got := job.runs.Load(); got != 1 {
		t.Errorf("job ran %d times after double Start, want 1", got)
	}
}

func TestSchedulerSurvivesFailingAndPanickingJobs(t *testing.T) {
	s := New()
	failing := &countingJob{name: "failing", fail: true}
	panicking := &countingJob{name: "panicking", panics: true}
	healthy := &countingJob{name: "healthy"}
	s.Register(failing, 10*time.Millisecond)
	s.Register(panicking, 10*time.Millisecond)
	s.Register(healthy, 10*time.Millisecond)

	s.Start()
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	// Failures and panics never stop subsequent ticks of any job.
	if got := failing.runs.Load(); got < 2 {
		t.Errorf("failing job ran %d times, want at least 2", got)
	}
	if got := panicking.runs.Load(); got < 2 {
		t.Errorf("panicking job ran %d times, want at least 2", got)
	}
	if got := healthy.runs.Load(); got < 2 {
		t.Errorf("healthy job ran %d times, want at least 2", got)
	}
}

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	s := New()
	job := &countingJob{name: "blocking", block: make(chan struct{})}
	s.Register(job, 5*time.Millisecond)

	s.Start()
	time.Sleep(40 * time.Millisecond)
	close(job.block)
	s.Stop()

	if got := job.overlaps.Load(); got != 0 {
		t.Errorf("job overlapped itself %d times", got)
	}
}
