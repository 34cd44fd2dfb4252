package jobs

import (
	"context"
	"log"
	"time"

	"github.com/nhle/meetup-scheduler/internal/store"
)

// StatusTransitionJob advances meetup lifecycle states purely from
// wall-clock time: recruiting meetups whose start time passed become
// in_progress, and in_progress meetups whose duration elapsed become
// ended. Both transitions are single conditional bulk updates, so a run
// with no newly-eligible rows is a no-op.
type StatusTransitionJob struct {
	store store.Store
	now   func() time.Time
}

// NewStatusTransitionJob builds the job over the given store.
func NewStatusTransitionJob(s store.Store) *StatusTransitionJob {
	return &StatusTransitionJob{store: s, now: time.Now}
}

// Name identifies the job in scheduler logs.
func (j *StatusTransitionJob) Name() string { return "status-transition" }

// Run performs one tick of status transitions.
func (j *StatusTransitionJob) Run(ctx context.Context) error {
	now := j.now()

	started, err := j.store.StartDueMeetups(ctx, now)
	if err != nil {
		return err
	}

	ended, err := j.store.EndOverdueMeetups(ctx, now)
	if err != nil {
		return err
	}

	if started > 0 || ended > 0 {
		log.Printf("status-transition: started %d, ended %d meetups", started, ended)
	}
	return nil
}
