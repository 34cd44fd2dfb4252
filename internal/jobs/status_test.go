package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/meetup-scheduler/internal/model"
	"github.com/nhle/meetup-scheduler/internal/store"
	"github.com/nhle/meetup-scheduler/tests/testutil"
)

var baseTime = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

// runAt pins a job's clock to a fixed instant and runs one tick.
func runAt(t *testing.T, job interface {
	Run(ctx context.Context) error
}, at time.Time) {
	t.Helper()
	switch j := job.(type) {
	case *StatusTransitionJob:
		j.now = func() time.Time { return at }
	case *MeetupReminderJob:
		j.now = func() time.Time { return at }
	case *ReviewRequestJob:
		j.now = func() time.Time { return at }
	case *NoShowProcessingJob:
		j.now = func() time.Time { return at }
	default:
		t.Fatalf("unknown job type %T", job)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("running %T at %v: %v", job, at, err)
	}
}

func seedMeetup(t *testing.T, s store.Store, id string, status model.MeetupStatus, scheduledAt time.Time) model.Meetup {
	t.Helper()
	m := model.Meetup{
		ID:          id,
		HostID:      "host-" + id,
		Title:       "Meetup " + id,
		Status:      status,
		ScheduledAt: scheduledAt,
	}
	if err := s.CreateMeetup(context.Background(), m); err != nil {
		t.Fatalf("seeding meetup %s: %v", id, err)
	}
	return m
}

func seedApproved(t *testing.T, s store.Store, meetupID string, userIDs ...string) {
	t.Helper()
	for _, id := range userIDs {
		err := s.CreateParticipant(context.Background(), model.Participant{
			MeetupID:       meetupID,
			UserID:         id,
			ApprovalStatus: model.ApprovalApproved,
		})
		if err != nil {
			t.Fatalf("seeding participant %s/%s: %v", meetupID, id, err)
		}
	}
}

func meetupStatus(t *testing.T, s store.Store, id string) model.MeetupStatus {
	t.Helper()
	m, err := s.GetMeetupByID(context.Background(), id)
	if err != nil {
		t.Fatalf("getting meetup %s: %v", id, err)
	}
	return m.Status
}

func TestStatusTransitionsAreMonotonic(t *testing.T) {
	s := testutil.NewTestStore(t)
	job := NewStatusTransitionJob(s)

	seedMeetup(t, s, "m-1", model.StatusRecruiting, baseTime)

	runAt(t, job, baseTime.Add(time.Minute))
	if got := meetupStatus(t, s, "m-1"); got != model.StatusInProgress {
		t.Fatalf("after start time: status = %s, want in_progress", got)
	}

	runAt(t, job, baseTime.Add(3*time.Hour))
	if got := meetupStatus(t, s, "m-1"); got != model.StatusEnded {
		t.Fatalf("after duration: status = %s, want ended", got)
	}

	// Subsequent runs never regress the status.
	runAt(t, job, baseTime.Add(4*time.Hour))
	runAt(t, job, baseTime.Add(24*time.Hour))
	if got := meetupStatus(t, s, "m-1"); got != model.StatusEnded {
		t.Fatalf("status regressed to %s", got)
	}
}

func TestStatusCatchesUpAfterDowntime(t *testing.T) {
	s := testutil.NewTestStore(t)
	job := NewStatusTransitionJob(s)

	seedMeetup(t, s, "missed", model.StatusRecruitingComplete, baseTime)

	// First run long after both transitions became due: the meetup is
	// started and ended within a single tick.
	runAt(t, job, baseTime.Add(10*time.Hour))
	if got := meetupStatus(t, s, "missed"); got != model.StatusEnded {
		t.Fatalf("status = %s, want ended", got)
	}
}

func TestStatusLeavesTerminalStatesAlone(t *testing.T) {
	s := testutil.NewTestStore(t)
	job := NewStatusTransitionJob(s)

	seedMeetup(t, s, "rejected", model.StatusRejected, baseTime.Add(-time.Hour))
	seedMeetup(t, s, "suspended", model.StatusSuspended, baseTime.Add(-time.Hour))

	runAt(t, job, baseTime.Add(10*time.Hour))

	if got := meetupStatus(t, s, "rejected"); got != model.StatusRejected {
		t.Errorf("rejected meetup moved to %s", got)
	}
	if got := meetupStatus(t, s, "suspended"); got != model.StatusSuspended {
		t.Errorf("suspended meetup moved to %s", got)
	}
}
