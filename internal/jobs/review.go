package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nhle/meetup-scheduler/internal/model"
	"github.com/nhle/meetup-scheduler/internal/notify"
	"github.com/nhle/meetup-scheduler/internal/store"
)

// reviewWindowSlack is how long after the scheduled start the review
// window is anchored: the meetup's assumed three-hour duration plus a
// two-hour grace period before review prompts go out.
const reviewWindowSlack = 5 * time.Hour

// ReviewRequestJob prompts participants of recently-ended meetups to
// leave a review. The lookback bound keeps very old meetups from being
// retroactively notified.
type ReviewRequestJob struct {
	store      store.Store
	dispatcher *notify.Dispatcher
	lookback   time.Duration
	now        func() time.Time
}

// NewReviewRequestJob builds the job. lookback bounds how far into the
// past ended meetups are still eligible.
func NewReviewRequestJob(s store.Store, d *notify.Dispatcher, lookback time.Duration) *ReviewRequestJob {
	return &ReviewRequestJob{store: s, dispatcher: d, lookback: lookback, now: time.Now}
}

// Name identifies the job in scheduler logs.
func (j *ReviewRequestJob) Name() string { return "review-request" }

// Run performs one review-request tick. Per-meetup failures are logged
// and skipped.
func (j *ReviewRequestJob) Run(ctx context.Context) error {
	now := j.now()
	oldest := now.Add(-j.lookback).Add(-reviewWindowSlack)

	meetups, err := j.store.GetMeetupsForReview(ctx, now, oldest)
	if err != nil {
		return err
	}

	for _, m := range meetups {
		if err := j.request(ctx, m); err != nil {
			log.Printf("review-request: meetup %s: %v", m.ID, err)
		}
	}
	return nil
}

func (j *ReviewRequestJob) request(ctx context.Context, m model.Meetup) error {
	sent, err := alreadyNotified(ctx, j.store, m.ID, model.NotificationReviewRequest)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}

	participants, err := j.store.GetApprovedParticipants(ctx, m.ID)
	if err != nil {
		return err
	}

	// A meetup with no approved participants at all is left untouched,
	// same as the reminder job: no row is created, no dedup mark set.
	if len(participants) == 0 {
		return nil
	}

	// Recipients are all approved participants plus the host, deduped.
	seen := map[string]bool{m.HostID: true}
	userIDs := []string{m.HostID}
	for _, p := range participants {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		userIDs = append(userIDs, p.UserID)
	}

	title := "How was your meetup?"
	body := fmt.Sprintf("Leave a review for %q and let others know how it went.", m.Title)

	count, err := j.dispatcher.NotifyMany(
		ctx, userIDs, model.NotificationReviewRequest, title, body, &m.ID,
	)
	if err != nil {
		return err
	}

	log.Printf("review-request: asked %d users to review meetup %s", count, m.ID)
	return nil
}
