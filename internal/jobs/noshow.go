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

// NoShowProcessingJob finalizes attendance for meetups old enough that
// nobody can still check in: approved participants who never showed up
// are flagged, penalized on their trust score, and notified, and the
// host receives an aggregate report. All mutations for one meetup happen
// in a single transaction; a failure rolls back that meetup only and
// processing continues with the next one.
type NoShowProcessingJob struct {
	store      store.Store
	dispatcher *notify.Dispatcher
	penalty    int
	settle     time.Duration
	now        func() time.Time
}

// NewNoShowProcessingJob builds the job. settle is how long after a
// meetup's end attendance is considered final; penalty is the
// trust-score deduction per no-show.
func NewNoShowProcessingJob(
	s store.Store,
	d *notify.Dispatcher,
	penalty int,
	settle time.Duration,
) *NoShowProcessingJob {
	return &NoShowProcessingJob{
		store:      s,
		dispatcher: d,
		penalty:    penalty,
		settle:     settle,
		now:        time.Now,
	}
}

// Name identifies the job in scheduler logs.
func (j *NoShowProcessingJob) Name() string { return "noshow-processing" }

// Run performs one no-show tick over all settled meetups.
func (j *NoShowProcessingJob) Run(ctx context.Context) error {
	settledBefore := j.now().Add(-j.settle)

	meetups, err := j.store.GetMeetupsForNoShow(ctx, settledBefore)
	if err != nil {
		return err
	}

	for _, m := range meetups {
		if err := j.processMeetup(ctx, m); err != nil {
			log.Printf("noshow-processing: meetup %s: %v", m.ID, err)
		}
	}
	return nil
}

// processMeetup flags, penalizes, and notifies one meetup's no-shows
// atomically. Push delivery happens after commit and is fire-and-forget;
// a push failure never rolls back the committed state.
func (j *NoShowProcessingJob) processMeetup(ctx context.Context, m model.Meetup) error {
	tx, err := j.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	candidates, err := tx.NoShowCandidates(ctx, m.ID, m.HostID)
	if err != nil {
		return err
	}

	// Everyone showed up. Nothing to record for this meetup.
	if len(candidates) == 0 {
		return tx.Commit()
	}

	penaltyTitle := "No-show penalty applied"
	penaltyBody := fmt.Sprintf(
		"You didn't check in to %q. Your trust score was reduced by %d points.",
		m.Title, j.penalty,
	)

	ns := make([]model.Notification, 0, len(candidates)+1)
	userIDs := make([]string, 0, len(candidates))
	for _, p := range candidates {
		if err := tx.MarkNoShow(ctx, m.ID, p.UserID); err != nil {
			return err
		}
		if err := tx.ApplyTrustPenalty(ctx, p.UserID, j.penalty); err != nil {
			return err
		}
		userIDs = append(userIDs, p.UserID)
		ns = append(ns, model.Notification{
			UserID:   p.UserID,
			Type:     model.NotificationNoShowPenalty,
			MeetupID: &m.ID,
			Title:    penaltyTitle,
			Body:     penaltyBody,
		})
	}

	reportTitle := "No-show report"
	reportBody := fmt.Sprintf(
		"%d participant(s) didn't show up to %q. Their trust scores were adjusted.",
		len(candidates), m.Title,
	)
	ns = append(ns, model.Notification{
		UserID:   m.HostID,
		Type:     model.NotificationNoShowReport,
		MeetupID: &m.ID,
		Title:    reportTitle,
		Body:     reportBody,
	})

	if err := tx.CreateNotifications(ctx, ns); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	j.dispatcher.DispatchPush(userIDs, model.NotificationNoShowPenalty, penaltyTitle, penaltyBody, &m.ID)
	j.dispatcher.DispatchPush([]string{m.HostID}, model.NotificationNoShowReport, reportTitle, reportBody, &m.ID)

	log.Printf("noshow-processing: flagged %d no-shows for meetup %s", len(candidates), m.ID)
	return nil
}
