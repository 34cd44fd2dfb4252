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

// MeetupReminderJob notifies approved participants of meetups starting
// within the lead window. The notification-existence guard keys dedup on
// the meetup, so the whole batch is sent at most once.
type MeetupReminderJob struct {
	store      store.Store
	dispatcher *notify.Dispatcher
	lead       time.Duration
	now        func() time.Time
}

// NewMeetupReminderJob builds the job. lead is how far before the start
// time the reminder window opens.
func NewMeetupReminderJob(s store.Store, d *notify.Dispatcher, lead time.Duration) *MeetupReminderJob {
	return &MeetupReminderJob{store: s, dispatcher: d, lead: lead, now: time.Now}
}

// Name identifies the job in scheduler logs.
func (j *MeetupReminderJob) Name() string { return "meetup-reminder" }

// Run performs one reminder tick. A failure on one meetup is logged and
// does not stop processing of the remaining meetups.
func (j *MeetupReminderJob) Run(ctx context.Context) error {
	now := j.now()

	meetups, err := j.store.GetMeetupsStartingBetween(ctx, now, now.Add(j.lead))
	if err != nil {
		return err
	}

	for _, m := range meetups {
		if err := j.remind(ctx, m, now); err != nil {
			log.Printf("meetup-reminder: meetup %s: %v", m.ID, err)
		}
	}
	return nil
}

func (j *MeetupReminderJob) remind(ctx context.Context, m model.Meetup, now time.Time) error {
	sent, err := alreadyNotified(ctx, j.store, m.ID, model.NotificationReminder30Min)
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
	// No recipients means no notification row gets created, so the
	// meetup stays eligible for recheck until the window closes. A
	// participant approved after the window has passed gets no
	// retroactive reminder.
	if len(participants) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}

	minutes := int(m.ScheduledAt.Sub(now).Round(time.Minute).Minutes())
	title := "Your meetup starts soon"
	body := fmt.Sprintf("%q starts in about %d minutes.", m.Title, minutes)

	count, err := j.dispatcher.NotifyMany(
		ctx, userIDs, model.NotificationReminder30Min, title, body, &m.ID,
	)
	if err != nil {
		return err
	}

	log.Printf("meetup-reminder: reminded %d participants of meetup %s", count, m.ID)
	return nil
}
