package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nhle/meetup-scheduler/internal/model"
	"github.com/nhle/meetup-scheduler/internal/push"
)

// pushTimeout bounds a single background push delivery.
const pushTimeout = 30 * time.Second

// Pusher delivers a notification to users' devices. Implemented by
// *push.Gateway.
type Pusher interface {
	SendToUsers(ctx context.Context, userIDs []string, title, body string, data map[string]string) push.DeliveryResult
}

// Store is the slice of the persistence layer the dispatcher writes to.
type Store interface {
	CreateNotifications(ctx context.Context, ns []model.Notification) error
}

// Dispatcher persists notification rows and triggers best-effort push
// delivery. It performs no deduplication: callers are responsible for
// checking whether a notification of the same kind already exists for
// the meetup before invoking it.
type Dispatcher struct {
	store  Store
	pusher Pusher

	// wg tracks in-flight background pushes so Close can drain them.
	wg sync.WaitGroup
}

// NewDispatcher builds a Dispatcher. A nil pusher disables push delivery
// while leaving persistence intact.
func NewDispatcher(store Store, pusher Pusher) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher}
}

// NotifyMany writes one notification row per recipient in a single
// batched insert, then requests push delivery for the same recipients in
// the background. Push failures are logged and never affect the return
// value or the persisted rows. Returns the number of rows written.
func (d *Dispatcher) NotifyMany(
	ctx context.Context,
	userIDs []string,
	typ model.NotificationType,
	title, body string,
	meetupID *string,
) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	ns := make([]model.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		ns = append(ns, model.Notification{
			UserID:   userID,
			Type:     typ,
			MeetupID: meetupID,
			Title:    title,
			Body:     body,
		})
	}

	if err := d.store.CreateNotifications(ctx, ns); err != nil {
		return 0, fmt.Errorf("persisting %s notifications: %w", typ, err)
	}

	d.dispatchPush(userIDs, typ, title, body, meetupID)

	return len(userIDs), nil
}

// Notify is the single-recipient convenience form of NotifyMany.
func (d *Dispatcher) Notify(
	ctx context.Context,
	userID string,
	typ model.NotificationType,
	title, body string,
	meetupID *string,
) error {
	_, err := d.NotifyMany(ctx, []string{userID}, typ, title, body, meetupID)
	return err
}

// DispatchPush triggers background push delivery without persisting any
// rows. Used after transactional writes where the caller already
// committed the notification rows itself.
func (d *Dispatcher) DispatchPush(
	userIDs []string,
	typ model.NotificationType,
	title, body string,
	meetupID *string,
) {
	d.dispatchPush(userIDs, typ, title, body, meetupID)
}

// dispatchPush hands delivery to a background goroutine with its own
// timeout context. Callers must not assume delivery completed by the
// time their function returns.
func (d *Dispatcher) dispatchPush(
	userIDs []string,
	typ model.NotificationType,
	title, body string,
	meetupID *string,
) {
	if d.pusher == nil {
		return
	}

	data := map[string]string{"type": string(typ)}
	if meetupID != nil {
		data["meetup_id"] = *meetupID
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		res := d.pusher.SendToUsers(ctx, userIDs, title, body, data)
		switch {
		case res.NotConfigured:
			log.Printf("notify: push not configured, skipped %s for %d users", typ, len(userIDs))
		case res.Failed > 0:
			log.Printf("notify: pushed %s to %d devices, %d failed", typ, res.Sent, res.Failed)
		}
	}()
}

// Close waits for all in-flight background pushes to finish.
func (d *Dispatcher) Close() {
	d.wg.Wait()
}
