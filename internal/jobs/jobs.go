// Package jobs contains the periodic background jobs that advance
// meetups through their lifecycle, remind participants, request reviews,
// and process no-shows. Every job is naturally idempotent: eligibility
// is computed from absolute time and from "does the side effect already
// exist" guards, so overlapping or repeated runs never double-apply an
// effect.
package jobs

import (
	"context"

	"github.com/nhle/meetup-scheduler/internal/model"
	"github.com/nhle/meetup-scheduler/internal/store"
)

// alreadyNotified is the idempotency guard shared by the notifying jobs:
// the existence of any notification of the given type for the meetup,
// across all recipients, means the whole batch was already sent.
func alreadyNotified(
	ctx context.Context,
	s store.Store,
	meetupID string,
	typ model.NotificationType,
) (bool, error) {
	return s.HasMeetupNotification(ctx, meetupID, typ)
}
