package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/meetup-scheduler/internal/model"
	"github.com/nhle/meetup-scheduler/internal/store"
	"github.com/nhle/meetup-scheduler/tests/testutil"
)

var baseTime = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

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

func seedParticipant(t *testing.T, s store.Store, meetupID, userID, approval string) {
	t.Helper()
	err := s.CreateParticipant(context.Background(), model.Participant{
		MeetupID:       meetupID,
		UserID:         userID,
		ApprovalStatus: approval,
	})
	if err != nil {
		t.Fatalf("seeding participant %s/%s: %v", meetupID, userID, err)
	}
}

func TestStartDueMeetups(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	seedMeetup(t, s, "due-1", model.StatusRecruiting, baseTime.Add(-time.Minute))
	seedMeetup(t, s, "due-2", model.StatusRecruitingComplete, baseTime.Add(-2*time.Hour))
	seedMeetup(t, s, "future", model.StatusRecruiting, baseTime.Add(time.Hour))
	seedMeetup(t, s, "rejected", model.StatusRejected, baseTime.Add(-time.Hour))

	n, err := s.StartDueMeetups(ctx, baseTime)
	if err != nil {
		t.Fatalf("StartDueMeetups: %v", err)
	}
	if n != 2 {
		t.Errorf("updated %d meetups, want 2", n)
	}

	for id, want := range map[string]model.MeetupStatus{
		"due-1":    model.StatusInProgress,
		"due-2":    model.StatusInProgress,
		"future":   model.StatusRecruiting,
		"rejected": model.StatusRejected,
	} {
		m, err := s.GetMeetupByID(ctx, id)
		if err != nil {
			t.Fatalf("getting meetup %s: %v", id, err)
		}
		if m.Status != want {
			t.Errorf("meetup %s status = %s, want %s", id, m.Status, want)
		}
	}

	// A second run with no newly-eligible rows is a no-op.
	n, err = s.StartDueMeetups(ctx, baseTime)
	if err != nil {
		t.Fatalf("StartDueMeetups again: %v", err)
	}
	if n != 0 {
		t.Errorf("second run updated %d meetups, want 0", n)
	}
}

func TestEndOverdueMeetups(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	seedMeetup(t, s, "running", model.StatusInProgress, baseTime.Add(-2*time.Hour))
	seedMeetup(t, s, "overdue", model.StatusInProgress, baseTime.Add(-4*time.Hour))

	n, err := s.EndOverdueMeetups(ctx, baseTime)
	if err != nil {
		t.Fatalf("EndOverdueMeetups: %v", err)
	}
	if n != 1 {
		t.Errorf("updated %d meetups, want 1", n)
	}

	m, err := s.GetMeetupByID(ctx, "overdue")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != model.StatusEnded {
		t.Errorf("overdue meetup status = %s, want ended", m.Status)
	}
	m, err = s.GetMeetupByID(ctx, "running")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != model.StatusInProgress {
		t.Errorf("running meetup status = %s, want in_progress", m.Status)
	}
}

func TestGetMeetupsStartingBetween(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	seedMeetup(t, s, "soon", model.StatusRecruiting, baseTime.Add(10*time.Minute))
	seedMeetup(t, s, "edge", model.StatusRecruitingComplete, baseTime.Add(30*time.Minute))
	seedMeetup(t, s, "later", model.StatusRecruiting, baseTime.Add(45*time.Minute))
	seedMeetup(t, s, "started", model.StatusInProgress, baseTime.Add(5*time.Minute))

	got, err := s.GetMeetupsStartingBetween(ctx, baseTime, baseTime.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("GetMeetupsStartingBetween: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d meetups, want 2", len(got))
	}
	if got[0].ID != "soon" || got[1].ID != "edge" {
		t.Errorf("got meetups %s, %s; want soon, edge", got[0].ID, got[1].ID)
	}
}

func TestGetMeetupsForReview(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Ended 2 hours ago (scheduled 5h ago, 3h duration).
	seedMeetup(t, s, "recent", model.StatusEnded, baseTime.Add(-5*time.Hour))
	// Status lagging but effectively over.
	seedMeetup(t, s, "lagging", model.StatusInProgress, baseTime.Add(-6*time.Hour))
	// Still running.
	seedMeetup(t, s, "running", model.StatusInProgress, baseTime.Add(-time.Hour))
	// Far in the past, outside the lookback window.
	seedMeetup(t, s, "ancient", model.StatusEnded, baseTime.Add(-72*time.Hour))
	// Suspended meetups never qualify.
	seedMeetup(t, s, "suspended", model.StatusSuspended, baseTime.Add(-5*time.Hour))

	oldest := baseTime.Add(-29 * time.Hour)
	got, err := s.GetMeetupsForReview(ctx, baseTime, oldest)
	if err != nil {
		t.Fatalf("GetMeetupsForReview: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d meetups, want 2", len(got))
	}
	ids := map[string]bool{got[0].ID: true, got[1].ID: true}
	if !ids["recent"] || !ids["lagging"] {
		t.Errorf("got %v, want recent and lagging", ids)
	}
}

func TestGetMeetupsForNoShow(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	// Ended 28 hours ago: settled.
	settled := seedMeetup(t, s, "settled", model.StatusEnded, baseTime.Add(-31*time.Hour))
	seedParticipant(t, s, settled.ID, "user-1", model.ApprovalApproved)

	// Ended 28 hours ago but already processed.
	processed := seedMeetup(t, s, "processed", model.StatusEnded, baseTime.Add(-31*time.Hour))
	err := s.CreateParticipant(ctx, model.Participant{
		MeetupID:       processed.ID,
		UserID:         "user-2",
		ApprovalStatus: model.ApprovalApproved,
		NoShow:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Ended only 2 hours ago: not settled yet.
	seedMeetup(t, s, "fresh", model.StatusEnded, baseTime.Add(-5*time.Hour))

	got, err := s.GetMeetupsForNoShow(ctx, baseTime.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("GetMeetupsForNoShow: %v", err)
	}
	if len(got) != 1 || got[0].ID != "settled" {
		t.Fatalf("got %v, want only settled", got)
	}
}

func TestHasMeetupNotification(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	meetupID := "m-1"
	has, err := s.HasMeetupNotification(ctx, meetupID, model.NotificationReminder30Min)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("expected no notification before insert")
	}

	err = s.CreateNotifications(ctx, []model.Notification{
		{UserID: "u-1", Type: model.NotificationReminder30Min, MeetupID: &meetupID},
		{UserID: "u-2", Type: model.NotificationReminder30Min, MeetupID: &meetupID},
	})
	if err != nil {
		t.Fatalf("CreateNotifications: %v", err)
	}

	has, err = s.HasMeetupNotification(ctx, meetupID, model.NotificationReminder30Min)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("expected notification to exist after insert")
	}

	// A different type is tracked independently.
	has, err = s.HasMeetupNotification(ctx, meetupID, model.NotificationReviewRequest)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("review-request should not be marked by reminder rows")
	}
}

func TestDeviceTokens(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, tok := range []model.DeviceToken{
		{UserID: "u-1", Token: "tok-a", Platform: "ios"},
		{UserID: "u-1", Token: "tok-b", Platform: "android"},
		{UserID: "u-2", Token: "tok-c", Platform: "ios"},
	} {
		if err := s.CreateDeviceToken(ctx, tok); err != nil {
			t.Fatalf("creating token %s: %v", tok.Token, err)
		}
	}

	tokens, err := s.GetDeviceTokens(ctx, []string{"u-1", "u-2"})
	if err != nil {
		t.Fatalf("GetDeviceTokens: %v", err)
	}
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}

	if err := s.DeleteDeviceTokens(ctx, []string{"tok-a", "tok-c"}); err != nil {
		t.Fatalf("DeleteDeviceTokens: %v", err)
	}

	tokens, err = s.GetDeviceTokens(ctx, []string{"u-1", "u-2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 1 || tokens[0].Token != "tok-b" {
		t.Fatalf("got %v, want only tok-b", tokens)
	}

	// No users means no tokens and no error.
	tokens, err = s.GetDeviceTokens(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 0 {
		t.Errorf("got %d tokens for empty user list, want 0", len(tokens))
	}
}

func TestTrustPenaltyClamp(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, model.User{ID: "u-low", TrustScore: 5}); err != nil {
		t.Fatal(err)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.ApplyTrustPenalty(ctx, "u-low", 10); err != nil {
		t.Fatalf("ApplyTrustPenalty: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	u, err := s.GetUser(ctx, "u-low")
	if err != nil {
		t.Fatal(err)
	}
	if u.TrustScore != 0 {
		t.Errorf("trust score = %d, want 0 (clamped)", u.TrustScore)
	}
}

func TestTxRollback(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, model.User{ID: "u-1", TrustScore: 50}); err != nil {
		t.Fatal(err)
	}
	m := seedMeetup(t, s, "m-1", model.StatusEnded, baseTime.Add(-31*time.Hour))
	seedParticipant(t, s, m.ID, "u-1", model.ApprovalApproved)

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.MarkNoShow(ctx, m.ID, "u-1"); err != nil {
		t.Fatal(err)
	}
	if err := tx.ApplyTrustPenalty(ctx, "u-1", 10); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	p, err := s.GetParticipant(ctx, m.ID, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if p.NoShow {
		t.Error("no_show flag survived rollback")
	}
	u, err := s.GetUser(ctx, "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if u.TrustScore != 50 {
		t.Errorf("trust score = %d after rollback, want 50", u.TrustScore)
	}
}

func TestNoShowCandidatesExcludesCheckIns(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	m := seedMeetup(t, s, "m-1", model.StatusEnded, baseTime.Add(-31*time.Hour))
	seedParticipant(t, s, m.ID, "ghost", model.ApprovalApproved)
	seedParticipant(t, s, m.ID, "checked-in", model.ApprovalApproved)
	seedParticipant(t, s, m.ID, "pending", model.ApprovalPending)
	seedParticipant(t, s, m.ID, m.HostID, model.ApprovalApproved)
	err := s.CreateParticipant(ctx, model.Participant{
		MeetupID:       m.ID,
		UserID:         "attended",
		ApprovalStatus: model.ApprovalApproved,
		Attended:       true,
	})
	if err != nil {
		t.Fatal(err)
	}
	err = s.CreateCheckIn(ctx, model.CheckIn{MeetupID: m.ID, UserID: "checked-in", Confirmed: true})
	if err != nil {
		t.Fatal(err)
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	candidates, err := tx.NoShowCandidates(ctx, m.ID, m.HostID)
	if err != nil {
		t.Fatalf("NoShowCandidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].UserID != "ghost" {
		t.Fatalf("candidates = %v, want only ghost", candidates)
	}
}
