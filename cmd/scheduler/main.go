package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nhle/meetup-scheduler/internal/config"
	"github.com/nhle/meetup-scheduler/internal/jobs"
	"github.com/nhle/meetup-scheduler/internal/notify"
	"github.com/nhle/meetup-scheduler/internal/push"
	"github.com/nhle/meetup-scheduler/internal/scheduler"
	"github.com/nhle/meetup-scheduler/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	fcmClient, err := push.NewFirebaseClient(ctx, cfg.Push.CredentialsFile)
	if err != nil {
		log.Fatalf("initializing push client: %v", err)
	}
	if fcmClient == nil {
		log.Printf("push delivery disabled: no credentials configured")
	}

	gateway := push.NewGateway(fcmClient, st, cfg.Push.BatchSize, cfg.Push.RateLimit)
	dispatcher := notify.NewDispatcher(st, gateway)
	defer dispatcher.Close()

	sched := scheduler.New()
	sched.Register(
		jobs.NewMeetupReminderJob(st, dispatcher, time.Duration(cfg.Jobs.ReminderLeadMin)*time.Minute),
		cfg.Jobs.ReminderInterval(),
	)
	sched.Register(jobs.NewStatusTransitionJob(st), cfg.Jobs.StatusInterval())
	sched.Register(
		jobs.NewReviewRequestJob(st, dispatcher, time.Duration(cfg.Jobs.ReviewLookbackHours)*time.Hour),
		cfg.Jobs.ReviewInterval(),
	)
	sched.Register(
		jobs.NewNoShowProcessingJob(
			st, dispatcher,
			cfg.Jobs.NoShowPenalty,
			time.Duration(cfg.Jobs.NoShowSettleHours)*time.Hour,
		),
		cfg.Jobs.NoShowInterval(),
	)

	sched.Start()
	log.Printf("meetup scheduler running")

	<-ctx.Done()
	log.Printf("shutting down")
	sched.Stop()
}
