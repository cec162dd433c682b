package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/linesmerrill/vehicle-intake-api/databases"
	"github.com/linesmerrill/vehicle-intake-api/workflow"
)

// ResetFlowMaxAge is how long an unfinished password reset flow is kept
const ResetFlowMaxAge = time.Hour

// ResetPurger drops stale password reset flows
type ResetPurger interface {
	Purge(maxAge time.Duration) int
}

// Scheduler handles periodic cleanup of abandoned intakes, expired sessions and stale
// password reset flows. Every job is an idempotent delete, so replicas may run it
// concurrently.
type Scheduler struct {
	cron         *cron.Cron
	IntakeDB     databases.IntakeDatabase
	SessionDB    databases.SessionDatabase
	Resets       ResetPurger
	schedule     string
	intakeMaxAge time.Duration
	now          func() time.Time
}

// NewScheduler creates a new scheduler instance. Intakes that did not finish and were
// not touched for intakeMaxAge are removed.
func NewScheduler(intakeDB databases.IntakeDatabase, sessionDB databases.SessionDatabase, resets ResetPurger, schedule string, intakeMaxAge time.Duration) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		IntakeDB:     intakeDB,
		SessionDB:    sessionDB,
		Resets:       resets,
		schedule:     schedule,
		intakeMaxAge: intakeMaxAge,
		now:          time.Now,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Purge); err != nil {
		return err
	}
	s.cron.Start()
	zap.S().Infow("cleanup scheduler started", "schedule", s.schedule)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("cleanup scheduler stopped")
}

// Purge runs every cleanup once
func (s *Scheduler) Purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := s.now().UTC()

	intakes, err := s.IntakeDB.DeleteMany(ctx, bson.M{
		"updatedAt":      bson.M{"$lt": now.Add(-s.intakeMaxAge)},
		"workflow.phase": bson.M{"$ne": workflow.PhaseSuccess},
	})
	if err != nil {
		zap.S().Errorw("failed to purge abandoned intakes", "error", err)
	}

	sessions, err := s.SessionDB.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		zap.S().Errorw("failed to purge expired sessions", "error", err)
	}

	resets := 0
	if s.Resets != nil {
		resets = s.Resets.Purge(ResetFlowMaxAge)
	}

	zap.S().Infow("cleanup finished",
		"intakes", intakes,
		"sessions", sessions,
		"passwordResets", resets)
}
