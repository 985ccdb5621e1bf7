// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/models"
)

// Scheduler owns the cron runner and the stores its jobs read
type Scheduler struct {
	cron *cron.Cron
	ICDB databases.InviteCodeDatabase
	RDB  databases.RegistrationDatabase
}

// New creates a new scheduler instance
func New(icDB databases.InviteCodeDatabase, regDB databases.RegistrationDatabase) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		ICDB: icDB,
		RDB:  regDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// log a stats snapshot daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.logStatsSnapshot)
	if err != nil {
		zap.S().Errorw("failed to register stats snapshot job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("stats scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("stats scheduler stopped")
}

// logStatsSnapshot records the daily counters so operators can follow
// issuance and registration volume from the logs alone.
func (s *Scheduler) logStatsSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	totalCodes, err := s.ICDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to count invite codes", "error", err)
		return
	}
	totalRegistrations, err := s.RDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to count registrations", "error", err)
		return
	}
	nftRegistrations, err := s.RDB.CountDocuments(ctx, bson.M{"registrationType": models.RegistrationTypeNFT})
	if err != nil {
		zap.S().Errorw("failed to count nft registrations", "error", err)
		return
	}

	zap.S().Infow("daily stats snapshot",
		"inviteCodes", totalCodes,
		"registrations", totalRegistrations,
		"nftRegistrations", nftRegistrations,
		"inviteRegistrations", totalRegistrations-nftRegistrations,
	)
}
