// invitation_expiry.go implements the InvitationExpiryJob background job, which
// periodically transitions pending invitations past their expiry date to the
// expired status. Expiry is enforced at accept time as well (an overdue token is
// rejected even if this job has not run yet), so the job exists to keep listings
// accurate and to stop expired invitations counting against the duplicate-pending
// check. It is always safe to start regardless of deployment environment.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/telemetry"
)

// InvitationExpiryJob periodically expires overdue pending invitations.
type InvitationExpiryJob struct {
	invitationRepo *repositories.InvitationRepository
	interval       time.Duration
	stopChan       chan struct{}
}

// NewInvitationExpiryJob creates a new InvitationExpiryJob.
// cfg.ExpiryCheckIntervalHours controls how often the sweep runs (default 1h).
func NewInvitationExpiryJob(
	invitationRepo *repositories.InvitationRepository,
	cfg *config.InvitationsConfig,
) *InvitationExpiryJob {
	hours := cfg.ExpiryCheckIntervalHours
	if hours <= 0 {
		hours = 1
	}
	return &InvitationExpiryJob{
		invitationRepo: invitationRepo,
		interval:       time.Duration(hours) * time.Hour,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the background expiry loop.
// It runs an initial sweep immediately, then repeats on the configured interval.
// The loop exits when ctx is cancelled or Stop() is called.
func (j *InvitationExpiryJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Printf("Invitation expiry job started (check interval: %v)", j.interval)

	// Run once immediately on startup
	j.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			j.runSweep(ctx)
		case <-j.stopChan:
			log.Println("Invitation expiry job stopped")
			return
		case <-ctx.Done():
			log.Println("Invitation expiry job context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (j *InvitationExpiryJob) Stop() {
	close(j.stopChan)
}

// runSweep expires every overdue pending invitation in one statement.
func (j *InvitationExpiryJob) runSweep(ctx context.Context) {
	expired, err := j.invitationRepo.ExpireOverdue(ctx)
	if err != nil {
		log.Printf("Invitation expiry job: sweep failed: %v", err)
		return
	}
	if expired == 0 {
		return
	}

	telemetry.InvitationsExpiredTotal.Add(float64(expired))
	log.Printf("Invitation expiry job: expired %d invitation(s)", expired)
}
