package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newInvitationRepoForJob(t *testing.T) (*repositories.InvitationRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return repositories.NewInvitationRepository(db), mock
}

// ---------------------------------------------------------------------------
// NewInvitationExpiryJob — construction and interval defaulting
// ---------------------------------------------------------------------------

func TestNewInvitationExpiryJob_DefaultInterval(t *testing.T) {
	cfg := &config.InvitationsConfig{ExpiryDays: 7, ExpiryCheckIntervalHours: 0}

	j := NewInvitationExpiryJob(nil, cfg)
	if j == nil {
		t.Fatal("NewInvitationExpiryJob returned nil")
	}
	if j.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", j.interval)
	}
}

func TestNewInvitationExpiryJob_NegativeInterval_DefaultsOneHour(t *testing.T) {
	cfg := &config.InvitationsConfig{ExpiryDays: 7, ExpiryCheckIntervalHours: -3}

	j := NewInvitationExpiryJob(nil, cfg)
	if j.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", j.interval)
	}
}

func TestNewInvitationExpiryJob_CustomInterval(t *testing.T) {
	cfg := &config.InvitationsConfig{ExpiryDays: 7, ExpiryCheckIntervalHours: 12}

	j := NewInvitationExpiryJob(nil, cfg)
	if j.interval != 12*time.Hour {
		t.Errorf("interval = %v, want 12h", j.interval)
	}
}

// ---------------------------------------------------------------------------
// runSweep
// ---------------------------------------------------------------------------

func TestRunSweep_ExpiresOverdueInvitations(t *testing.T) {
	repo, mock := newInvitationRepoForJob(t)
	mock.ExpectExec("UPDATE invitations.*SET status").
		WillReturnResult(sqlmock.NewResult(0, 2))

	j := NewInvitationExpiryJob(repo, &config.InvitationsConfig{ExpiryDays: 7, ExpiryCheckIntervalHours: 1})
	j.runSweep(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("sweep did not run the expiry update: %v", err)
	}
}

func TestRunSweep_DBErrorDoesNotPanic(t *testing.T) {
	repo, mock := newInvitationRepoForJob(t)
	mock.ExpectExec("UPDATE invitations.*SET status").
		WillReturnError(errors.New("db down"))

	j := NewInvitationExpiryJob(repo, &config.InvitationsConfig{ExpiryDays: 7, ExpiryCheckIntervalHours: 1})
	j.runSweep(context.Background())
}

// ---------------------------------------------------------------------------
// Start / Stop
// ---------------------------------------------------------------------------

func TestStartStop_ExitsCleanly(t *testing.T) {
	repo, mock := newInvitationRepoForJob(t)
	// Initial sweep runs immediately on Start.
	mock.ExpectExec("UPDATE invitations.*SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	j := NewInvitationExpiryJob(repo, &config.InvitationsConfig{ExpiryDays: 7, ExpiryCheckIntervalHours: 1})

	done := make(chan struct{})
	go func() {
		j.Start(context.Background())
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	j.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not exit after Stop")
	}
}

func TestStart_ContextCancelExits(t *testing.T) {
	repo, mock := newInvitationRepoForJob(t)
	mock.ExpectExec("UPDATE invitations.*SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	j := NewInvitationExpiryJob(repo, &config.InvitationsConfig{ExpiryDays: 7, ExpiryCheckIntervalHours: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not exit after context cancellation")
	}
}
