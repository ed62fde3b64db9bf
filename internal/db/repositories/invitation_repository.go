package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
)

// InvitationRepository handles invitation database operations
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create creates a new pending invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	inv.ID = uuid.New().String()
	inv.Status = models.InvitationStatusPending
	inv.CreatedAt = time.Now()

	query := `
		INSERT INTO invitations (id, email, company_id, role, status, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.Email, inv.CompanyID, inv.Role, inv.Status,
		inv.TokenHash, inv.CreatedAt, inv.ExpiresAt)
	return err
}

// GetByID retrieves an invitation by ID
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	query := `
		SELECT id, email, company_id, role, status, token_hash, created_at, expires_at
		FROM invitations
		WHERE id = $1
	`

	inv := &models.Invitation{}
	err := r.db.GetContext(ctx, inv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return inv, nil
}

// ListByCompany retrieves all invitations for a company, newest first
func (r *InvitationRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.Invitation, error) {
	query := `
		SELECT id, email, company_id, role, status, token_hash, created_at, expires_at
		FROM invitations
		WHERE company_id = $1
		ORDER BY created_at DESC
	`

	invitations := []*models.Invitation{}
	if err := r.db.SelectContext(ctx, &invitations, query, companyID); err != nil {
		return nil, err
	}
	return invitations, nil
}

// HasPending reports whether a pending, unexpired invitation already exists
// for this email within the company.
func (r *InvitationRepository) HasPending(ctx context.Context, companyID, email string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM invitations
		WHERE company_id = $1 AND email = $2 AND status = $3 AND expires_at > NOW()
	`
	err := r.db.GetContext(ctx, &count, query, companyID, email, models.InvitationStatusPending)
	return count > 0, err
}

// MarkAccepted transitions a pending invitation to accepted
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string) error {
	query := `UPDATE invitations SET status = $2 WHERE id = $1 AND status = $3`
	_, err := r.db.ExecContext(ctx, query, id, models.InvitationStatusAccepted, models.InvitationStatusPending)
	return err
}

// Delete cancels an invitation within a company
func (r *InvitationRepository) Delete(ctx context.Context, id, companyID string) error {
	query := `DELETE FROM invitations WHERE id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, companyID)
	return err
}

// ExpireOverdue transitions every pending invitation whose expiry has passed
// to expired, returning the number of rows affected.
func (r *InvitationRepository) ExpireOverdue(ctx context.Context) (int64, error) {
	query := `
		UPDATE invitations
		SET status = $1
		WHERE status = $2 AND expires_at <= NOW()
	`

	res, err := r.db.ExecContext(ctx, query, models.InvitationStatusExpired, models.InvitationStatusPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
