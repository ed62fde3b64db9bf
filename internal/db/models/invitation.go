package models

import "time"

// Invitation lifecycle states.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusExpired  = "expired"
)

// Invitation invites an email address into a company with a preassigned role.
// Only the bcrypt hash of the invitation token is stored; the raw token is
// returned once at creation and then discarded.
type Invitation struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Role      string    `db:"role" json:"role"`
	Status    string    `db:"status" json:"status"`
	TokenHash string    `db:"token_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}
