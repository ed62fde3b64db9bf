package models

import "time"

// UserRoleAssignment binds a user to exactly one role within a company.
// Uniqueness over (user_id, company_id) is enforced by the schema; the role
// value is validated against the closed role enumeration at every boundary.
type UserRoleAssignment struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Member is the list view of a company member: the assignment joined with
// account details.
type Member struct {
	UserID   string    `db:"user_id" json:"user_id"`
	Email    string    `db:"email" json:"email"`
	Name     string    `db:"name" json:"name"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
