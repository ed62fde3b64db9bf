// Package models - user.go defines the User model for QForma accounts with
// email, display name, bcrypt password hash, and the currently selected company.
package models

import "time"

// User represents an account in the system
type User struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	Name             string    `db:"name" json:"name"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	CurrentCompanyID *string   `db:"current_company_id" json:"current_company_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
