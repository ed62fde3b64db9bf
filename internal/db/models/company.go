// Package models defines the persistence-layer structs for QForma entities.
// Field tags serve sqlx scanning (db) and API serialization (json).
package models

import "time"

// Company is the tenant root. Every domain entity carries a company_id and
// every query filters on it.
type Company struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
