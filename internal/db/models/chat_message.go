package models

import "time"

// ChatMessage is one post in a company-scoped channel.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Channel   string    `db:"channel" json:"channel"`
	UserID    string    `db:"user_id" json:"user_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
