package models

import "time"

// RoleDefinitionRecord is the stored override for one role's definition.
// Roles without a record use the compiled-in defaults; the owner role is
// never stored. Permissions holds the granted permission keys, persisted
// as JSONB.
type RoleDefinitionRecord struct {
	Role        string    `json:"role"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	UpdatedAt   time.Time `json:"updated_at"`
}
