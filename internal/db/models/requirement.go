package models

import "time"

// Requirement types and statuses.
const (
	RequirementTypeFunctional    = "functional"
	RequirementTypeNonFunctional = "non_functional"
	RequirementTypeBusiness      = "business"

	RequirementStatusDraft      = "draft"
	RequirementStatusApproved   = "approved"
	RequirementStatusInProgress = "in_progress"
	RequirementStatusDone       = "done"
)

// ValidRequirementType reports whether s is a known requirement type.
func ValidRequirementType(s string) bool {
	switch s {
	case RequirementTypeFunctional, RequirementTypeNonFunctional, RequirementTypeBusiness:
		return true
	}
	return false
}

// ValidRequirementStatus reports whether s is a known requirement status.
func ValidRequirementStatus(s string) bool {
	switch s {
	case RequirementStatusDraft, RequirementStatusApproved,
		RequirementStatusInProgress, RequirementStatusDone:
		return true
	}
	return false
}

// Requirement captures a project requirement with type, status, and priority.
type Requirement struct {
	ID          string    `db:"id" json:"id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	ProjectID   string    `db:"project_id" json:"project_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ReqType     string    `db:"req_type" json:"type"`
	Status      string    `db:"status" json:"status"`
	Priority    string    `db:"priority" json:"priority"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
