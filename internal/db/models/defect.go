package models

import "time"

// Defect severities and lifecycle statuses.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	DefectStatusOpen       = "open"
	DefectStatusInProgress = "in_progress"
	DefectStatusResolved   = "resolved"
	DefectStatusClosed     = "closed"
	DefectStatusReopened   = "reopened"
)

// ValidSeverity reports whether s is a known defect severity.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidDefectStatus reports whether s is a known defect status.
func ValidDefectStatus(s string) bool {
	switch s {
	case DefectStatusOpen, DefectStatusInProgress, DefectStatusResolved,
		DefectStatusClosed, DefectStatusReopened:
		return true
	}
	return false
}

// Defect tracks a reported problem, optionally linked to the test case that
// surfaced it.
type Defect struct {
	ID          string    `db:"id" json:"id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	ProjectID   string    `db:"project_id" json:"project_id"`
	TestCaseID  *string   `db:"test_case_id" json:"test_case_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Severity    string    `db:"severity" json:"severity"`
	Priority    string    `db:"priority" json:"priority"`
	Status      string    `db:"status" json:"status"`
	ReportedBy  *string   `db:"reported_by" json:"reported_by,omitempty"`
	AssigneeID  *string   `db:"assignee_id" json:"assignee_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
