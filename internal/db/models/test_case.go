package models

import "time"

// Test case statuses and execution results.
const (
	TestCaseStatusDraft    = "draft"
	TestCaseStatusReady    = "ready"
	TestCaseStatusArchived = "archived"

	ExecutionResultPass    = "pass"
	ExecutionResultFail    = "fail"
	ExecutionResultBlocked = "blocked"
)

// ValidTestCaseStatus reports whether s is a known test case status.
func ValidTestCaseStatus(s string) bool {
	switch s {
	case TestCaseStatusDraft, TestCaseStatusReady, TestCaseStatusArchived:
		return true
	}
	return false
}

// ValidExecutionResult reports whether s is a known execution result.
func ValidExecutionResult(s string) bool {
	switch s {
	case ExecutionResultPass, ExecutionResultFail, ExecutionResultBlocked:
		return true
	}
	return false
}

// TestCase describes a manual or automated test, optionally linked to the
// requirement it verifies.
type TestCase struct {
	ID             string    `db:"id" json:"id"`
	CompanyID      string    `db:"company_id" json:"company_id"`
	ProjectID      string    `db:"project_id" json:"project_id"`
	RequirementID  *string   `db:"requirement_id" json:"requirement_id,omitempty"`
	Title          string    `db:"title" json:"title"`
	Steps          string    `db:"steps" json:"steps"`
	ExpectedResult string    `db:"expected_result" json:"expected_result"`
	Status         string    `db:"status" json:"status"`
	Priority       string    `db:"priority" json:"priority"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TestExecution records one run of a test case.
type TestExecution struct {
	ID         string    `db:"id" json:"id"`
	CompanyID  string    `db:"company_id" json:"company_id"`
	TestCaseID string    `db:"test_case_id" json:"test_case_id"`
	ExecutedBy string    `db:"executed_by" json:"executed_by"`
	Result     string    `db:"result" json:"result"`
	Notes      string    `db:"notes" json:"notes"`
	ExecutedAt time.Time `db:"executed_at" json:"executed_at"`
}
