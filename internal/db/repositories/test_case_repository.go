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

// TestCaseRepository handles test case and execution database operations
type TestCaseRepository struct {
	db *sqlx.DB
}

// NewTestCaseRepository creates a new TestCaseRepository
func NewTestCaseRepository(db *sqlx.DB) *TestCaseRepository {
	return &TestCaseRepository{db: db}
}

// Create creates a new test case
func (r *TestCaseRepository) Create(ctx context.Context, tc *models.TestCase) error {
	tc.ID = uuid.New().String()
	tc.CreatedAt = time.Now()
	tc.UpdatedAt = time.Now()

	query := `
		INSERT INTO test_cases (id, company_id, project_id, requirement_id, title, steps, expected_result, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		tc.ID, tc.CompanyID, tc.ProjectID, tc.RequirementID, tc.Title,
		tc.Steps, tc.ExpectedResult, tc.Status, tc.Priority, tc.CreatedAt, tc.UpdatedAt)
	return err
}

// GetByID retrieves a test case by ID within a company
func (r *TestCaseRepository) GetByID(ctx context.Context, id, companyID string) (*models.TestCase, error) {
	query := `
		SELECT id, company_id, project_id, requirement_id, title, steps, expected_result, status, priority, created_at, updated_at
		FROM test_cases
		WHERE id = $1 AND company_id = $2
	`

	tc := &models.TestCase{}
	err := r.db.GetContext(ctx, tc, query, id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return tc, nil
}

// ListByProject retrieves all test cases for a project, newest first
func (r *TestCaseRepository) ListByProject(ctx context.Context, projectID, companyID string) ([]*models.TestCase, error) {
	query := `
		SELECT id, company_id, project_id, requirement_id, title, steps, expected_result, status, priority, created_at, updated_at
		FROM test_cases
		WHERE project_id = $1 AND company_id = $2
		ORDER BY created_at DESC
	`

	cases := []*models.TestCase{}
	if err := r.db.SelectContext(ctx, &cases, query, projectID, companyID); err != nil {
		return nil, err
	}
	return cases, nil
}

// Update updates a test case's mutable fields
func (r *TestCaseRepository) Update(ctx context.Context, tc *models.TestCase) error {
	tc.UpdatedAt = time.Now()

	query := `
		UPDATE test_cases
		SET requirement_id = $3, title = $4, steps = $5, expected_result = $6, status = $7, priority = $8, updated_at = $9
		WHERE id = $1 AND company_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		tc.ID, tc.CompanyID, tc.RequirementID, tc.Title, tc.Steps,
		tc.ExpectedResult, tc.Status, tc.Priority, tc.UpdatedAt)
	return err
}

// Delete deletes a test case (cascades to executions)
func (r *TestCaseRepository) Delete(ctx context.Context, id, companyID string) error {
	query := `DELETE FROM test_cases WHERE id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, companyID)
	return err
}

// CreateExecution records one run of a test case
func (r *TestCaseRepository) CreateExecution(ctx context.Context, exec *models.TestExecution) error {
	exec.ID = uuid.New().String()
	exec.ExecutedAt = time.Now()

	query := `
		INSERT INTO test_executions (id, company_id, test_case_id, executed_by, result, notes, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		exec.ID, exec.CompanyID, exec.TestCaseID, exec.ExecutedBy,
		exec.Result, exec.Notes, exec.ExecutedAt)
	return err
}

// ListExecutions retrieves all executions for a test case, newest first
func (r *TestCaseRepository) ListExecutions(ctx context.Context, testCaseID, companyID string) ([]*models.TestExecution, error) {
	query := `
		SELECT id, company_id, test_case_id, executed_by, result, notes, executed_at
		FROM test_executions
		WHERE test_case_id = $1 AND company_id = $2
		ORDER BY executed_at DESC
	`

	execs := []*models.TestExecution{}
	if err := r.db.SelectContext(ctx, &execs, query, testCaseID, companyID); err != nil {
		return nil, err
	}
	return execs, nil
}
