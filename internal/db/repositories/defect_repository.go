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

// DefectRepository handles defect database operations
type DefectRepository struct {
	db *sqlx.DB
}

// NewDefectRepository creates a new DefectRepository
func NewDefectRepository(db *sqlx.DB) *DefectRepository {
	return &DefectRepository{db: db}
}

// Create creates a new defect
func (r *DefectRepository) Create(ctx context.Context, defect *models.Defect) error {
	defect.ID = uuid.New().String()
	defect.CreatedAt = time.Now()
	defect.UpdatedAt = time.Now()

	query := `
		INSERT INTO defects (id, company_id, project_id, test_case_id, title, description, severity, priority, status, reported_by, assignee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		defect.ID, defect.CompanyID, defect.ProjectID, defect.TestCaseID,
		defect.Title, defect.Description, defect.Severity, defect.Priority,
		defect.Status, defect.ReportedBy, defect.AssigneeID,
		defect.CreatedAt, defect.UpdatedAt)
	return err
}

// GetByID retrieves a defect by ID within a company
func (r *DefectRepository) GetByID(ctx context.Context, id, companyID string) (*models.Defect, error) {
	query := `
		SELECT id, company_id, project_id, test_case_id, title, description, severity, priority, status, reported_by, assignee_id, created_at, updated_at
		FROM defects
		WHERE id = $1 AND company_id = $2
	`

	defect := &models.Defect{}
	err := r.db.GetContext(ctx, defect, query, id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return defect, nil
}

// ListByProject retrieves all defects for a project, newest first
func (r *DefectRepository) ListByProject(ctx context.Context, projectID, companyID string) ([]*models.Defect, error) {
	query := `
		SELECT id, company_id, project_id, test_case_id, title, description, severity, priority, status, reported_by, assignee_id, created_at, updated_at
		FROM defects
		WHERE project_id = $1 AND company_id = $2
		ORDER BY created_at DESC
	`

	defects := []*models.Defect{}
	if err := r.db.SelectContext(ctx, &defects, query, projectID, companyID); err != nil {
		return nil, err
	}
	return defects, nil
}

// Update updates a defect's mutable fields
func (r *DefectRepository) Update(ctx context.Context, defect *models.Defect) error {
	defect.UpdatedAt = time.Now()

	query := `
		UPDATE defects
		SET title = $3, description = $4, severity = $5, priority = $6, status = $7, assignee_id = $8, updated_at = $9
		WHERE id = $1 AND company_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		defect.ID, defect.CompanyID, defect.Title, defect.Description,
		defect.Severity, defect.Priority, defect.Status, defect.AssigneeID, defect.UpdatedAt)
	return err
}

// Delete deletes a defect
func (r *DefectRepository) Delete(ctx context.Context, id, companyID string) error {
	query := `DELETE FROM defects WHERE id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, companyID)
	return err
}
