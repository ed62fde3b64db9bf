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

// RequirementRepository handles requirement database operations
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository creates a new RequirementRepository
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// Create creates a new requirement
func (r *RequirementRepository) Create(ctx context.Context, req *models.Requirement) error {
	req.ID = uuid.New().String()
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()

	query := `
		INSERT INTO requirements (id, company_id, project_id, title, description, req_type, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.CompanyID, req.ProjectID, req.Title, req.Description,
		req.ReqType, req.Status, req.Priority, req.CreatedAt, req.UpdatedAt)
	return err
}

// GetByID retrieves a requirement by ID within a company
func (r *RequirementRepository) GetByID(ctx context.Context, id, companyID string) (*models.Requirement, error) {
	query := `
		SELECT id, company_id, project_id, title, description, req_type, status, priority, created_at, updated_at
		FROM requirements
		WHERE id = $1 AND company_id = $2
	`

	req := &models.Requirement{}
	err := r.db.GetContext(ctx, req, query, id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return req, nil
}

// ListByProject retrieves all requirements for a project, newest first
func (r *RequirementRepository) ListByProject(ctx context.Context, projectID, companyID string) ([]*models.Requirement, error) {
	query := `
		SELECT id, company_id, project_id, title, description, req_type, status, priority, created_at, updated_at
		FROM requirements
		WHERE project_id = $1 AND company_id = $2
		ORDER BY created_at DESC
	`

	reqs := []*models.Requirement{}
	if err := r.db.SelectContext(ctx, &reqs, query, projectID, companyID); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Update updates a requirement's mutable fields
func (r *RequirementRepository) Update(ctx context.Context, req *models.Requirement) error {
	req.UpdatedAt = time.Now()

	query := `
		UPDATE requirements
		SET title = $3, description = $4, req_type = $5, status = $6, priority = $7, updated_at = $8
		WHERE id = $1 AND company_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.CompanyID, req.Title, req.Description,
		req.ReqType, req.Status, req.Priority, req.UpdatedAt)
	return err
}

// Delete deletes a requirement
func (r *RequirementRepository) Delete(ctx context.Context, id, companyID string) error {
	query := `DELETE FROM requirements WHERE id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, companyID)
	return err
}
