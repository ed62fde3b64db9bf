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

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.ID = uuid.New().String()
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()

	query := `
		INSERT INTO projects (id, company_id, name, description, status, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.CompanyID, project.Name, project.Description,
		project.Status, project.OwnerID, project.CreatedAt, project.UpdatedAt)
	return err
}

// GetByID retrieves a project by ID within a company
func (r *ProjectRepository) GetByID(ctx context.Context, id, companyID string) (*models.Project, error) {
	query := `
		SELECT id, company_id, name, description, status, owner_id, created_at, updated_at
		FROM projects
		WHERE id = $1 AND company_id = $2
	`

	project := &models.Project{}
	err := r.db.GetContext(ctx, project, query, id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return project, nil
}

// ListByCompany retrieves all projects for a company, newest first
func (r *ProjectRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.Project, error) {
	query := `
		SELECT id, company_id, name, description, status, owner_id, created_at, updated_at
		FROM projects
		WHERE company_id = $1
		ORDER BY created_at DESC
	`

	projects := []*models.Project{}
	if err := r.db.SelectContext(ctx, &projects, query, companyID); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project's mutable fields
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET name = $3, description = $4, status = $5, owner_id = $6, updated_at = $7
		WHERE id = $1 AND company_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.CompanyID, project.Name, project.Description,
		project.Status, project.OwnerID, project.UpdatedAt)
	return err
}

// Delete deletes a project (cascades to tasks, requirements, test cases, defects)
func (r *ProjectRepository) Delete(ctx context.Context, id, companyID string) error {
	query := `DELETE FROM projects WHERE id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, companyID)
	return err
}
