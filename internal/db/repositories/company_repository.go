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

// CompanyRepository handles company (tenant) database operations
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create creates a new company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	company.ID = uuid.New().String()
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()

	query := `
		INSERT INTO companies (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		company.ID, company.Name, company.Description, company.CreatedAt, company.UpdatedAt)
	return err
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, companyID string) (*models.Company, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	company := &models.Company{}
	err := r.db.GetContext(ctx, company, query, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return company, nil
}

// ListForUser retrieves every company the user is a member of, newest first.
func (r *CompanyRepository) ListForUser(ctx context.Context, userID string) ([]*models.Company, error) {
	query := `
		SELECT c.id, c.name, c.description, c.created_at, c.updated_at
		FROM companies c
		JOIN user_roles ur ON ur.company_id = c.id
		WHERE ur.user_id = $1
		ORDER BY c.created_at DESC
	`

	companies := []*models.Company{}
	if err := r.db.SelectContext(ctx, &companies, query, userID); err != nil {
		return nil, err
	}

	return companies, nil
}

// Update updates company profile fields
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now()

	query := `
		UPDATE companies
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		company.ID, company.Name, company.Description, company.UpdatedAt)
	return err
}

// Delete removes a company. Dependent rows (memberships, projects, and their
// children) are removed by ON DELETE CASCADE in the schema.
func (r *CompanyRepository) Delete(ctx context.Context, companyID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, companyID)
	return err
}
