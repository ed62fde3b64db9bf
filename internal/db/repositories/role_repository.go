// role_repository.go implements RoleRepository, covering both halves of the
// permission model's persistence: role definition overrides (the editable
// catalog entries) and per-company role assignments.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
)

// RoleRepository handles role definition overrides and role assignments
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// ============================================================================
// Role definition overrides
// ============================================================================

// ListRoleDefinitions returns all stored role definition overrides with their
// permission keys decoded from JSONB.
func (r *RoleRepository) ListRoleDefinitions(ctx context.Context) ([]*models.RoleDefinitionRecord, error) {
	query := `SELECT role, label, description, permissions, updated_at
			  FROM role_definitions ORDER BY role`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.RoleDefinitionRecord
	for rows.Next() {
		var rec models.RoleDefinitionRecord
		var permsJSON []byte
		if err := rows.Scan(&rec.Role, &rec.Label, &rec.Description, &permsJSON, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if len(permsJSON) > 0 {
			if err := json.Unmarshal(permsJSON, &rec.Permissions); err != nil {
				return nil, err
			}
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// UpsertRoleDefinition stores (or replaces) the override for one role.
func (r *RoleRepository) UpsertRoleDefinition(ctx context.Context, role, label, description string, permissions []string) error {
	permsJSON, err := json.Marshal(permissions)
	if err != nil {
		return err
	}

	query := `INSERT INTO role_definitions (role, label, description, permissions, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (role) DO UPDATE
			  SET label = EXCLUDED.label,
			      description = EXCLUDED.description,
			      permissions = EXCLUDED.permissions,
			      updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query, role, label, description, permsJSON, time.Now())
	return err
}

// ============================================================================
// Role assignments
// ============================================================================

// Assign creates a role assignment for a user within a company.
func (r *RoleRepository) Assign(ctx context.Context, assignment *models.UserRoleAssignment) error {
	assignment.ID = uuid.New().String()
	assignment.CreatedAt = time.Now()

	query := `
		INSERT INTO user_roles (id, user_id, company_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID, assignment.UserID, assignment.CompanyID, assignment.Role, assignment.CreatedAt)
	return err
}

// GetAssignment retrieves the role assignment for a user within a company.
func (r *RoleRepository) GetAssignment(ctx context.Context, userID, companyID string) (*models.UserRoleAssignment, error) {
	query := `
		SELECT id, user_id, company_id, role, created_at
		FROM user_roles
		WHERE user_id = $1 AND company_id = $2
	`

	assignment := &models.UserRoleAssignment{}
	err := r.db.GetContext(ctx, assignment, query, userID, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// ListCompanies returns every assignment a user holds, one per company.
func (r *RoleRepository) ListCompanies(ctx context.Context, userID string) ([]*models.UserRoleAssignment, error) {
	query := `
		SELECT id, user_id, company_id, role, created_at
		FROM user_roles
		WHERE user_id = $1
		ORDER BY created_at
	`

	assignments := []*models.UserRoleAssignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListMembers returns all members of a company with their account details.
func (r *RoleRepository) ListMembers(ctx context.Context, companyID string) ([]*models.Member, error) {
	query := `
		SELECT ur.user_id, u.email, u.name, ur.role, ur.created_at AS joined_at
		FROM user_roles ur
		JOIN users u ON ur.user_id = u.id
		WHERE ur.company_id = $1
		ORDER BY ur.created_at
	`

	members := []*models.Member{}
	if err := r.db.SelectContext(ctx, &members, query, companyID); err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateRole changes a member's role within a company.
func (r *RoleRepository) UpdateRole(ctx context.Context, userID, companyID, role string) error {
	query := `UPDATE user_roles SET role = $3 WHERE user_id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, companyID, role)
	return err
}

// Remove deletes a member's assignment from a company.
func (r *RoleRepository) Remove(ctx context.Context, userID, companyID string) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, companyID)
	return err
}

// CountByRole returns how many members of a company hold the given role.
// Used to protect the last owner from demotion or removal.
func (r *RoleRepository) CountByRole(ctx context.Context, companyID, role string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_roles WHERE company_id = $1 AND role = $2`
	err := r.db.GetContext(ctx, &count, query, companyID, role)
	return count, err
}
