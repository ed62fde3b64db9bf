package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
)

// StatsRepository aggregates per-company counts for the dashboard
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CompanyStats computes the top-level dashboard counters for a company
func (r *StatsRepository) CompanyStats(ctx context.Context, companyID string) (*models.CompanyStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE company_id = $1) AS projects,
			(SELECT COUNT(*) FROM user_roles WHERE company_id = $1) AS members,
			(SELECT COUNT(*) FROM tasks WHERE company_id = $1 AND status <> 'done') AS open_tasks,
			(SELECT COUNT(*) FROM requirements WHERE company_id = $1) AS requirements,
			(SELECT COUNT(*) FROM test_cases WHERE company_id = $1) AS test_cases,
			(SELECT COUNT(*) FROM test_executions WHERE company_id = $1) AS executions_run,
			(SELECT COUNT(*) FROM test_executions WHERE company_id = $1 AND result = 'pass') AS executions_pass,
			(SELECT COUNT(*) FROM defects WHERE company_id = $1 AND status NOT IN ('resolved', 'closed')) AS open_defects
	`

	stats := &models.CompanyStats{}
	if err := r.db.GetContext(ctx, stats, query, companyID); err != nil {
		return nil, err
	}
	return stats, nil
}

// DefectsBySeverity breaks open defects down by severity
func (r *StatsRepository) DefectsBySeverity(ctx context.Context, companyID string) ([]*models.DefectSeverityCount, error) {
	query := `
		SELECT severity, COUNT(*) AS count
		FROM defects
		WHERE company_id = $1 AND status NOT IN ('resolved', 'closed')
		GROUP BY severity
		ORDER BY severity
	`

	counts := []*models.DefectSeverityCount{}
	if err := r.db.SelectContext(ctx, &counts, query, companyID); err != nil {
		return nil, err
	}
	return counts, nil
}

// TasksByStatus breaks a project's tasks down by Kanban column
func (r *StatsRepository) TasksByStatus(ctx context.Context, projectID, companyID string) ([]*models.TaskStatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM tasks
		WHERE project_id = $1 AND company_id = $2
		GROUP BY status
		ORDER BY status
	`

	counts := []*models.TaskStatusCount{}
	if err := r.db.SelectContext(ctx, &counts, query, projectID, companyID); err != nil {
		return nil, err
	}
	return counts, nil
}
