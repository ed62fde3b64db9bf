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

// TaskRepository handles Kanban task database operations
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task at the end of its status column
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	task.ID = uuid.New().String()
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()

	query := `
		INSERT INTO tasks (id, company_id, project_id, title, description, status, position, priority, assignee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6,
		        COALESCE((SELECT MAX(position) + 1 FROM tasks WHERE project_id = $3 AND status = $6), 0),
		        $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.CompanyID, task.ProjectID, task.Title, task.Description,
		task.Status, task.Priority, task.AssigneeID, task.CreatedAt, task.UpdatedAt)
	return err
}

// GetByID retrieves a task by ID within a company
func (r *TaskRepository) GetByID(ctx context.Context, id, companyID string) (*models.Task, error) {
	query := `
		SELECT id, company_id, project_id, title, description, status, position, priority, assignee_id, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND company_id = $2
	`

	task := &models.Task{}
	err := r.db.GetContext(ctx, task, query, id, companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// ListByProject retrieves all tasks for a project in board order
func (r *TaskRepository) ListByProject(ctx context.Context, projectID, companyID string) ([]*models.Task, error) {
	query := `
		SELECT id, company_id, project_id, title, description, status, position, priority, assignee_id, created_at, updated_at
		FROM tasks
		WHERE project_id = $1 AND company_id = $2
		ORDER BY status, position, created_at
	`

	tasks := []*models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, projectID, companyID); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task's mutable fields
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()

	query := `
		UPDATE tasks
		SET title = $3, description = $4, priority = $5, assignee_id = $6, updated_at = $7
		WHERE id = $1 AND company_id = $2
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.CompanyID, task.Title, task.Description,
		task.Priority, task.AssigneeID, task.UpdatedAt)
	return err
}

// Move updates a task's column and position (board drag-and-drop).
// Last write wins; concurrent moves of the same card resolve to whichever
// update lands last.
func (r *TaskRepository) Move(ctx context.Context, id, companyID, status string, position int) error {
	query := `
		UPDATE tasks
		SET status = $3, position = $4, updated_at = $5
		WHERE id = $1 AND company_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, id, companyID, status, position, time.Now())
	return err
}

// Delete deletes a task
func (r *TaskRepository) Delete(ctx context.Context, id, companyID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND company_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, companyID)
	return err
}
