package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
)

var taskCols = []string{"id", "company_id", "project_id", "title", "description", "status", "position", "priority", "assignee_id", "created_at", "updated_at"}

func newTaskRepo(t *testing.T) (*TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewTaskRepository(db), mock
}

func TestTaskCreate_AppendsToColumn(t *testing.T) {
	repo, mock := newTaskRepo(t)
	mock.ExpectExec("INSERT INTO tasks").
		WillReturnResult(sqlmock.NewResult(0, 1))

	task := &models.Task{
		CompanyID: "company-1",
		ProjectID: "project-1",
		Title:     "Fix login flow",
		Status:    models.TaskStatusTodo,
		Priority:  models.PriorityMedium,
	}
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestTaskGetByID_NotFound(t *testing.T) {
	repo, mock := newTaskRepo(t)
	mock.ExpectQuery("SELECT.*FROM tasks.*WHERE id").
		WithArgs("missing", "company-1").
		WillReturnRows(sqlmock.NewRows(taskCols))

	task, err := repo.GetByID(context.Background(), "missing", "company-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil {
		t.Errorf("expected nil task, got %v", task)
	}
}

func TestTaskListByProject_BoardOrder(t *testing.T) {
	repo, mock := newTaskRepo(t)
	rows := sqlmock.NewRows(taskCols).
		AddRow("task-1", "company-1", "project-1", "First", "", models.TaskStatusTodo, 0, models.PriorityHigh, nil, time.Now(), time.Now()).
		AddRow("task-2", "company-1", "project-1", "Second", "", models.TaskStatusTodo, 1, models.PriorityLow, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT.*FROM tasks.*ORDER BY status, position").
		WithArgs("project-1", "company-1").
		WillReturnRows(rows)

	tasks, err := repo.ListByProject(context.Background(), "project-1", "company-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Position != 0 || tasks[1].Position != 1 {
		t.Errorf("unexpected positions: %d, %d", tasks[0].Position, tasks[1].Position)
	}
}

func TestTaskMove(t *testing.T) {
	repo, mock := newTaskRepo(t)
	mock.ExpectExec("UPDATE tasks.*SET status").
		WithArgs("task-1", "company-1", models.TaskStatusInProgress, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Move(context.Background(), "task-1", "company-1", models.TaskStatusInProgress, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskDelete(t *testing.T) {
	repo, mock := newTaskRepo(t)
	mock.ExpectExec("DELETE FROM tasks").
		WithArgs("task-1", "company-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "task-1", "company-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
