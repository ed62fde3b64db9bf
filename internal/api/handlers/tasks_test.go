package handlers

import (
	"net/http"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

var taskCols = []string{
	"id", "company_id", "project_id", "title", "description",
	"status", "position", "priority", "assignee_id", "created_at", "updated_at",
}

func newTasksRouter(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()

	db, mock := newHandlerDB(t)
	h := NewTaskHandlers(repositories.NewTaskRepository(db), repositories.NewProjectRepository(db))

	r := gin.New()
	session := sessionContext("user-1", "company-1", "developer")
	r.POST("/projects/:projectId/tasks/:taskId/move", session, h.MoveTask)
	return mock, r
}

func sampleTaskRow(projectID, status string, position int) *sqlmock.Rows {
	return sqlmock.NewRows(taskCols).AddRow(
		"task-1", "company-1", projectID, "Fix login redirect", "",
		status, position, "medium", nil, time.Now(), time.Now(),
	)
}

func TestMoveTask_UnknownStatus(t *testing.T) {
	_, r := newTasksRouter(t)

	w := doJSON(t, r, http.MethodPost, "/projects/proj-1/tasks/task-1/move", MoveTaskRequest{
		Status: "parked", Position: 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMoveTask_WrongProject(t *testing.T) {
	mock, r := newTasksRouter(t)

	// Task exists in the company but belongs to another project's board.
	mock.ExpectQuery(`SELECT.*FROM tasks.*WHERE id`).
		WithArgs("task-1", "company-1").
		WillReturnRows(sampleTaskRow("proj-other", "todo", 0))

	w := doJSON(t, r, http.MethodPost, "/projects/proj-1/tasks/task-1/move", MoveTaskRequest{
		Status: "in_progress", Position: 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMoveTask_Success(t *testing.T) {
	mock, r := newTasksRouter(t)

	mock.ExpectQuery(`SELECT.*FROM tasks.*WHERE id`).
		WithArgs("task-1", "company-1").
		WillReturnRows(sampleTaskRow("proj-1", "todo", 0))
	mock.ExpectExec(`UPDATE tasks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/projects/proj-1/tasks/task-1/move", MoveTaskRequest{
		Status: "in_progress", Position: 2,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "in_progress", resp["status"])
	assert.EqualValues(t, 2, resp["position"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
