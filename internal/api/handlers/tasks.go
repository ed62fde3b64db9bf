// tasks.go implements the Kanban task handlers, including the move operation
// that drag-and-drop maps to: a status (column) plus a position within it.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// TaskHandlers handles Kanban task endpoints
type TaskHandlers struct {
	taskRepo    *repositories.TaskRepository
	projectRepo *repositories.ProjectRepository
}

// NewTaskHandlers creates a new task handlers instance
func NewTaskHandlers(taskRepo *repositories.TaskRepository, projectRepo *repositories.ProjectRepository) *TaskHandlers {
	return &TaskHandlers{taskRepo: taskRepo, projectRepo: projectRepo}
}

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Position    int     `json:"position"`
	AssigneeID  *string `json:"assignee_id"`
}

// UpdateTaskRequest represents the request to update a task
type UpdateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status" binding:"required"`
	Priority    string  `json:"priority" binding:"required"`
	Position    int     `json:"position"`
	AssigneeID  *string `json:"assignee_id"`
}

// MoveTaskRequest represents the request to move a task on the board
type MoveTaskRequest struct {
	Status   string `json:"status" binding:"required"`
	Position int    `json:"position"`
}

// getProject loads the project from the route, scoped to the caller's company.
// Writes the 404/500 response itself and returns nil when the caller should stop.
func (h *TaskHandlers) getProject(c *gin.Context) *models.Project {
	project, err := h.projectRepo.GetByID(c.Request.Context(), c.Param("projectId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get project"})
		return nil
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil
	}
	return project
}

// @Summary      Create task
// @Description  Creates a task on the project's board. Requires the manage_tasks permission.
// @Tags         Tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string             true  "Project ID"
// @Param        request    body  CreateTaskRequest  true  "Task details"
// @Success      201  {object}  models.Task
// @Failure      400  {object}  map[string]interface{}  "Invalid request, status, or priority"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/tasks [post]
// CreateTask creates a task on the project board
// POST /api/v1/projects/:projectId/tasks
func (h *TaskHandlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown task status: " + status})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority: " + priority})
		return
	}

	project := h.getProject(c)
	if project == nil {
		return
	}

	task := &models.Task{
		CompanyID:   project.CompanyID,
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		Position:    req.Position,
		AssigneeID:  req.AssigneeID,
	}
	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

// @Summary      List tasks
// @Description  Returns the project's tasks ordered by column and position. Requires the view_tasks permission.
// @Tags         Tasks
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Success      200  {array}   models.Task
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/tasks [get]
// ListTasks returns the project's tasks in board order
// GET /api/v1/projects/:projectId/tasks
func (h *TaskHandlers) ListTasks(c *gin.Context) {
	project := h.getProject(c)
	if project == nil {
		return
	}

	tasks, err := h.taskRepo.ListByProject(c.Request.Context(), project.ID, project.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// @Summary      Get task
// @Description  Returns a single task. Requires the view_tasks permission.
// @Tags         Tasks
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Param        taskId     path  string  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Task not found"
// @Router       /api/v1/projects/{projectId}/tasks/{taskId} [get]
// GetTask returns a single task
// GET /api/v1/projects/:projectId/tasks/:taskId
func (h *TaskHandlers) GetTask(c *gin.Context) {
	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("taskId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task"})
		return
	}
	if task == nil || task.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// @Summary      Update task
// @Description  Updates a task's fields. Requires the manage_tasks permission.
// @Tags         Tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string             true  "Project ID"
// @Param        taskId     path  string             true  "Task ID"
// @Param        request    body  UpdateTaskRequest  true  "Updated task"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  map[string]interface{}  "Invalid request, status, or priority"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Task not found"
// @Router       /api/v1/projects/{projectId}/tasks/{taskId} [put]
// UpdateTask updates a task
// PUT /api/v1/projects/:projectId/tasks/:taskId
func (h *TaskHandlers) UpdateTask(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown task status: " + req.Status})
		return
	}
	if !models.ValidPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority: " + req.Priority})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("taskId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task"})
		return
	}
	if task == nil || task.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Status = req.Status
	task.Priority = req.Priority
	task.Position = req.Position
	task.AssigneeID = req.AssigneeID
	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// @Summary      Move task
// @Description  Moves a task to a column and position on the board. Requires the manage_tasks permission.
// @Tags         Tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string           true  "Project ID"
// @Param        taskId     path  string           true  "Task ID"
// @Param        request    body  MoveTaskRequest  true  "Target column and position"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  map[string]interface{}  "Invalid request or status"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Task not found"
// @Router       /api/v1/projects/{projectId}/tasks/{taskId}/move [post]
// MoveTask moves a task to a new column and position
// POST /api/v1/projects/:projectId/tasks/:taskId/move
func (h *TaskHandlers) MoveTask(c *gin.Context) {
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown task status: " + req.Status})
		return
	}

	companyID := c.GetString("company_id")

	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("taskId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task"})
		return
	}
	if task == nil || task.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if err := h.taskRepo.Move(c.Request.Context(), task.ID, companyID, req.Status, req.Position); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move task"})
		return
	}

	task.Status = req.Status
	task.Position = req.Position
	c.JSON(http.StatusOK, task)
}

// @Summary      Delete task
// @Description  Deletes a task. Requires the manage_tasks permission.
// @Tags         Tasks
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Param        taskId     path  string  true  "Task ID"
// @Success      204  "Deleted"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Task not found"
// @Router       /api/v1/projects/{projectId}/tasks/{taskId} [delete]
// DeleteTask deletes a task
// DELETE /api/v1/projects/:projectId/tasks/:taskId
func (h *TaskHandlers) DeleteTask(c *gin.Context) {
	companyID := c.GetString("company_id")

	task, err := h.taskRepo.GetByID(c.Request.Context(), c.Param("taskId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get task"})
		return
	}
	if task == nil || task.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), task.ID, companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.Status(http.StatusNoContent)
}
