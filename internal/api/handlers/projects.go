// projects.go implements project CRUD. Reads are gated by view_projects and
// writes by manage_projects in the router; every query is scoped to the
// caller's company.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// ProjectHandlers handles project endpoints
type ProjectHandlers struct {
	projectRepo *repositories.ProjectRepository
}

// NewProjectHandlers creates a new project handlers instance
func NewProjectHandlers(projectRepo *repositories.ProjectRepository) *ProjectHandlers {
	return &ProjectHandlers{projectRepo: projectRepo}
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status" binding:"required"`
	OwnerID     *string `json:"owner_id"`
}

// @Summary      Create project
// @Description  Creates a project in the current company. Requires the manage_projects permission.
// @Tags         Projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  CreateProjectRequest  true  "Project details"
// @Success      201  {object}  models.Project
// @Failure      400  {object}  map[string]interface{}  "Invalid request or status"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Router       /api/v1/projects [post]
// CreateProject creates a project
// POST /api/v1/projects
func (h *ProjectHandlers) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.ProjectStatusActive
	}
	if !models.ValidProjectStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown project status: " + status})
		return
	}

	userID := c.GetString("user_id")
	project := &models.Project{
		CompanyID:   c.GetString("company_id"),
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		OwnerID:     &userID,
	}
	if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

// @Summary      List projects
// @Description  Returns every project in the current company. Requires the view_projects permission.
// @Tags         Projects
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   models.Project
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Router       /api/v1/projects [get]
// ListProjects returns the company's projects
// GET /api/v1/projects
func (h *ProjectHandlers) ListProjects(c *gin.Context) {
	projects, err := h.projectRepo.ListByCompany(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

// @Summary      Get project
// @Description  Returns a single project. Requires the view_projects permission.
// @Tags         Projects
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Success      200  {object}  models.Project
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId} [get]
// GetProject returns a single project
// GET /api/v1/projects/:projectId
func (h *ProjectHandlers) GetProject(c *gin.Context) {
	project, err := h.projectRepo.GetByID(c.Request.Context(), c.Param("projectId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// @Summary      Update project
// @Description  Updates a project's profile and status. Requires the manage_projects permission.
// @Tags         Projects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string                true  "Project ID"
// @Param        request    body  UpdateProjectRequest  true  "Updated project"
// @Success      200  {object}  models.Project
// @Failure      400  {object}  map[string]interface{}  "Invalid request or status"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId} [put]
// UpdateProject updates a project
// PUT /api/v1/projects/:projectId
func (h *ProjectHandlers) UpdateProject(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidProjectStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown project status: " + req.Status})
		return
	}

	project, err := h.projectRepo.GetByID(c.Request.Context(), c.Param("projectId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	project.Name = req.Name
	project.Description = req.Description
	project.Status = req.Status
	if req.OwnerID != nil {
		project.OwnerID = req.OwnerID
	}
	if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// @Summary      Delete project
// @Description  Deletes a project and everything in it. Requires the manage_projects permission.
// @Tags         Projects
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Success      204  "Deleted"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId} [delete]
// DeleteProject deletes a project
// DELETE /api/v1/projects/:projectId
func (h *ProjectHandlers) DeleteProject(c *gin.Context) {
	companyID := c.GetString("company_id")

	project, err := h.projectRepo.GetByID(c.Request.Context(), c.Param("projectId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get project"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if err := h.projectRepo.Delete(c.Request.Context(), project.ID, companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	c.Status(http.StatusNoContent)
}
