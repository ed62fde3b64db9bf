// requirements.go implements requirement CRUD under a project.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// RequirementHandlers handles requirement endpoints
type RequirementHandlers struct {
	requirementRepo *repositories.RequirementRepository
	projectRepo     *repositories.ProjectRepository
}

// NewRequirementHandlers creates a new requirement handlers instance
func NewRequirementHandlers(requirementRepo *repositories.RequirementRepository, projectRepo *repositories.ProjectRepository) *RequirementHandlers {
	return &RequirementHandlers{requirementRepo: requirementRepo, projectRepo: projectRepo}
}

// CreateRequirementRequest represents the request to create a requirement
type CreateRequirementRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// UpdateRequirementRequest represents the request to update a requirement
type UpdateRequirementRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required"`
	Status      string `json:"status" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
}

func (h *RequirementHandlers) getProject(c *gin.Context) *models.Project {
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

// validateRequirementFields checks type, status, and priority against the
// closed value sets, writing the 400 response on failure.
func validateRequirementFields(c *gin.Context, reqType, status, priority string) bool {
	if !models.ValidRequirementType(reqType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown requirement type: " + reqType})
		return false
	}
	if !models.ValidRequirementStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown requirement status: " + status})
		return false
	}
	if !models.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority: " + priority})
		return false
	}
	return true
}

// @Summary      Create requirement
// @Description  Creates a requirement in the project. Requires the manage_requirements permission.
// @Tags         Requirements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string                    true  "Project ID"
// @Param        request    body  CreateRequirementRequest  true  "Requirement details"
// @Success      201  {object}  models.Requirement
// @Failure      400  {object}  map[string]interface{}  "Invalid request, type, status, or priority"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/requirements [post]
// CreateRequirement creates a requirement
// POST /api/v1/projects/:projectId/requirements
func (h *RequirementHandlers) CreateRequirement(c *gin.Context) {
	var req CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Type == "" {
		req.Type = models.RequirementTypeFunctional
	}
	if req.Status == "" {
		req.Status = models.RequirementStatusDraft
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !validateRequirementFields(c, req.Type, req.Status, req.Priority) {
		return
	}

	project := h.getProject(c)
	if project == nil {
		return
	}

	requirement := &models.Requirement{
		CompanyID:   project.CompanyID,
		ProjectID:   project.ID,
		Title:       req.Title,
		Description: req.Description,
		ReqType:     req.Type,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if err := h.requirementRepo.Create(c.Request.Context(), requirement); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create requirement"})
		return
	}

	c.JSON(http.StatusCreated, requirement)
}

// @Summary      List requirements
// @Description  Returns the project's requirements. Requires the view_requirements permission.
// @Tags         Requirements
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Success      200  {array}   models.Requirement
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/requirements [get]
// ListRequirements returns the project's requirements
// GET /api/v1/projects/:projectId/requirements
func (h *RequirementHandlers) ListRequirements(c *gin.Context) {
	project := h.getProject(c)
	if project == nil {
		return
	}

	requirements, err := h.requirementRepo.ListByProject(c.Request.Context(), project.ID, project.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list requirements"})
		return
	}

	c.JSON(http.StatusOK, requirements)
}

// @Summary      Get requirement
// @Description  Returns a single requirement. Requires the view_requirements permission.
// @Tags         Requirements
// @Security     Bearer
// @Produce      json
// @Param        projectId      path  string  true  "Project ID"
// @Param        requirementId  path  string  true  "Requirement ID"
// @Success      200  {object}  models.Requirement
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Requirement not found"
// @Router       /api/v1/projects/{projectId}/requirements/{requirementId} [get]
// GetRequirement returns a single requirement
// GET /api/v1/projects/:projectId/requirements/:requirementId
func (h *RequirementHandlers) GetRequirement(c *gin.Context) {
	requirement, err := h.requirementRepo.GetByID(c.Request.Context(), c.Param("requirementId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get requirement"})
		return
	}
	if requirement == nil || requirement.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Requirement not found"})
		return
	}

	c.JSON(http.StatusOK, requirement)
}

// @Summary      Update requirement
// @Description  Updates a requirement. Requires the manage_requirements permission.
// @Tags         Requirements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId      path  string                    true  "Project ID"
// @Param        requirementId  path  string                    true  "Requirement ID"
// @Param        request        body  UpdateRequirementRequest  true  "Updated requirement"
// @Success      200  {object}  models.Requirement
// @Failure      400  {object}  map[string]interface{}  "Invalid request, type, status, or priority"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Requirement not found"
// @Router       /api/v1/projects/{projectId}/requirements/{requirementId} [put]
// UpdateRequirement updates a requirement
// PUT /api/v1/projects/:projectId/requirements/:requirementId
func (h *RequirementHandlers) UpdateRequirement(c *gin.Context) {
	var req UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !validateRequirementFields(c, req.Type, req.Status, req.Priority) {
		return
	}

	requirement, err := h.requirementRepo.GetByID(c.Request.Context(), c.Param("requirementId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get requirement"})
		return
	}
	if requirement == nil || requirement.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Requirement not found"})
		return
	}

	requirement.Title = req.Title
	requirement.Description = req.Description
	requirement.ReqType = req.Type
	requirement.Status = req.Status
	requirement.Priority = req.Priority
	if err := h.requirementRepo.Update(c.Request.Context(), requirement); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update requirement"})
		return
	}

	c.JSON(http.StatusOK, requirement)
}

// @Summary      Delete requirement
// @Description  Deletes a requirement. Requires the manage_requirements permission.
// @Tags         Requirements
// @Security     Bearer
// @Produce      json
// @Param        projectId      path  string  true  "Project ID"
// @Param        requirementId  path  string  true  "Requirement ID"
// @Success      204  "Deleted"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Requirement not found"
// @Router       /api/v1/projects/{projectId}/requirements/{requirementId} [delete]
// DeleteRequirement deletes a requirement
// DELETE /api/v1/projects/:projectId/requirements/:requirementId
func (h *RequirementHandlers) DeleteRequirement(c *gin.Context) {
	companyID := c.GetString("company_id")

	requirement, err := h.requirementRepo.GetByID(c.Request.Context(), c.Param("requirementId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get requirement"})
		return
	}
	if requirement == nil || requirement.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Requirement not found"})
		return
	}

	if err := h.requirementRepo.Delete(c.Request.Context(), requirement.ID, companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete requirement"})
		return
	}

	c.Status(http.StatusNoContent)
}
