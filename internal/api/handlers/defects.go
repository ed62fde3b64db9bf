// defects.go implements defect CRUD under a project. A defect may link back to
// the test case whose execution surfaced it.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// DefectHandlers handles defect endpoints
type DefectHandlers struct {
	defectRepo   *repositories.DefectRepository
	testCaseRepo *repositories.TestCaseRepository
	projectRepo  *repositories.ProjectRepository
}

// NewDefectHandlers creates a new defect handlers instance
func NewDefectHandlers(
	defectRepo *repositories.DefectRepository,
	testCaseRepo *repositories.TestCaseRepository,
	projectRepo *repositories.ProjectRepository,
) *DefectHandlers {
	return &DefectHandlers{defectRepo: defectRepo, testCaseRepo: testCaseRepo, projectRepo: projectRepo}
}

// CreateDefectRequest represents the request to report a defect
type CreateDefectRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Priority    string  `json:"priority"`
	TestCaseID  *string `json:"test_case_id"`
	AssigneeID  *string `json:"assignee_id"`
}

// UpdateDefectRequest represents the request to update a defect
type UpdateDefectRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Severity    string  `json:"severity" binding:"required"`
	Priority    string  `json:"priority" binding:"required"`
	Status      string  `json:"status" binding:"required"`
	AssigneeID  *string `json:"assignee_id"`
}

func (h *DefectHandlers) getProject(c *gin.Context) *models.Project {
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

// @Summary      Report defect
// @Description  Reports a defect in the project, optionally linked to the test case that surfaced it. Requires the manage_defects permission.
// @Tags         Defects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string               true  "Project ID"
// @Param        request    body  CreateDefectRequest  true  "Defect details"
// @Success      201  {object}  models.Defect
// @Failure      400  {object}  map[string]interface{}  "Invalid request, severity, priority, or test case link"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/defects [post]
// CreateDefect reports a defect
// POST /api/v1/projects/:projectId/defects
func (h *DefectHandlers) CreateDefect(c *gin.Context) {
	var req CreateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	if !models.ValidSeverity(severity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown severity: " + severity})
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

	if req.TestCaseID != nil {
		testCase, err := h.testCaseRepo.GetByID(c.Request.Context(), *req.TestCaseID, project.CompanyID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check linked test case"})
			return
		}
		if testCase == nil || testCase.ProjectID != project.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Linked test case not found in this project"})
			return
		}
	}

	userID := c.GetString("user_id")
	defect := &models.Defect{
		CompanyID:   project.CompanyID,
		ProjectID:   project.ID,
		TestCaseID:  req.TestCaseID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    severity,
		Priority:    priority,
		Status:      models.DefectStatusOpen,
		ReportedBy:  &userID,
		AssigneeID:  req.AssigneeID,
	}
	if err := h.defectRepo.Create(c.Request.Context(), defect); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create defect"})
		return
	}

	c.JSON(http.StatusCreated, defect)
}

// @Summary      List defects
// @Description  Returns the project's defects. Requires the view_defects permission.
// @Tags         Defects
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Success      200  {array}   models.Defect
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/defects [get]
// ListDefects returns the project's defects
// GET /api/v1/projects/:projectId/defects
func (h *DefectHandlers) ListDefects(c *gin.Context) {
	project := h.getProject(c)
	if project == nil {
		return
	}

	defects, err := h.defectRepo.ListByProject(c.Request.Context(), project.ID, project.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list defects"})
		return
	}

	c.JSON(http.StatusOK, defects)
}

// @Summary      Get defect
// @Description  Returns a single defect. Requires the view_defects permission.
// @Tags         Defects
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Param        defectId   path  string  true  "Defect ID"
// @Success      200  {object}  models.Defect
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Defect not found"
// @Router       /api/v1/projects/{projectId}/defects/{defectId} [get]
// GetDefect returns a single defect
// GET /api/v1/projects/:projectId/defects/:defectId
func (h *DefectHandlers) GetDefect(c *gin.Context) {
	defect, err := h.defectRepo.GetByID(c.Request.Context(), c.Param("defectId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get defect"})
		return
	}
	if defect == nil || defect.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Defect not found"})
		return
	}

	c.JSON(http.StatusOK, defect)
}

// @Summary      Update defect
// @Description  Updates a defect's fields and lifecycle status. Requires the manage_defects permission.
// @Tags         Defects
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string               true  "Project ID"
// @Param        defectId   path  string               true  "Defect ID"
// @Param        request    body  UpdateDefectRequest  true  "Updated defect"
// @Success      200  {object}  models.Defect
// @Failure      400  {object}  map[string]interface{}  "Invalid request, severity, priority, or status"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Defect not found"
// @Router       /api/v1/projects/{projectId}/defects/{defectId} [put]
// UpdateDefect updates a defect
// PUT /api/v1/projects/:projectId/defects/:defectId
func (h *DefectHandlers) UpdateDefect(c *gin.Context) {
	var req UpdateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidSeverity(req.Severity) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown severity: " + req.Severity})
		return
	}
	if !models.ValidPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority: " + req.Priority})
		return
	}
	if !models.ValidDefectStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown defect status: " + req.Status})
		return
	}

	defect, err := h.defectRepo.GetByID(c.Request.Context(), c.Param("defectId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get defect"})
		return
	}
	if defect == nil || defect.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Defect not found"})
		return
	}

	defect.Title = req.Title
	defect.Description = req.Description
	defect.Severity = req.Severity
	defect.Priority = req.Priority
	defect.Status = req.Status
	defect.AssigneeID = req.AssigneeID
	if err := h.defectRepo.Update(c.Request.Context(), defect); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update defect"})
		return
	}

	c.JSON(http.StatusOK, defect)
}

// @Summary      Delete defect
// @Description  Deletes a defect. Requires the manage_defects permission.
// @Tags         Defects
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Param        defectId   path  string  true  "Defect ID"
// @Success      204  "Deleted"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Defect not found"
// @Router       /api/v1/projects/{projectId}/defects/{defectId} [delete]
// DeleteDefect deletes a defect
// DELETE /api/v1/projects/:projectId/defects/:defectId
func (h *DefectHandlers) DeleteDefect(c *gin.Context) {
	companyID := c.GetString("company_id")

	defect, err := h.defectRepo.GetByID(c.Request.Context(), c.Param("defectId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get defect"})
		return
	}
	if defect == nil || defect.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Defect not found"})
		return
	}

	if err := h.defectRepo.Delete(c.Request.Context(), defect.ID, companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete defect"})
		return
	}

	c.Status(http.StatusNoContent)
}
