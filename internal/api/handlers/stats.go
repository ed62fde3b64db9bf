// stats.go implements the reporting handlers behind the view_reports gate:
// a company-wide overview plus a per-project task breakdown for board
// summaries.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// StatsHandlers handles reporting endpoints
type StatsHandlers struct {
	statsRepo   *repositories.StatsRepository
	projectRepo *repositories.ProjectRepository
}

// NewStatsHandlers creates a new stats handlers instance
func NewStatsHandlers(statsRepo *repositories.StatsRepository, projectRepo *repositories.ProjectRepository) *StatsHandlers {
	return &StatsHandlers{statsRepo: statsRepo, projectRepo: projectRepo}
}

// @Summary      Company overview
// @Description  Returns company-wide counts (projects, members, open tasks, requirements, test cases, executions, open defects) and the open-defect breakdown by severity. Requires the view_reports permission.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Router       /api/v1/stats [get]
// GetOverview returns company-wide counts and the defect severity breakdown
// GET /api/v1/stats
func (h *StatsHandlers) GetOverview(c *gin.Context) {
	companyID := c.GetString("company_id")

	overview, err := h.statsRepo.CompanyStats(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute company stats"})
		return
	}

	defects, err := h.statsRepo.DefectsBySeverity(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute defect breakdown"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview, "defects_by_severity": defects})
}

// @Summary      Project task breakdown
// @Description  Returns the project's task counts per board column. Requires the view_reports permission.
// @Tags         Stats
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Success      200  {array}   models.TaskStatusCount
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/stats/tasks [get]
// GetProjectTaskStats returns task counts per board column
// GET /api/v1/projects/:projectId/stats/tasks
func (h *StatsHandlers) GetProjectTaskStats(c *gin.Context) {
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

	counts, err := h.statsRepo.TasksByStatus(c.Request.Context(), project.ID, companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute task breakdown"})
		return
	}

	c.JSON(http.StatusOK, counts)
}
