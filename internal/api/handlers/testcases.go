// testcases.go implements test case CRUD and test execution recording. A test
// case may link to the requirement it verifies; an execution records who ran
// the test and one of the closed results (pass, fail, blocked). Executions are
// append-only history and have no update or delete surface.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/telemetry"
)

// TestCaseHandlers handles test case and execution endpoints
type TestCaseHandlers struct {
	testCaseRepo    *repositories.TestCaseRepository
	requirementRepo *repositories.RequirementRepository
	projectRepo     *repositories.ProjectRepository
}

// NewTestCaseHandlers creates a new test case handlers instance
func NewTestCaseHandlers(
	testCaseRepo *repositories.TestCaseRepository,
	requirementRepo *repositories.RequirementRepository,
	projectRepo *repositories.ProjectRepository,
) *TestCaseHandlers {
	return &TestCaseHandlers{
		testCaseRepo:    testCaseRepo,
		requirementRepo: requirementRepo,
		projectRepo:     projectRepo,
	}
}

// CreateTestCaseRequest represents the request to create a test case
type CreateTestCaseRequest struct {
	Title          string  `json:"title" binding:"required"`
	Steps          string  `json:"steps"`
	ExpectedResult string  `json:"expected_result"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	RequirementID  *string `json:"requirement_id"`
}

// UpdateTestCaseRequest represents the request to update a test case
type UpdateTestCaseRequest struct {
	Title          string  `json:"title" binding:"required"`
	Steps          string  `json:"steps"`
	ExpectedResult string  `json:"expected_result"`
	Status         string  `json:"status" binding:"required"`
	Priority       string  `json:"priority" binding:"required"`
	RequirementID  *string `json:"requirement_id"`
}

// RecordExecutionRequest represents the request to record a test run
type RecordExecutionRequest struct {
	Result string `json:"result" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *TestCaseHandlers) getProject(c *gin.Context) *models.Project {
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

// checkRequirementLink verifies that a linked requirement exists in the same
// project. Writes the 400 response and returns false on a dangling link.
func (h *TestCaseHandlers) checkRequirementLink(c *gin.Context, requirementID *string, projectID string) bool {
	if requirementID == nil {
		return true
	}
	requirement, err := h.requirementRepo.GetByID(c.Request.Context(), *requirementID, c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check linked requirement"})
		return false
	}
	if requirement == nil || requirement.ProjectID != projectID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Linked requirement not found in this project"})
		return false
	}
	return true
}

// @Summary      Create test case
// @Description  Creates a test case in the project, optionally linked to a requirement. Requires the manage_test_cases permission.
// @Tags         TestCases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId  path  string                 true  "Project ID"
// @Param        request    body  CreateTestCaseRequest  true  "Test case details"
// @Success      201  {object}  models.TestCase
// @Failure      400  {object}  map[string]interface{}  "Invalid request, status, priority, or requirement link"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/test-cases [post]
// CreateTestCase creates a test case
// POST /api/v1/projects/:projectId/test-cases
func (h *TestCaseHandlers) CreateTestCase(c *gin.Context) {
	var req CreateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.TestCaseStatusDraft
	}
	if !models.ValidTestCaseStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown test case status: " + status})
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
	if !h.checkRequirementLink(c, req.RequirementID, project.ID) {
		return
	}

	testCase := &models.TestCase{
		CompanyID:      project.CompanyID,
		ProjectID:      project.ID,
		RequirementID:  req.RequirementID,
		Title:          req.Title,
		Steps:          req.Steps,
		ExpectedResult: req.ExpectedResult,
		Status:         status,
		Priority:       priority,
	}
	if err := h.testCaseRepo.Create(c.Request.Context(), testCase); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create test case"})
		return
	}

	c.JSON(http.StatusCreated, testCase)
}

// @Summary      List test cases
// @Description  Returns the project's test cases. Requires the view_test_cases permission.
// @Tags         TestCases
// @Security     Bearer
// @Produce      json
// @Param        projectId  path  string  true  "Project ID"
// @Success      200  {array}   models.TestCase
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Project not found"
// @Router       /api/v1/projects/{projectId}/test-cases [get]
// ListTestCases returns the project's test cases
// GET /api/v1/projects/:projectId/test-cases
func (h *TestCaseHandlers) ListTestCases(c *gin.Context) {
	project := h.getProject(c)
	if project == nil {
		return
	}

	testCases, err := h.testCaseRepo.ListByProject(c.Request.Context(), project.ID, project.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list test cases"})
		return
	}

	c.JSON(http.StatusOK, testCases)
}

// @Summary      Get test case
// @Description  Returns a single test case. Requires the view_test_cases permission.
// @Tags         TestCases
// @Security     Bearer
// @Produce      json
// @Param        projectId   path  string  true  "Project ID"
// @Param        testCaseId  path  string  true  "Test case ID"
// @Success      200  {object}  models.TestCase
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Test case not found"
// @Router       /api/v1/projects/{projectId}/test-cases/{testCaseId} [get]
// GetTestCase returns a single test case
// GET /api/v1/projects/:projectId/test-cases/:testCaseId
func (h *TestCaseHandlers) GetTestCase(c *gin.Context) {
	testCase, err := h.testCaseRepo.GetByID(c.Request.Context(), c.Param("testCaseId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get test case"})
		return
	}
	if testCase == nil || testCase.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test case not found"})
		return
	}

	c.JSON(http.StatusOK, testCase)
}

// @Summary      Update test case
// @Description  Updates a test case. Requires the manage_test_cases permission.
// @Tags         TestCases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId   path  string                 true  "Project ID"
// @Param        testCaseId  path  string                 true  "Test case ID"
// @Param        request     body  UpdateTestCaseRequest  true  "Updated test case"
// @Success      200  {object}  models.TestCase
// @Failure      400  {object}  map[string]interface{}  "Invalid request, status, priority, or requirement link"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Test case not found"
// @Router       /api/v1/projects/{projectId}/test-cases/{testCaseId} [put]
// UpdateTestCase updates a test case
// PUT /api/v1/projects/:projectId/test-cases/:testCaseId
func (h *TestCaseHandlers) UpdateTestCase(c *gin.Context) {
	var req UpdateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidTestCaseStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown test case status: " + req.Status})
		return
	}
	if !models.ValidPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown priority: " + req.Priority})
		return
	}

	testCase, err := h.testCaseRepo.GetByID(c.Request.Context(), c.Param("testCaseId"), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get test case"})
		return
	}
	if testCase == nil || testCase.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test case not found"})
		return
	}

	if !h.checkRequirementLink(c, req.RequirementID, testCase.ProjectID) {
		return
	}

	testCase.Title = req.Title
	testCase.Steps = req.Steps
	testCase.ExpectedResult = req.ExpectedResult
	testCase.Status = req.Status
	testCase.Priority = req.Priority
	testCase.RequirementID = req.RequirementID
	if err := h.testCaseRepo.Update(c.Request.Context(), testCase); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update test case"})
		return
	}

	c.JSON(http.StatusOK, testCase)
}

// @Summary      Delete test case
// @Description  Deletes a test case and its execution history. Requires the manage_test_cases permission.
// @Tags         TestCases
// @Security     Bearer
// @Produce      json
// @Param        projectId   path  string  true  "Project ID"
// @Param        testCaseId  path  string  true  "Test case ID"
// @Success      204  "Deleted"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Test case not found"
// @Router       /api/v1/projects/{projectId}/test-cases/{testCaseId} [delete]
// DeleteTestCase deletes a test case
// DELETE /api/v1/projects/:projectId/test-cases/:testCaseId
func (h *TestCaseHandlers) DeleteTestCase(c *gin.Context) {
	companyID := c.GetString("company_id")

	testCase, err := h.testCaseRepo.GetByID(c.Request.Context(), c.Param("testCaseId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get test case"})
		return
	}
	if testCase == nil || testCase.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test case not found"})
		return
	}

	if err := h.testCaseRepo.Delete(c.Request.Context(), testCase.ID, companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete test case"})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary      Record test execution
// @Description  Records one run of a test case with a pass, fail, or blocked result. Requires the execute_tests permission.
// @Tags         TestCases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        projectId   path  string                  true  "Project ID"
// @Param        testCaseId  path  string                  true  "Test case ID"
// @Param        request     body  RecordExecutionRequest  true  "Execution result"
// @Success      201  {object}  models.TestExecution
// @Failure      400  {object}  map[string]interface{}  "Invalid request or result"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Test case not found"
// @Router       /api/v1/projects/{projectId}/test-cases/{testCaseId}/executions [post]
// RecordExecution records one test run
// POST /api/v1/projects/:projectId/test-cases/:testCaseId/executions
func (h *TestCaseHandlers) RecordExecution(c *gin.Context) {
	var req RecordExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidExecutionResult(req.Result) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown execution result: " + req.Result})
		return
	}

	companyID := c.GetString("company_id")

	testCase, err := h.testCaseRepo.GetByID(c.Request.Context(), c.Param("testCaseId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get test case"})
		return
	}
	if testCase == nil || testCase.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test case not found"})
		return
	}

	execution := &models.TestExecution{
		CompanyID:  companyID,
		TestCaseID: testCase.ID,
		ExecutedBy: c.GetString("user_id"),
		Result:     req.Result,
		Notes:      req.Notes,
	}
	if err := h.testCaseRepo.CreateExecution(c.Request.Context(), execution); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record execution"})
		return
	}
	telemetry.TestExecutionsRecordedTotal.WithLabelValues(req.Result).Inc()

	c.JSON(http.StatusCreated, execution)
}

// @Summary      List test executions
// @Description  Returns the test case's execution history, newest first. Requires the view_test_cases permission.
// @Tags         TestCases
// @Security     Bearer
// @Produce      json
// @Param        projectId   path  string  true  "Project ID"
// @Param        testCaseId  path  string  true  "Test case ID"
// @Success      200  {array}   models.TestExecution
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Test case not found"
// @Router       /api/v1/projects/{projectId}/test-cases/{testCaseId}/executions [get]
// ListExecutions returns the test case's execution history
// GET /api/v1/projects/:projectId/test-cases/:testCaseId/executions
func (h *TestCaseHandlers) ListExecutions(c *gin.Context) {
	companyID := c.GetString("company_id")

	testCase, err := h.testCaseRepo.GetByID(c.Request.Context(), c.Param("testCaseId"), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get test case"})
		return
	}
	if testCase == nil || testCase.ProjectID != c.Param("projectId") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test case not found"})
		return
	}

	executions, err := h.testCaseRepo.ListExecutions(c.Request.Context(), testCase.ID, companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list executions"})
		return
	}

	c.JSON(http.StatusOK, executions)
}
