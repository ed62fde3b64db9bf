// companies.go implements tenant handlers. Creating a company makes the caller
// its owner and switches their current workspace to it; deleting a company is
// reserved for the owner.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/cache"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// CompanyHandlers handles company (tenant) endpoints
type CompanyHandlers struct {
	companyRepo *repositories.CompanyRepository
	roleRepo    *repositories.RoleRepository
	userRepo    *repositories.UserRepository
	roleCache   *cache.RoleCache
	cfg         *config.Config
}

// NewCompanyHandlers creates a new company handlers instance
func NewCompanyHandlers(
	companyRepo *repositories.CompanyRepository,
	roleRepo *repositories.RoleRepository,
	userRepo *repositories.UserRepository,
	roleCache *cache.RoleCache,
	cfg *config.Config,
) *CompanyHandlers {
	return &CompanyHandlers{
		companyRepo: companyRepo,
		roleRepo:    roleRepo,
		userRepo:    userRepo,
		roleCache:   roleCache,
		cfg:         cfg,
	}
}

// CreateCompanyRequest represents the request to create a company
type CreateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateCompanyRequest represents the request to update company profile fields
type UpdateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// @Summary      Create company
// @Description  Creates a workspace, assigns the caller the owner role, and switches their current company to it. Returns a token scoped to the new workspace.
// @Tags         Companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  CreateCompanyRequest  true  "Company details"
// @Success      201  {object}  map[string]interface{}  "Company, role, and token"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/companies [post]
// CreateCompany creates a workspace with the caller as owner
// POST /api/v1/companies
func (h *CompanyHandlers) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")

	company := &models.Company{Name: req.Name, Description: req.Description}
	if err := h.companyRepo.Create(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	assignment := &models.UserRoleAssignment{
		UserID:    userID,
		CompanyID: company.ID,
		Role:      string(auth.RoleOwner),
	}
	if err := h.roleRepo.Assign(c.Request.Context(), assignment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign owner role"})
		return
	}

	if err := h.userRepo.SetCurrentCompany(c.Request.Context(), userID, company.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to switch to new company"})
		return
	}

	token, err := auth.GenerateJWT(userID, c.GetString("email"), company.ID, string(auth.RoleOwner), h.cfg.Auth.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"company": company, "role": string(auth.RoleOwner), "token": token})
}

// @Summary      List my companies
// @Description  Returns every company the caller belongs to.
// @Tags         Companies
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   models.Company
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/companies [get]
// ListCompanies returns the caller's companies
// GET /api/v1/companies
func (h *CompanyHandlers) ListCompanies(c *gin.Context) {
	companies, err := h.companyRepo.ListForUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list companies"})
		return
	}

	c.JSON(http.StatusOK, companies)
}

// @Summary      Get current company
// @Description  Returns the caller's current company.
// @Tags         Companies
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  models.Company
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      404  {object}  map[string]interface{}  "Company not found"
// @Router       /api/v1/companies/current [get]
// GetCurrentCompany returns the caller's current company
// GET /api/v1/companies/current
func (h *CompanyHandlers) GetCurrentCompany(c *gin.Context) {
	company, err := h.companyRepo.GetByID(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get company"})
		return
	}
	if company == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	c.JSON(http.StatusOK, company)
}

// @Summary      Update current company
// @Description  Updates the current company's profile. Requires the manage_company permission.
// @Tags         Companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  UpdateCompanyRequest  true  "Updated profile"
// @Success      200  {object}  models.Company
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Company not found"
// @Router       /api/v1/companies/current [put]
// UpdateCurrentCompany updates the current company's profile
// PUT /api/v1/companies/current
func (h *CompanyHandlers) UpdateCurrentCompany(c *gin.Context) {
	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.companyRepo.GetByID(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get company"})
		return
	}
	if company == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	company.Name = req.Name
	company.Description = req.Description
	if err := h.companyRepo.Update(c.Request.Context(), company); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update company"})
		return
	}

	c.JSON(http.StatusOK, company)
}

// @Summary      Delete current company
// @Description  Permanently deletes the current company and everything in it. Owner only.
// @Tags         Companies
// @Security     Bearer
// @Produce      json
// @Success      204  "Deleted"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Owner only"
// @Router       /api/v1/companies/current [delete]
// DeleteCurrentCompany deletes the current company
// DELETE /api/v1/companies/current
func (h *CompanyHandlers) DeleteCurrentCompany(c *gin.Context) {
	companyID := c.GetString("company_id")

	members, err := h.roleRepo.ListMembers(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}

	if err := h.companyRepo.Delete(c.Request.Context(), companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete company"})
		return
	}

	// Cached role entries for the deleted workspace must not survive it.
	for _, m := range members {
		h.roleCache.InvalidateRole(c.Request.Context(), m.UserID, companyID)
	}

	c.Status(http.StatusNoContent)
}
