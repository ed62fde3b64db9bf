// auth.go implements account handlers: registration, login, the current-user
// endpoint, and workspace switching. Session tokens are JWTs; the company and
// role embedded in a token are a snapshot, and the RBAC middleware re-resolves
// the role from the database on every request.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// AuthHandlers handles account and session endpoints
type AuthHandlers struct {
	userRepo *repositories.UserRepository
	roleRepo *repositories.RoleRepository
	cfg      *config.Config
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(userRepo *repositories.UserRepository, roleRepo *repositories.RoleRepository, cfg *config.Config) *AuthHandlers {
	return &AuthHandlers{userRepo: userRepo, roleRepo: roleRepo, cfg: cfg}
}

// RegisterRequest represents the request to create an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the credentials for a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SwitchCompanyRequest selects which workspace subsequent tokens are scoped to
type SwitchCompanyRequest struct {
	CompanyID string `json:"company_id" binding:"required"`
}

// @Summary      Register a new account
// @Description  Creates a user account and returns a session token. The account starts with no company; create one or accept an invitation next.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body  RegisterRequest  true  "Account details"
// @Success      201  {object}  map[string]interface{}  "Token and user"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      403  {object}  map[string]interface{}  "Public signup disabled"
// @Failure      409  {object}  map[string]interface{}  "Email already registered"
// @Router       /api/v1/auth/register [post]
// Register creates a new user account
// POST /api/v1/auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	if !h.cfg.Auth.AllowPublicSignup {
		c.JSON(http.StatusForbidden, gin.H{"error": "Public signup is disabled"})
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.userRepo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing account"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user := &models.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
	}
	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, "", "", h.cfg.Auth.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// @Summary      Log in
// @Description  Verifies credentials and returns a session token scoped to the user's current company, if any.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body  LoginRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}  "Token, user, and role"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Invalid credentials"
// @Router       /api/v1/auth/login [post]
// Login verifies credentials and issues a session token
// POST /api/v1/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.userRepo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	companyID := ""
	role := ""
	if user.CurrentCompanyID != nil {
		companyID = *user.CurrentCompanyID
		assignment, err := h.roleRepo.GetAssignment(c.Request.Context(), user.ID, companyID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve role"})
			return
		}
		if assignment != nil {
			role = assignment.Role
		}
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, companyID, role, h.cfg.Auth.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "role": role, "company_id": companyID})
}

// @Summary      Current user
// @Description  Returns the authenticated user, their current company context, and every company they belong to.
// @Tags         Auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/auth/me [get]
// Me returns the authenticated user and their memberships
// GET /api/v1/auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	userVal, ok := c.Get("user")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	user := userVal.(*models.User)

	memberships, err := h.roleRepo.ListCompanies(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list memberships"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"company_id":  c.GetString("company_id"),
		"role":        c.GetString("role"),
		"memberships": memberships,
	})
}

// @Summary      Switch company
// @Description  Changes the user's current company and returns a token scoped to it. The user must already be a member.
// @Tags         Auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  SwitchCompanyRequest  true  "Target company"
// @Success      200  {object}  map[string]interface{}  "Token, role, and company"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Not a member of the company"
// @Router       /api/v1/auth/switch-company [post]
// SwitchCompany changes the current workspace and reissues the session token
// POST /api/v1/auth/switch-company
func (h *AuthHandlers) SwitchCompany(c *gin.Context) {
	var req SwitchCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")

	assignment, err := h.roleRepo.GetAssignment(c.Request.Context(), userID, req.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve membership"})
		return
	}
	if assignment == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this company"})
		return
	}

	if err := h.userRepo.SetCurrentCompany(c.Request.Context(), userID, req.CompanyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to switch company"})
		return
	}

	token, err := auth.GenerateJWT(userID, c.GetString("email"), req.CompanyID, assignment.Role, h.cfg.Auth.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "company_id": req.CompanyID, "role": assignment.Role})
}
