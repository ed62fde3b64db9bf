// invitations.go implements the invitation lifecycle: create (the raw token is
// returned exactly once and only its bcrypt hash is stored), list, revoke, and
// accept. Accepting verifies the token against the stored hash, enforces the
// expiry window even if the background sweep has not run yet, and creates the
// membership with the preassigned role.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/notifications"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/telemetry"
)

// InvitationHandlers handles invitation endpoints
type InvitationHandlers struct {
	invitationRepo *repositories.InvitationRepository
	roleRepo       *repositories.RoleRepository
	userRepo       *repositories.UserRepository
	companyRepo    *repositories.CompanyRepository
	catalog        *auth.Catalog
	mailer         *notifications.Mailer
	cfg            *config.Config
}

// NewInvitationHandlers creates a new invitation handlers instance
func NewInvitationHandlers(
	invitationRepo *repositories.InvitationRepository,
	roleRepo *repositories.RoleRepository,
	userRepo *repositories.UserRepository,
	companyRepo *repositories.CompanyRepository,
	catalog *auth.Catalog,
	mailer *notifications.Mailer,
	cfg *config.Config,
) *InvitationHandlers {
	return &InvitationHandlers{
		invitationRepo: invitationRepo,
		roleRepo:       roleRepo,
		userRepo:       userRepo,
		companyRepo:    companyRepo,
		catalog:        catalog,
		mailer:         mailer,
		cfg:            cfg,
	}
}

// CreateInvitationRequest represents the request to invite an email address
type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// AcceptInvitationRequest carries the raw invitation token from the email link
type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

// @Summary      Create invitation
// @Description  Invites an email address into the current company with a preassigned role. The response includes the raw invitation token exactly once; only its hash is stored. Requires the manage_users permission.
// @Tags         Invitations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        request  body  CreateInvitationRequest  true  "Invitee and role"
// @Success      201  {object}  map[string]interface{}  "Invitation and one-time token"
// @Failure      400  {object}  map[string]interface{}  "Invalid request or role"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      409  {object}  map[string]interface{}  "Already a member or already invited"
// @Router       /api/v1/invitations [post]
// CreateInvitation invites an email address into the company
// POST /api/v1/invitations
func (h *InvitationHandlers) CreateInvitation(c *gin.Context) {
	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !auth.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role: " + req.Role})
		return
	}
	if req.Role == string(auth.RoleOwner) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Members cannot be invited as owner"})
		return
	}

	companyID := c.GetString("company_id")
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// An existing member must not receive a second membership via invitation.
	if user, err := h.userRepo.GetByEmail(c.Request.Context(), email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing account"})
		return
	} else if user != nil {
		assignment, err := h.roleRepo.GetAssignment(c.Request.Context(), user.ID, companyID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
			return
		}
		if assignment != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "This email already belongs to a member of the company"})
			return
		}
	}

	pending, err := h.invitationRepo.HasPending(c.Request.Context(), companyID, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check pending invitations"})
		return
	}
	if pending {
		c.JSON(http.StatusConflict, gin.H{"error": "A pending invitation for this email already exists"})
		return
	}

	token, hash, err := auth.GenerateInviteToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate invitation token"})
		return
	}

	expiryDays := h.cfg.Invitations.ExpiryDays
	if expiryDays <= 0 {
		expiryDays = 7
	}

	inv := &models.Invitation{
		Email:     email,
		CompanyID: companyID,
		Role:      req.Role,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Duration(expiryDays) * 24 * time.Hour),
	}
	if err := h.invitationRepo.Create(c.Request.Context(), inv); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invitation"})
		return
	}
	telemetry.InvitationsCreatedTotal.Inc()

	h.sendInvitationEmail(c, inv, token)

	// The raw token is not recoverable after this response.
	c.JSON(http.StatusCreated, gin.H{"invitation": inv, "token": token})
}

// sendInvitationEmail delivers the invitation link best-effort. A delivery
// failure is logged, not surfaced: the inviter still holds the raw token.
func (h *InvitationHandlers) sendInvitationEmail(c *gin.Context, inv *models.Invitation, token string) {
	if !h.mailer.Enabled() {
		return
	}

	companyName := "your team"
	if company, err := h.companyRepo.GetByID(c.Request.Context(), inv.CompanyID); err == nil && company != nil {
		companyName = company.Name
	}

	roleLabel := inv.Role
	if def := h.catalog.RoleDefinition(auth.Role(inv.Role)); def != nil {
		roleLabel = def.Label
	}

	acceptURL := fmt.Sprintf("%s/invitations/%s/accept?token=%s",
		h.cfg.Server.GetPublicURL(), inv.ID, url.QueryEscape(token))

	if err := h.mailer.SendInvitation(inv.Email, companyName, roleLabel, acceptURL, inv.ExpiresAt); err != nil {
		slog.Warn("Failed to send invitation email",
			"invitation_id", inv.ID,
			"error", err)
	}
}

// @Summary      List invitations
// @Description  Returns every invitation for the current company, newest first. Requires the manage_users permission.
// @Tags         Invitations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   models.Invitation
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Router       /api/v1/invitations [get]
// ListInvitations returns the company's invitations
// GET /api/v1/invitations
func (h *InvitationHandlers) ListInvitations(c *gin.Context) {
	invitations, err := h.invitationRepo.ListByCompany(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invitations"})
		return
	}

	c.JSON(http.StatusOK, invitations)
}

// @Summary      Revoke invitation
// @Description  Deletes an invitation. A revoked token can no longer be accepted. Requires the manage_users permission.
// @Tags         Invitations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Invitation ID"
// @Success      204  "Revoked"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Invitation not found"
// @Router       /api/v1/invitations/{id} [delete]
// DeleteInvitation revokes an invitation
// DELETE /api/v1/invitations/:id
func (h *InvitationHandlers) DeleteInvitation(c *gin.Context) {
	companyID := c.GetString("company_id")

	inv, err := h.invitationRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get invitation"})
		return
	}
	if inv == nil || inv.CompanyID != companyID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}

	if err := h.invitationRepo.Delete(c.Request.Context(), inv.ID, companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete invitation"})
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary      Accept invitation
// @Description  Joins the inviting company. The caller must be signed in with the invited email address and present the raw token from the invitation link. Expired or non-pending invitations are rejected.
// @Tags         Invitations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Invitation ID"
// @Param        request  body  AcceptInvitationRequest  true  "Raw invitation token"
// @Success      200  {object}  map[string]interface{}  "Membership, role, and token"
// @Failure      400  {object}  map[string]interface{}  "Invalid request"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Wrong token or wrong account"
// @Failure      404  {object}  map[string]interface{}  "Invitation not found"
// @Failure      409  {object}  map[string]interface{}  "Invitation expired, already used, or already a member"
// @Router       /api/v1/invitations/{id}/accept [post]
// AcceptInvitation joins the inviting company using the raw token
// POST /api/v1/invitations/:id/accept
func (h *InvitationHandlers) AcceptInvitation(c *gin.Context) {
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.invitationRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get invitation"})
		return
	}
	if inv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}

	if inv.Status != models.InvitationStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation is no longer pending"})
		return
	}
	// Enforced here as well, so an overdue token is useless between sweeps.
	if time.Now().After(inv.ExpiresAt) {
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation has expired"})
		return
	}

	if !auth.ValidateInviteToken(req.Token, inv.TokenHash) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid invitation token"})
		return
	}

	userVal, ok := c.Get("user")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	user := userVal.(*models.User)

	if !strings.EqualFold(user.Email, inv.Email) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This invitation was issued to a different email address"})
		return
	}

	existing, err := h.roleRepo.GetAssignment(c.Request.Context(), user.ID, inv.CompanyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You are already a member of this company"})
		return
	}

	assignment := &models.UserRoleAssignment{
		UserID:    user.ID,
		CompanyID: inv.CompanyID,
		Role:      inv.Role,
	}
	if err := h.roleRepo.Assign(c.Request.Context(), assignment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create membership"})
		return
	}

	if err := h.invitationRepo.MarkAccepted(c.Request.Context(), inv.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark invitation accepted"})
		return
	}
	telemetry.InvitationsAcceptedTotal.Inc()

	// First membership becomes the current workspace automatically.
	if user.CurrentCompanyID == nil {
		if err := h.userRepo.SetCurrentCompany(c.Request.Context(), user.ID, inv.CompanyID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set current company"})
			return
		}
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, inv.CompanyID, inv.Role, h.cfg.Auth.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue session token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"company_id": inv.CompanyID, "role": inv.Role, "token": token})
}
