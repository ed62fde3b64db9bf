// members.go implements membership handlers: listing company members, changing
// a member's role, and removing members. A company can never lose its last
// owner, and the owner role can only be granted by an owner. Role changes
// invalidate the member's cached role so they take effect on their next
// request.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/cache"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// MemberHandlers handles company membership endpoints
type MemberHandlers struct {
	roleRepo  *repositories.RoleRepository
	roleCache *cache.RoleCache
}

// NewMemberHandlers creates a new member handlers instance
func NewMemberHandlers(roleRepo *repositories.RoleRepository, roleCache *cache.RoleCache) *MemberHandlers {
	return &MemberHandlers{roleRepo: roleRepo, roleCache: roleCache}
}

// UpdateMemberRoleRequest represents the request to change a member's role
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// @Summary      List members
// @Description  Returns every member of the current company with their role.
// @Tags         Members
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   models.Member
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/members [get]
// ListMembers returns the current company's members
// GET /api/v1/members
func (h *MemberHandlers) ListMembers(c *gin.Context) {
	members, err := h.roleRepo.ListMembers(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		return
	}

	c.JSON(http.StatusOK, members)
}

// @Summary      Change member role
// @Description  Assigns a member a different role. The owner role can only be granted by an owner, and the last owner cannot be demoted. Requires the manage_users permission.
// @Tags         Members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        userId   path  string                   true  "Member user ID"
// @Param        request  body  UpdateMemberRoleRequest  true  "New role"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}  "Unknown role"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Member not found"
// @Failure      409  {object}  map[string]interface{}  "Would leave the company without an owner"
// @Router       /api/v1/members/{userId} [put]
// UpdateMemberRole changes a member's role
// PUT /api/v1/members/:userId
func (h *MemberHandlers) UpdateMemberRole(c *gin.Context) {
	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !auth.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role: " + req.Role})
		return
	}

	companyID := c.GetString("company_id")
	targetID := c.Param("userId")

	assignment, err := h.roleRepo.GetAssignment(c.Request.Context(), targetID, companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve membership"})
		return
	}
	if assignment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	if req.Role == string(auth.RoleOwner) && c.GetString("role") != string(auth.RoleOwner) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only an owner can grant the owner role"})
		return
	}

	if assignment.Role == string(auth.RoleOwner) && req.Role != string(auth.RoleOwner) {
		owners, err := h.roleRepo.CountByRole(c.Request.Context(), companyID, string(auth.RoleOwner))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count owners"})
			return
		}
		if owners <= 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot demote the last owner"})
			return
		}
	}

	if err := h.roleRepo.UpdateRole(c.Request.Context(), targetID, companyID, req.Role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	h.roleCache.InvalidateRole(c.Request.Context(), targetID, companyID)

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "company_id": companyID, "role": req.Role})
}

// @Summary      Remove member
// @Description  Removes a member from the current company. The last owner cannot be removed. Requires the manage_users permission.
// @Tags         Members
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "Member user ID"
// @Success      204  "Removed"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Missing permission"
// @Failure      404  {object}  map[string]interface{}  "Member not found"
// @Failure      409  {object}  map[string]interface{}  "Would leave the company without an owner"
// @Router       /api/v1/members/{userId} [delete]
// RemoveMember removes a member from the company
// DELETE /api/v1/members/:userId
func (h *MemberHandlers) RemoveMember(c *gin.Context) {
	companyID := c.GetString("company_id")
	targetID := c.Param("userId")

	assignment, err := h.roleRepo.GetAssignment(c.Request.Context(), targetID, companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve membership"})
		return
	}
	if assignment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}

	if assignment.Role == string(auth.RoleOwner) {
		owners, err := h.roleRepo.CountByRole(c.Request.Context(), companyID, string(auth.RoleOwner))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count owners"})
			return
		}
		if owners <= 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot remove the last owner"})
			return
		}
	}

	if err := h.roleRepo.Remove(c.Request.Context(), targetID, companyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}
	h.roleCache.InvalidateRole(c.Request.Context(), targetID, companyID)

	c.Status(http.StatusNoContent)
}
