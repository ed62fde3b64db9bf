// roles.go implements the role-catalog handlers: listing role definitions,
// listing the permission catalog, and the save path of the role editor. Edits
// go through a draft so a failed validation never leaves the live catalog in a
// half-updated state, and the saved definition is persisted so it survives
// restarts. The owner role is immutable end to end.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// RoleHandlers handles role definition and permission catalog endpoints
type RoleHandlers struct {
	catalog  *auth.Catalog
	roleRepo *repositories.RoleRepository
}

// NewRoleHandlers creates a new role handlers instance
func NewRoleHandlers(catalog *auth.Catalog, roleRepo *repositories.RoleRepository) *RoleHandlers {
	return &RoleHandlers{catalog: catalog, roleRepo: roleRepo}
}

// UpdateRoleRequest is the full desired state of one role definition.
// Permissions replaces the role's granted set; keys absent from the list are
// revoked.
type UpdateRoleRequest struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// @Summary      List roles
// @Description  Returns every role definition in display order, owner first.
// @Tags         Roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   auth.RoleDefinition
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/roles [get]
// ListRoles returns all role definitions
// GET /api/v1/roles
func (h *RoleHandlers) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Roles())
}

// @Summary      List permissions
// @Description  Returns the full permission catalog in display order.
// @Tags         Roles
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   auth.Permission
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Router       /api/v1/permissions [get]
// ListPermissions returns the permission catalog
// GET /api/v1/permissions
func (h *RoleHandlers) ListPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, auth.AllPermissions())
}

// @Summary      Update role definition
// @Description  Replaces a role's label, description, and granted permissions. The owner role cannot be edited. Requires the manage_roles permission.
// @Tags         Roles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        role     path  string             true  "Role name"
// @Param        request  body  UpdateRoleRequest  true  "Desired definition"
// @Success      200  {object}  auth.RoleDefinition
// @Failure      400  {object}  map[string]interface{}  "Empty label or unknown permission key"
// @Failure      401  {object}  map[string]interface{}  "Unauthorized"
// @Failure      403  {object}  map[string]interface{}  "Owner role is immutable or missing permission"
// @Failure      404  {object}  map[string]interface{}  "Unknown role"
// @Router       /api/v1/roles/{role} [put]
// UpdateRole edits a role definition through a draft and persists the result
// PUT /api/v1/roles/:role
func (h *RoleHandlers) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, key := range req.Permissions {
		if !auth.ValidPermissionKey(auth.PermissionKey(key)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown permission key: " + key})
			return
		}
	}

	role := auth.Role(c.Param("role"))

	draft, err := h.catalog.BeginEdit(role)
	switch {
	case errors.Is(err, auth.ErrOwnerImmutable):
		c.JSON(http.StatusForbidden, gin.H{"error": "The owner role cannot be edited"})
		return
	case errors.Is(err, auth.ErrUnknownRole):
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown role"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open role for editing"})
		return
	}

	draft.Label = req.Label
	draft.Description = req.Description

	requested := make(map[auth.PermissionKey]bool, len(req.Permissions))
	for _, key := range req.Permissions {
		requested[auth.PermissionKey(key)] = true
	}
	for _, p := range auth.AllPermissions() {
		if requested[p.Key] != draft.Has(p.Key) {
			draft.Toggle(p.Key)
		}
	}

	if draft.Label == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role label must not be empty"})
		return
	}

	keys := draft.Permissions()
	perms := make([]string, len(keys))
	for i, k := range keys {
		perms[i] = string(k)
	}
	// Persist before replacing the live catalog, so a failed write never
	// leaves the process serving grants that would not survive a restart.
	if err := h.roleRepo.UpsertRoleDefinition(c.Request.Context(), string(draft.Role), draft.Label, draft.Description, perms); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist role definition"})
		return
	}

	def, err := h.catalog.Save(draft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save role"})
		return
	}

	c.JSON(http.StatusOK, def)
}
