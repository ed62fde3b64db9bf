package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

func newRolesRouter(t *testing.T) (*auth.Catalog, sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()

	db, mock := newHandlerDB(t)
	catalog := auth.NewCatalog()
	h := NewRoleHandlers(catalog, repositories.NewRoleRepository(db))

	r := gin.New()
	r.GET("/roles", h.ListRoles)
	r.GET("/permissions", h.ListPermissions)
	r.PUT("/roles/:role", h.UpdateRole)
	return catalog, mock, r
}

func TestListRoles_OwnerFirst(t *testing.T) {
	_, _, r := newRolesRouter(t)

	w := doJSON(t, r, http.MethodGet, "/roles", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var roles []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roles))
	require.Len(t, roles, 10)
	assert.Equal(t, "owner", roles[0]["role"])
}

func TestListPermissions_FullCatalog(t *testing.T) {
	_, _, r := newRolesRouter(t)

	w := doJSON(t, r, http.MethodGet, "/permissions", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var perms []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &perms))
	assert.Len(t, perms, 16)
}

func TestUpdateRole_OwnerImmutable(t *testing.T) {
	_, _, r := newRolesRouter(t)

	w := doJSON(t, r, http.MethodPut, "/roles/owner", UpdateRoleRequest{Label: "Root"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateRole_UnknownRole(t *testing.T) {
	_, _, r := newRolesRouter(t)

	w := doJSON(t, r, http.MethodPut, "/roles/superuser", UpdateRoleRequest{Label: "Super"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRole_UnknownPermissionKey(t *testing.T) {
	_, _, r := newRolesRouter(t)

	w := doJSON(t, r, http.MethodPut, "/roles/tester", UpdateRoleRequest{
		Label:       "QA Tester",
		Permissions: []string{"view_test_cases", "launch_rockets"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "launch_rockets")
}

func TestUpdateRole_EmptyLabelRejected(t *testing.T) {
	catalog, _, r := newRolesRouter(t)

	w := doJSON(t, r, http.MethodPut, "/roles/tester", UpdateRoleRequest{Label: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The live catalog must be untouched by the failed save.
	def := catalog.RoleDefinition(auth.RoleTester)
	require.NotNil(t, def)
	assert.NotEmpty(t, def.Label)
}

func TestUpdateRole_SaveReplacesGrantsAndPersists(t *testing.T) {
	catalog, mock, r := newRolesRouter(t)

	mock.ExpectExec(`INSERT INTO role_definitions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPut, "/roles/developer", UpdateRoleRequest{
		Label:       "Engineer",
		Description: "Fixes what the testers find",
		Permissions: []string{"view_tasks", "manage_tasks"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "Engineer", resp["label"])

	def := catalog.RoleDefinition(auth.RoleDeveloper)
	require.NotNil(t, def)
	assert.Equal(t, "Engineer", def.Label)
	require.Len(t, def.Permissions, 2)
	assert.Equal(t, auth.PermViewTasks, def.Permissions[0])
	assert.Equal(t, auth.PermManageTasks, def.Permissions[1])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRole_PersistFailureLeavesCatalogUntouched(t *testing.T) {
	catalog, mock, r := newRolesRouter(t)
	before := catalog.RoleDefinition(auth.RoleDeveloper)

	mock.ExpectExec(`INSERT INTO role_definitions`).
		WillReturnError(assert.AnError)

	w := doJSON(t, r, http.MethodPut, "/roles/developer", UpdateRoleRequest{
		Label:       "Engineer",
		Permissions: []string{"view_tasks"},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The live process must keep serving the old grants when the write fails;
	// otherwise they would silently revert on the next restart.
	after := catalog.RoleDefinition(auth.RoleDeveloper)
	assert.Equal(t, before.Label, after.Label)
	assert.Equal(t, before.Permissions, after.Permissions)
}
