package handlers

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

func newMembersRouter(t *testing.T, callerRole string) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()

	db, mock := newHandlerDB(t)
	// nil role cache: invalidation is a no-op, matching a deployment without Redis.
	h := NewMemberHandlers(repositories.NewRoleRepository(db), nil)

	r := gin.New()
	session := sessionContext("caller-1", "company-1", callerRole)
	r.GET("/members", session, h.ListMembers)
	r.PUT("/members/:userId", session, h.UpdateMemberRole)
	r.DELETE("/members/:userId", session, h.RemoveMember)
	return mock, r
}

func expectAssignment(mock sqlmock.Sqlmock, userID, role string) {
	mock.ExpectQuery(`SELECT.*FROM user_roles.*WHERE user_id`).
		WithArgs(userID, "company-1").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow("ur-1", userID, "company-1", role, time.Now()))
}

func TestListMembers(t *testing.T) {
	mock, r := newMembersRouter(t, "admin")

	mock.ExpectQuery(`SELECT.*FROM user_roles ur.*JOIN users u`).
		WithArgs("company-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "name", "role", "joined_at"}).
			AddRow("caller-1", "owner@example.com", "Owner", "owner", time.Now()).
			AddRow("user-2", "qa@example.com", "QA", "tester", time.Now()))

	w := doJSON(t, r, http.MethodGet, "/members", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qa@example.com")
}

func TestUpdateMemberRole_UnknownRole(t *testing.T) {
	_, r := newMembersRouter(t, "admin")

	w := doJSON(t, r, http.MethodPut, "/members/user-2", UpdateMemberRoleRequest{Role: "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMemberRole_MemberNotFound(t *testing.T) {
	mock, r := newMembersRouter(t, "admin")

	mock.ExpectQuery(`SELECT.*FROM user_roles.*WHERE user_id`).
		WithArgs("user-2", "company-1").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(t, r, http.MethodPut, "/members/user-2", UpdateMemberRoleRequest{Role: "tester"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateMemberRole_OnlyOwnerGrantsOwner(t *testing.T) {
	mock, r := newMembersRouter(t, "admin")

	expectAssignment(mock, "user-2", "tester")

	w := doJSON(t, r, http.MethodPut, "/members/user-2", UpdateMemberRoleRequest{Role: "owner"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateMemberRole_LastOwnerCannotBeDemoted(t *testing.T) {
	mock, r := newMembersRouter(t, "owner")

	expectAssignment(mock, "caller-1", "owner")
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_roles`).
		WithArgs("company-1", "owner").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	w := doJSON(t, r, http.MethodPut, "/members/caller-1", UpdateMemberRoleRequest{Role: "admin"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateMemberRole_Success(t *testing.T) {
	mock, r := newMembersRouter(t, "owner")

	expectAssignment(mock, "user-2", "tester")
	mock.ExpectExec(`UPDATE user_roles SET role`).
		WithArgs("user-2", "company-1", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPut, "/members/user-2", UpdateMemberRoleRequest{Role: "admin"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decodeBody(t, w)["role"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMember_LastOwner(t *testing.T) {
	mock, r := newMembersRouter(t, "owner")

	expectAssignment(mock, "caller-1", "owner")
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_roles`).
		WithArgs("company-1", "owner").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	w := doJSON(t, r, http.MethodDelete, "/members/caller-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRemoveMember_Success(t *testing.T) {
	mock, r := newMembersRouter(t, "admin")

	expectAssignment(mock, "user-2", "tester")
	mock.ExpectExec(`DELETE FROM user_roles`).
		WithArgs("user-2", "company-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodDelete, "/members/user-2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
