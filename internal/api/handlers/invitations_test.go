package handlers

import (
	"net/http"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/notifications"
)

var invitationCols = []string{"id", "email", "company_id", "role", "status", "token_hash", "created_at", "expires_at"}

func newInvitationsRouter(t *testing.T, user *models.User) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()

	db, mock := newHandlerDB(t)
	cfg := &config.Config{}
	cfg.Auth.TokenTTL = time.Hour

	h := NewInvitationHandlers(
		repositories.NewInvitationRepository(db),
		repositories.NewRoleRepository(db),
		repositories.NewUserRepository(db),
		repositories.NewCompanyRepository(db),
		auth.NewCatalog(),
		notifications.NewMailer(&cfg.Notifications),
		cfg,
	)

	r := gin.New()
	session := func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Set("company_id", "company-1")
		c.Set("role", "admin")
		c.Set("user", user)
	}
	r.POST("/invitations", session, h.CreateInvitation)
	r.POST("/invitations/:id/accept", session, h.AcceptInvitation)
	return mock, r
}

func testUser(email string) *models.User {
	return &models.User{ID: "user-1", Email: email, Name: "Test User"}
}

// ---- CreateInvitation -------------------------------------------------------

func TestCreateInvitation_UnknownRole(t *testing.T) {
	_, r := newInvitationsRouter(t, testUser("admin@example.com"))

	w := doJSON(t, r, http.MethodPost, "/invitations", CreateInvitationRequest{
		Email: "new@example.com", Role: "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateInvitation_OwnerRoleRejected(t *testing.T) {
	_, r := newInvitationsRouter(t, testUser("admin@example.com"))

	w := doJSON(t, r, http.MethodPost, "/invitations", CreateInvitationRequest{
		Email: "new@example.com", Role: "owner",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- AcceptInvitation -------------------------------------------------------

func pendingInvitationRow(tokenHash string, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(invitationCols).AddRow(
		"inv-1", "invited@example.com", "company-2", "tester",
		models.InvitationStatusPending, tokenHash, time.Now(), expiresAt,
	)
}

func TestAcceptInvitation_NotFound(t *testing.T) {
	mock, r := newInvitationsRouter(t, testUser("invited@example.com"))

	mock.ExpectQuery(`SELECT.*FROM invitations.*WHERE id`).
		WithArgs("inv-missing").
		WillReturnRows(sqlmock.NewRows(invitationCols))

	w := doJSON(t, r, http.MethodPost, "/invitations/inv-missing/accept", AcceptInvitationRequest{Token: "some-token"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAcceptInvitation_Expired(t *testing.T) {
	mock, r := newInvitationsRouter(t, testUser("invited@example.com"))

	_, hash, err := auth.GenerateInviteToken()
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT.*FROM invitations.*WHERE id`).
		WithArgs("inv-1").
		WillReturnRows(pendingInvitationRow(hash, time.Now().Add(-time.Hour)))

	w := doJSON(t, r, http.MethodPost, "/invitations/inv-1/accept", AcceptInvitationRequest{Token: "some-token"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Invitation has expired", decodeBody(t, w)["error"])
}

func TestAcceptInvitation_BadToken(t *testing.T) {
	mock, r := newInvitationsRouter(t, testUser("invited@example.com"))

	_, hash, err := auth.GenerateInviteToken()
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT.*FROM invitations.*WHERE id`).
		WithArgs("inv-1").
		WillReturnRows(pendingInvitationRow(hash, time.Now().Add(time.Hour)))

	w := doJSON(t, r, http.MethodPost, "/invitations/inv-1/accept", AcceptInvitationRequest{Token: "guessed-token"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAcceptInvitation_WrongEmail(t *testing.T) {
	mock, r := newInvitationsRouter(t, testUser("somebody-else@example.com"))

	token, hash, err := auth.GenerateInviteToken()
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT.*FROM invitations.*WHERE id`).
		WithArgs("inv-1").
		WillReturnRows(pendingInvitationRow(hash, time.Now().Add(time.Hour)))

	w := doJSON(t, r, http.MethodPost, "/invitations/inv-1/accept", AcceptInvitationRequest{Token: token})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
