package handlers

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

var userCols = []string{"id", "email", "name", "password_hash", "current_company_id", "created_at", "updated_at"}

var assignmentCols = []string{"id", "user_id", "company_id", "role", "created_at"}

func newAuthRouter(t *testing.T, allowSignup bool) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()

	db, mock := newHandlerDB(t)
	cfg := &config.Config{}
	cfg.Auth.AllowPublicSignup = allowSignup
	cfg.Auth.TokenTTL = time.Hour

	h := NewAuthHandlers(repositories.NewUserRepository(db), repositories.NewRoleRepository(db), cfg)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/switch-company", sessionContext("user-1", "", ""), h.SwitchCompany)
	return mock, r
}

// fastHash hashes with the minimum bcrypt cost to keep tests quick.
func fastHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// ---- Register ---------------------------------------------------------------

func TestRegister_SignupDisabled(t *testing.T) {
	_, r := newAuthRouter(t, false)

	w := doJSON(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		Email: "new@example.com", Name: "New User", Password: "long-enough",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	_, r := newAuthRouter(t, true)

	w := doJSON(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		Email: "new@example.com", Name: "New User", Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mock, r := newAuthRouter(t, true)

	mock.ExpectQuery(`SELECT.*FROM users.*WHERE email`).
		WithArgs("taken@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "taken@example.com", "Existing", "hash", nil, time.Now(), time.Now()))

	w := doJSON(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		Email: "taken@example.com", Name: "New User", Password: "long-enough",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_Success(t *testing.T) {
	mock, r := newAuthRouter(t, true)

	// Emails are normalized to lowercase before the lookup and insert.
	mock.ExpectQuery(`SELECT.*FROM users.*WHERE email`).
		WithArgs("new@example.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/auth/register", RegisterRequest{
		Email: "New@Example.com", Name: "New User", Password: "long-enough",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	assert.NotEmpty(t, resp["token"])
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---- Login ------------------------------------------------------------------

func TestLogin_UnknownEmail(t *testing.T) {
	mock, r := newAuthRouter(t, true)

	mock.ExpectQuery(`SELECT.*FROM users.*WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(t, r, http.MethodPost, "/auth/login", LoginRequest{
		Email: "ghost@example.com", Password: "whatever-works",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["error"])
}

func TestLogin_WrongPassword(t *testing.T) {
	mock, r := newAuthRouter(t, true)

	mock.ExpectQuery(`SELECT.*FROM users.*WHERE email`).
		WithArgs("qa@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "qa@example.com", "QA", fastHash(t, "correct-password"), nil, time.Now(), time.Now()))

	w := doJSON(t, r, http.MethodPost, "/auth/login", LoginRequest{
		Email: "qa@example.com", Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Indistinguishable from the unknown-email response.
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["error"])
}

func TestLogin_Success(t *testing.T) {
	mock, r := newAuthRouter(t, true)

	companyID := "company-1"
	mock.ExpectQuery(`SELECT.*FROM users.*WHERE email`).
		WithArgs("qa@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-1", "qa@example.com", "QA", fastHash(t, "correct-password"), &companyID, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT.*FROM user_roles.*WHERE user_id`).
		WithArgs("user-1", companyID).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow("ur-1", "user-1", companyID, "tester", time.Now()))

	w := doJSON(t, r, http.MethodPost, "/auth/login", LoginRequest{
		Email: "qa@example.com", Password: "correct-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, "tester", resp["role"])
	assert.Equal(t, companyID, resp["company_id"])
}

// ---- SwitchCompany ----------------------------------------------------------

func TestSwitchCompany_NotAMember(t *testing.T) {
	mock, r := newAuthRouter(t, true)

	mock.ExpectQuery(`SELECT.*FROM user_roles.*WHERE user_id`).
		WithArgs("user-1", "company-2").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(t, r, http.MethodPost, "/auth/switch-company", SwitchCompanyRequest{CompanyID: "company-2"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSwitchCompany_Success(t *testing.T) {
	mock, r := newAuthRouter(t, true)

	mock.ExpectQuery(`SELECT.*FROM user_roles.*WHERE user_id`).
		WithArgs("user-1", "company-2").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow("ur-2", "user-1", "company-2", "manager", time.Now()))
	mock.ExpectExec(`UPDATE users SET current_company_id`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/auth/switch-company", SwitchCompanyRequest{CompanyID: "company-2"})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "company-2", resp["company_id"])
	assert.Equal(t, "manager", resp["role"])
	assert.NotEmpty(t, resp["token"])
}
