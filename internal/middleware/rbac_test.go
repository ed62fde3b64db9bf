package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
)

// newRoleRouter builds a gin engine where:
//  1. A setup handler sets c["role"] (and c["company_id"]) if role is non-empty
//  2. The provided middleware runs
//  3. A final handler returns 200 {"ok":true} if not aborted
func newRoleRouter(mid gin.HandlerFunc, role string) *gin.Engine {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
			c.Set("company_id", "company-1")
		}
	}, mid, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func do(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	return w
}

func isAbortedWith403(w *httptest.ResponseRecorder) bool {
	return w.Code == http.StatusForbidden
}

func isOK(w *httptest.ResponseRecorder) bool {
	return w.Code == http.StatusOK
}

// ---------------------------------------------------------------------------
// RequirePermission
// ---------------------------------------------------------------------------

func TestRequirePermission(t *testing.T) {
	catalog := auth.NewCatalog()

	t.Run("no role in context returns 403", func(t *testing.T) {
		w := do(newRoleRouter(RequirePermission(catalog, auth.PermManageUsers), ""))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("role without permission returns 403", func(t *testing.T) {
		w := do(newRoleRouter(RequirePermission(catalog, auth.PermManageUsers), "tester"))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("role with permission allows request", func(t *testing.T) {
		w := do(newRoleRouter(RequirePermission(catalog, auth.PermExecuteTests), "tester"))
		if !isOK(w) {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("owner passes every permission", func(t *testing.T) {
		for _, p := range auth.AllPermissions() {
			w := do(newRoleRouter(RequirePermission(catalog, p.Key), "owner"))
			if !isOK(w) {
				t.Errorf("owner denied %s: status = %d, want 200", p.Key, w.Code)
			}
		}
	})

	t.Run("unknown role returns 403", func(t *testing.T) {
		w := do(newRoleRouter(RequirePermission(catalog, auth.PermViewProjects), "superuser"))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("403 body contains error field", func(t *testing.T) {
		w := do(newRoleRouter(RequirePermission(catalog, auth.PermManageCompany), "tester"))
		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("body parse error: %v", err)
		}
		if _, ok := body["error"]; !ok {
			t.Error("403 response body should have 'error' field")
		}
	})
}

// ---------------------------------------------------------------------------
// RequireAnyPermission
// ---------------------------------------------------------------------------

func TestRequireAnyPermission(t *testing.T) {
	catalog := auth.NewCatalog()

	t.Run("no role in context returns 403", func(t *testing.T) {
		w := do(newRoleRouter(RequireAnyPermission(catalog, auth.PermManageUsers, auth.PermManageCompany), ""))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("no matching permission returns 403", func(t *testing.T) {
		w := do(newRoleRouter(RequireAnyPermission(catalog, auth.PermManageUsers, auth.PermManageCompany), "tester"))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("one matching permission allows request", func(t *testing.T) {
		w := do(newRoleRouter(RequireAnyPermission(catalog, auth.PermManageUsers, auth.PermExecuteTests), "tester"))
		if !isOK(w) {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}

// ---------------------------------------------------------------------------
// RequireOwner / RequireCompany
// ---------------------------------------------------------------------------

func TestRequireOwner(t *testing.T) {
	t.Run("owner allowed", func(t *testing.T) {
		w := do(newRoleRouter(RequireOwner(), "owner"))
		if !isOK(w) {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("admin denied", func(t *testing.T) {
		w := do(newRoleRouter(RequireOwner(), "admin"))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("no role denied", func(t *testing.T) {
		w := do(newRoleRouter(RequireOwner(), ""))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

func TestRequireCompany(t *testing.T) {
	t.Run("company context allows request", func(t *testing.T) {
		w := do(newRoleRouter(RequireCompany(), "tester"))
		if !isOK(w) {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("missing company returns 403", func(t *testing.T) {
		w := do(newRoleRouter(RequireCompany(), ""))
		if !isAbortedWith403(w) {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}
