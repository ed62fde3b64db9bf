// Package middleware provides Gin HTTP middleware for authentication, authorization,
// rate limiting, security headers, and audit logging.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RateLimit → Auth → Permission → Audit → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attacks before any DB work.
// Auth populates the user identity, active company, and role; the permission
// middleware reads from that context. Audit logging runs after authorization so
// only successfully authorized mutations are recorded as successful actions.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/auth"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/cache"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// AuthMiddleware validates the bearer JWT and resolves the caller's identity,
// active company, and role within that company.
//
// On success the following gin context keys are set:
//
//	user        — *models.User
//	user_id     — string
//	email       — string
//	company_id  — string (empty when the user has no active company)
//	role        — string (empty when the user holds no role in the company)
//
// Role resolution is intentionally NOT embedded in the JWT beyond a hint: the
// assignment is re-read on every request so that a role change or removal takes
// effect immediately without token rotation. The cache keeps that lookup off
// the database on the hot path.
func AuthMiddleware(userRepo *repositories.UserRepository, roleRepo *repositories.RoleRepository, roleCache *cache.RoleCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User not found",
			})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("email", user.Email)

		// Resolve the active company: the token claim wins, falling back to the
		// user's stored preference. A user with no company yet (fresh signup)
		// proceeds with empty company context; company-scoped routes reject later.
		companyID := claims.CompanyID
		if companyID == "" && user.CurrentCompanyID != nil {
			companyID = *user.CurrentCompanyID
		}
		if companyID == "" {
			c.Next()
			return
		}
		c.Set("company_id", companyID)

		if role, ok := roleCache.GetRole(c.Request.Context(), user.ID, companyID); ok {
			c.Set("role", role)
			c.Next()
			return
		}

		assignment, err := roleRepo.GetAssignment(c.Request.Context(), user.ID, companyID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to resolve role",
			})
			return
		}
		if assignment != nil {
			c.Set("role", assignment.Role)
			roleCache.SetRole(c.Request.Context(), user.ID, companyID, assignment.Role)
		}

		c.Next()
	}
}
