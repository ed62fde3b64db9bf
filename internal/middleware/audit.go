// audit.go provides Gin middleware that records authenticated write operations to the audit
// log, with optional shipping to external audit destinations.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/audit"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/config"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/models"
	"github.com/AhmedomarDS/qforma-collab-hub-sub000/internal/db/repositories"
)

// resourceTypeForPath maps a request path to the audit resource type it touches.
func resourceTypeForPath(path string) string {
	switch {
	case strings.Contains(path, "/projects"):
		// Nested resources win over their parent project path segment.
		switch {
		case strings.Contains(path, "/tasks"):
			return "task"
		case strings.Contains(path, "/requirements"):
			return "requirement"
		case strings.Contains(path, "/test-cases"):
			return "test_case"
		case strings.Contains(path, "/defects"):
			return "defect"
		}
		return "project"
	case strings.Contains(path, "/roles"):
		return "role"
	case strings.Contains(path, "/invitations"):
		return "invitation"
	case strings.Contains(path, "/members"):
		return "member"
	case strings.Contains(path, "/companies"):
		return "company"
	case strings.Contains(path, "/users"):
		return "user"
	case strings.Contains(path, "/chat"):
		return "chat_message"
	default:
		return ""
	}
}

// AuditMiddleware logs authenticated actions to the database only
func AuditMiddleware(auditRepo *repositories.AuditRepository) gin.HandlerFunc {
	return AuditMiddlewareWithShipper(auditRepo, nil, nil)
}

// AuditMiddlewareWithShipper logs authenticated actions and ships to external destinations
func AuditMiddlewareWithShipper(auditRepo *repositories.AuditRepository, shipper audit.Shipper, auditCfg *config.AuditConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request first
		c.Next()

		if c.Request.Method == "OPTIONS" {
			return
		}

		logReadOps := auditCfg != nil && auditCfg.LogReadOperations
		logFailedReqs := auditCfg != nil && auditCfg.LogFailedRequests

		isReadOp := c.Request.Method == "GET"
		isFailed := c.Writer.Status() >= 400

		// Default behavior: only log successful write operations
		if auditCfg == nil {
			if isReadOp || isFailed {
				return
			}
		} else {
			if isReadOp && !logReadOps {
				return
			}
			if isFailed && !logFailedReqs {
				return
			}
		}

		action := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		ipAddress := c.ClientIP()

		auditLog := &models.AuditLog{
			Action:    action,
			IPAddress: &ipAddress,
			CreatedAt: time.Now(),
		}

		userID := c.GetString("user_id")
		if userID != "" {
			auditLog.UserID = &userID
		}

		companyID := c.GetString("company_id")
		if companyID != "" {
			auditLog.CompanyID = &companyID
		}

		resourceType := resourceTypeForPath(c.Request.URL.Path)
		if resourceType != "" {
			auditLog.ResourceType = &resourceType
		}

		role := c.GetString("role")
		metadata := map[string]interface{}{
			"status_code": c.Writer.Status(),
		}
		if role != "" {
			metadata["role"] = role
		}
		auditLog.Metadata = metadata

		// Async log creation (non-blocking)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if auditRepo != nil {
				if err := auditRepo.CreateAuditLog(ctx, auditLog); err != nil {
					slog.Error("failed to create audit log", "error", err)
				}
			}

			if shipper != nil {
				entry := &audit.LogEntry{
					Timestamp:    auditLog.CreatedAt,
					Action:       auditLog.Action,
					UserID:       userID,
					CompanyID:    companyID,
					Role:         role,
					ResourceType: resourceType,
					IPAddress:    ipAddress,
					StatusCode:   c.Writer.Status(),
					Metadata:     metadata,
				}

				if err := shipper.Ship(ctx, entry); err != nil {
					slog.Error("failed to ship audit log", "error", err)
				}
			}
		}()
	}
}
