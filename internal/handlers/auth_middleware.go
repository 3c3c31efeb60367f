package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

const (
	contextUserID   = "user_id"
	contextUserRole = "user_role"
)

// TokenParser verifies a bearer token and returns its claims.
// casdoorsdk.ParseJwtToken is the production implementation.
type TokenParser func(token string) (*casdoorsdk.Claims, error)

// AuthMiddleware authenticates the caller from the Authorization header and
// stores user_id and user_role in the gin context. The caller's profile is
// mirrored into the users table for instructor views.
func AuthMiddleware(parse TokenParser, users services.UserSyncer, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
				Code:    codeUnauthorized,
			})
			return
		}

		claims, err := parse(strings.TrimSpace(token))
		if err != nil || claims == nil || claims.User.Id == "" {
			utils.FromContext(c, logger).Warn("Rejected bearer token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
				Code:    codeUnauthorized,
			})
			return
		}

		user := &models.User{
			ID:       claims.User.Id,
			FullName: displayName(claims),
			Email:    claims.User.Email,
		}
		if users != nil {
			if err := users.SyncUser(c.Request.Context(), user); err != nil {
				utils.FromContext(c, logger).Warn("Failed to sync user profile", "user_id", user.ID, "error", err)
			}
		}

		c.Set(contextUserID, user.ID)
		c.Set(contextUserRole, roleFromClaims(claims))
		c.Next()
	}
}

// RequireRole lets the request through only for the given roles
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(contextUserRole)
		userRole, _ := role.(models.UserRole)
		if !slices.Contains(roles, userRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden - insufficient permissions",
				Code:    codeForbidden,
			})
			return
		}
		c.Next()
	}
}

// roleFromClaims picks the most privileged known role. Organization admins
// are admins; callers without a known role are students.
func roleFromClaims(claims *casdoorsdk.Claims) models.UserRole {
	if claims.User.IsAdmin {
		return models.RoleAdmin
	}

	names := make([]string, 0, len(claims.User.Roles)+1)
	for _, role := range claims.User.Roles {
		if role != nil {
			names = append(names, strings.ToLower(role.Name))
		}
	}
	names = append(names, strings.ToLower(claims.User.Tag))

	for _, candidate := range []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleProctor} {
		if slices.Contains(names, string(candidate)) {
			return candidate
		}
	}
	return models.RoleStudent
}

func displayName(claims *casdoorsdk.Claims) string {
	if claims.User.DisplayName != "" {
		return claims.User.DisplayName
	}
	return claims.User.Name
}
