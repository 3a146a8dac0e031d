package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scg/portal/internal/infrastructure/logger"
	"github.com/scg/portal/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequirePermission creates middleware that requires a specific permission.
// Staff and superusers pass every permission check.
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission creates middleware that requires any of the specified permissions
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			denyUnauthenticated(c)
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			logger.GetGinLogger(c).Warn("Permission denied",
				zap.String("user_id", claims.UserID),
				zap.Strings("required_any", permissions),
			)
			abortForbidden(c, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// RequireStaff allows only staff users through
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			denyUnauthenticated(c)
			return
		}
		if !claims.IsStaff {
			abortForbidden(c, "Staff access required")
			return
		}
		c.Next()
	}
}

// HasPermission reports whether the authenticated user holds permission
func HasPermission(c *gin.Context, permission string) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.HasPermission(permission)
}

func denyUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", c.GetString(logger.GinRequestIDKey)))
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, message, c.GetString(logger.GinRequestIDKey)))
}
