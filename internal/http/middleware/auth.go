package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/fairprice-backend/internal/domain"
	"github.com/yungbote/fairprice-backend/internal/http/response"
	"github.com/yungbote/fairprice-backend/internal/platform/logger"
	"github.com/yungbote/fairprice-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	identity services.IdentityService
}

func NewAuthMiddleware(log *logger.Logger, identity services.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), identity: identity}
}

// RequireAuth verifies the bearer token and attaches the caller's request
// data to the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			return
		}
		ctx, err := am.identity.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := am.identity.RequireAdmin(c.Request.Context()); err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			case errors.Is(err, domain.ErrForbidden):
				response.AbortError(c, http.StatusForbidden, "forbidden", errors.New("admin access required"))
			default:
				am.log.Error("admin check failed", "error", err)
				response.AbortError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
			}
			return
		}
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
