// internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/localshop-backend/internal/i18n"
	"github.com/javajoker/localshop-backend/internal/services"
	"github.com/javajoker/localshop-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Next()
	}
}

// AdminRequired must run after AuthRequired. The role claim in the token is
// ignored; the user is reloaded on every request.
func AdminRequired(authz *services.AuthorizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := uuid.Nil
		if raw, ok := utils.GetUserIDFromContext(c); ok {
			userID, _ = uuid.Parse(raw)
		}

		admin, err := authz.RequireAdmin(c.Request.Context(), userID)
		switch {
		case err == nil:
			c.Set("admin_user", admin)
			c.Next()
		case errors.Is(err, services.ErrUnauthenticated):
			utils.UnauthorizedResponse(c, "")
		case errors.Is(err, services.ErrForbidden):
			utils.ForbiddenResponse(c, "")
		default:
			logrus.WithError(err).Error("Admin authorization failed")
			utils.InternalErrorResponse(c)
		}
	}
}
