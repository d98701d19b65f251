package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TokenCookie is the cookie the browser session keeps the token in.
	TokenCookie = "token"

	userContextKey = "currentUser"
)

// TokenFromRequest reads the bearer token from the Authorization header and
// falls back to the session cookie, so both API clients and the browser app
// reach the same routes.
func TokenFromRequest(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates the session token, reloads the account and stores the
// caller in the context. Role and active state come from the stored user,
// not from the token, so a deactivation or demotion applies on the next
// request.
func Auth(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
			return
		}

		claims, err := utils.ParseToken(tokenString, secret)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
				return
			}
			_ = c.Error(err)
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		if !user.IsActive {
			utils.RespondWithError(c, http.StatusUnauthorized, "Account is disabled")
			return
		}

		c.Set(userContextKey, user.Identity())
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
			return
		}
		if !user.IsAdmin {
			utils.RespondWithError(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.AuthenticatedUser, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return models.AuthenticatedUser{}, false
	}
	user, ok := v.(models.AuthenticatedUser)
	return user, ok
}

// SetCurrentUser is used by handlers under test that skip Auth.
func SetCurrentUser(c *gin.Context, user models.AuthenticatedUser) {
	c.Set(userContextKey, user)
}
