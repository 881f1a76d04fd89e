package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scentmatch-backend/internal/shared/auth"
	"scentmatch-backend/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	guestIDKey     = "guestId"
	isGuestKey     = "isGuest"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Auth validates Supabase JWTs and stores identity in context. Requests
// without a bearer token continue as guests; an X-Guest-Id header, when
// present, identifies the anonymous quiz session.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" || verifier == nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			c.Set(userIDKey, claims.Subject)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.UserMetadata.FullName != "" {
				c.Set(userNameKey, claims.UserMetadata.FullName)
			}
			if claims.UserMetadata.AvatarURL != "" {
				c.Set(userPictureKey, claims.UserMetadata.AvatarURL)
			}
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		if guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id")); guestID != "" {
			c.Set(guestIDKey, guestID)
		}
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// RequireUser rejects guests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsGuest(c) || UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the authenticated user ID set by the auth middleware.
// Guests have no user ID.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// GuestIDFromContext fetches the guest identifier, if the client sent one.
func GuestIDFromContext(c *gin.Context) string {
	return stringFromContext(c, guestIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

// IsGuest reports whether the request is unauthenticated.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return true
	}
	val, ok := c.Get(isGuestKey)
	if !ok {
		return true
	}
	guest, ok := val.(bool)
	return !ok || guest
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
