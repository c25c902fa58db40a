package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hourbank/internal/auth"
	"hourbank/internal/domain"
)

const (
	userIDKey = "userID"
	roleKey   = "userRole"
	userKey   = "user"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// UserLookup loads the current state of an authenticated user.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type errorBody struct {
	Error string `json:"error"`
}

// JWTAuth validates the Authorization bearer token and stores the caller in the context.
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "missing or invalid authorization header"})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "invalid or expired token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// ActiveUser reloads the caller on every request so role and status changes
// apply before the token expires. Suspended users keep read access only.
func ActiveUser(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "account not found"})
			return
		}

		if user.IsSuspended() && c.Request.Method != http.MethodGet {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: "user account is suspended"})
			return
		}

		c.Set(userKey, user)
		c.Set(roleKey, user.Role)
		c.Next()
	}
}

// RequireAdmin rejects callers without the ADMIN role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != domain.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: "admin access required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's ID, or "" when unauthenticated.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Role returns the authenticated caller's role.
func Role(c *gin.Context) domain.UserRole {
	v, ok := c.Get(roleKey)
	if !ok {
		return ""
	}
	role, _ := v.(domain.UserRole)
	return role
}

// CurrentUser returns the user loaded by ActiveUser, if any.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
