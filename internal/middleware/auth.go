package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/pkg/response"
	sessionpkg "github.com/mx-space/blogicum/internal/pkg/session"
	"github.com/mx-space/blogicum/internal/pkg/urls"
	"gorm.io/gorm"
)

const (
	ContextKeyActor = "actor"
	ContextKeySID   = "session_id"

	// TokenCookie carries the session token for browser clients.
	TokenCookie = "blogicum_token"
)

// OptionalAuth resolves the actor from a Bearer token or the session cookie.
// Requests without valid credentials continue anonymously.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, claims, err := sessionpkg.Resolve(db, extractToken(c)); err == nil {
			c.Set(ContextKeyActor, user)
			c.Set(ContextKeySID, claims.SessionID)
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous requests to loginURL with the requested
// path as next.
func RequireLogin(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			response.Redirect(c, urls.Login(loginURL, c.Request.URL.RequestURI()))
			return
		}
		c.Next()
	}
}

// RequireStaff rejects anyone who is not a staff member.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor == nil {
			response.Unauthorized(c)
			return
		}
		if !actor.IsStaff {
			response.Forbidden(c)
			return
		}
		c.Next()
	}
}

// CurrentActor returns the signed-in user or nil.
func CurrentActor(c *gin.Context) *models.UserModel {
	v, ok := c.Get(ContextKeyActor)
	if !ok {
		return nil
	}
	u, _ := v.(*models.UserModel)
	return u
}

// CurrentSessionID extracts the authenticated session ID from context.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentActor(c) != nil
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return NormalizeToken(cookie)
	}
	return ""
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

