package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/response"
	"github.com/Kilat-Pet-Delivery/service-trip/internal/session"
)

const sessionKey = "trip.session"

// TokenValidator turns a bearer token into a session.
type TokenValidator interface {
	ValidateToken(token string) (session.Session, error)
}

// AuthMiddleware requires a valid bearer token and stores the session on the context.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "authorization header must be a bearer token")
			return
		}

		sess, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession returns the authenticated session, if any.
func GetSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	if !ok || !sess.IsAuthenticated() {
		return session.Session{}, false
	}
	return sess, true
}

// RequireRole allows the request through only for sessions holding one of roles.
func RequireRole(roles ...session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			response.Unauthorized(c, "unauthorized")
			return
		}
		for _, r := range roles {
			if sess.Role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient role")
	}
}
