package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"propertydesk/internal/session"
	"propertydesk/internal/transport/http/response"
)

const (
	ContextSessionKey = "session"
	ContextUserIDKey  = "user_id"
)

// Session resolves the optional session of every request. It never rejects.
func Session(accessor *session.Accessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s := accessor.FromRequest(c.Request); s != nil {
			c.Set(ContextSessionKey, s)
			c.Set(ContextUserIDKey, s.UserID)
		}
		c.Next()
	}
}

// RequireSession rejects requests without a session carrying a user id.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

func CurrentSession(c *gin.Context) *session.Session {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	s, _ := value.(*session.Session)
	return s
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
