package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"propertydesk/internal/guard"
)

// PageGuard applies the route guard to page navigations. It must run after
// Session.
func PageGuard(g *guard.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := g.Evaluate(c.Request.Context(), guard.Input{
			Path:    c.Request.URL.Path,
			Session: CurrentSession(c),
		})
		if !decision.Allowed() {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}
