package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"propertydesk/internal/guard"
	"propertydesk/internal/transport/http/middleware"
	"propertydesk/internal/transport/http/response"
)

type NavigationHandler struct {
	guard  *guard.Guard
	webDir string
}

func NewNavigationHandler(g *guard.Guard, webDir string) *NavigationHandler {
	return &NavigationHandler{guard: g, webDir: webDir}
}

// Decide lets a client-side router ask where a navigation should land.
func (h *NavigationHandler) Decide(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if !strings.HasPrefix(path, "/") {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "path must start with /")
		return
	}
	decision := h.guard.Evaluate(c.Request.Context(), guard.Input{
		Path:    path,
		Session: middleware.CurrentSession(c),
	})
	response.OK(c, decision)
}

// Page serves the single-page app for every unmatched GET outside /api. It
// runs behind middleware.PageGuard.
func (h *NavigationHandler) Page(c *gin.Context) {
	if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "route not found")
		return
	}
	index := filepath.Join(h.webDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "page not found")
		return
	}
	c.File(index)
}
