package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertydesk/internal/guard"
	"propertydesk/internal/model"
	"propertydesk/internal/session"
	"propertydesk/internal/transport/http/middleware"
)

type mapProfiles map[string]*model.Profile

func (m mapProfiles) FindByID(_ context.Context, userID string) (*model.Profile, error) {
	return m[userID], nil
}

func withSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s != nil {
			c.Set(middleware.ContextSessionKey, s)
			c.Set(middleware.ContextUserIDKey, s.UserID)
		}
		c.Next()
	}
}

func navigationRouter(t *testing.T, s *session.Session) *gin.Engine {
	t.Helper()
	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>app</html>"), 0o600))

	g := guard.New(mapProfiles{"boss": {ID: "boss", SuperAdmin: true}, "agent": {ID: "agent"}})
	h := NewNavigationHandler(g, webDir)
	r := gin.New()
	r.Use(withSession(s))
	r.GET("/api/navigation", h.Decide)
	r.NoRoute(middleware.PageGuard(g), h.Page)
	return r
}

func TestDecideReportsRedirect(t *testing.T) {
	rec, body := doJSON(t, navigationRouter(t, nil), http.MethodGet, "/api/navigation?path=/dashboard/listings", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "redirect", data["decision"])
	assert.Equal(t, guard.LoginPath, data["redirect_to"])

	_, body = doJSON(t, navigationRouter(t, &session.Session{Token: "t", UserID: "boss"}), http.MethodGet, "/api/navigation?path=/auth/login", nil)
	assert.Equal(t, guard.AdminPath, body["data"].(map[string]interface{})["redirect_to"])

	rec, _ = doJSON(t, navigationRouter(t, nil), http.MethodGet, "/api/navigation?path=dashboard", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPageGuardRedirectsOrServes(t *testing.T) {
	tests := []struct {
		name     string
		session  *session.Session
		path     string
		status   int
		location string
	}{
		{name: "anonymous dashboard", path: "/dashboard", status: http.StatusFound, location: guard.LoginPath},
		{name: "anonymous home", path: "/", status: http.StatusOK},
		{name: "agent on login", session: &session.Session{Token: "t", UserID: "agent"}, path: "/auth/login", status: http.StatusFound, location: guard.DashboardPath},
		{name: "agent on dashboard", session: &session.Session{Token: "t", UserID: "agent"}, path: "/dashboard", status: http.StatusOK},
		{name: "agent on admin", session: &session.Session{Token: "t", UserID: "agent"}, path: "/admin", status: http.StatusFound, location: guard.DashboardPath},
		{name: "agent on admin agents", session: &session.Session{Token: "t", UserID: "agent"}, path: "/admin/agents", status: http.StatusFound, location: guard.DashboardPath},
		{name: "boss on admin agents", session: &session.Session{Token: "t", UserID: "boss"}, path: "/admin/agents", status: http.StatusOK},
		{name: "unknown api", path: "/api/nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			navigationRouter(t, tt.session).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}
