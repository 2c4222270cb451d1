package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autotasking/pkg/authz"
	"autotasking/pkg/config"
	"autotasking/pkg/errutil"
	"autotasking/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.SessionSecret = "0123456789abcdef0123456789abcdef"
	cfg.Auth.CookieName = "autotasking_auth"
	cfg.Auth.CookieTTL = time.Hour
	cfg.Auth.AdminUser = "admin"
	cfg.Auth.AdminPassword = "s3cret"
	return cfg
}

func newRouter(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	cfg := testConfig()
	sessions, err := session.NewManager(cfg)
	require.NoError(t, err)
	enforcer, err := authz.NewEnforcer(cfg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Error(), RequestID())
	api := r.Group("/api", Authenticate(sessions), Authorize(enforcer))
	handler := func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"role": id.Role, "id": id.ID})
	}
	api.POST("/daily-tasks", handler)
	api.GET("/admin-summary", handler)
	return r, sessions
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestErrorRendersBaseError(t *testing.T) {
	r := gin.New()
	r.Use(Error())
	r.GET("/nf", func(c *gin.Context) { _ = c.Error(errutil.NotFound("video not found", nil)) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("kaput")) })
	r.GET("/upstream", func(c *gin.Context) { _ = c.Error(errutil.Upstream("endpoint returned 500", nil)) })

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/nf", http.StatusNotFound, "not_found"},
		{"/boom", http.StatusInternalServerError, "internal"},
		{"/upstream", http.StatusBadGateway, "upstream_error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		require.Equal(t, tt.status, w.Code, tt.path)

		var body errorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, tt.code, body.Error.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	require.NoError(t, err)

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, given, w.Header().Get(RequestIDHeader))
}

func TestInternCookieReachesInternRoute(t *testing.T) {
	r, sessions := newRouter(t)
	token, err := sessions.Issue("7", "ana")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/daily-tasks", nil)
	req.AddCookie(&http.Cookie{Name: "autotasking_auth", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"role":"intern","id":"7"}`, w.Body.String())
}

func TestInternCannotReachAdminRoute(t *testing.T) {
	r, sessions := newRouter(t)
	token, err := sessions.Issue("7", "ana")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin-summary", nil)
	req.AddCookie(&http.Cookie{Name: "autotasking_auth", Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, `Basic realm="Admin"`, w.Header().Get("WWW-Authenticate"))
}

func TestAdminBasicAuth(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin-summary", nil)
	req.SetBasicAuth("admin", "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin-summary", nil)
	req.SetBasicAuth("admin", "nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/daily-tasks", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "unauthorized", body.Error.Code)
}
