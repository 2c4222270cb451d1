package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"autotasking/services/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(h HealthService, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := serve(ProvideHealth(HealthParams{}), "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestReadinessHealthy(t *testing.T) {
	h := ProvideHealth(HealthParams{
		DB:      testutil.NewTestDB(t),
		Storage: pingFunc(func(context.Context) error { return nil }),
	})

	w := serve(h, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	var body Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Deps, 2)
}

func TestReadinessStorageDown(t *testing.T) {
	h := ProvideHealth(HealthParams{
		DB:      testutil.NewTestDB(t),
		Storage: pingFunc(func(context.Context) error { return errors.New("bucket missing") }),
	})

	w := serve(h, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "unhealthy", body.Status)
	require.Equal(t, "bucket missing", body.Deps[1].Message)
}
