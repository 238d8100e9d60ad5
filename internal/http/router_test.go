package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	httpH "github.com/yungbote/nexovate-backend/internal/http/handlers"
	"github.com/yungbote/nexovate-backend/internal/observability"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Log:           logger.Nop(),
		Metrics:       observability.New(),
		HealthHandler: httpH.NewHealthHandler(okPinger{}),
	})

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/documents", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"), tc.path)
	}
}
