package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bylanglois/views-api/internal/handlers"
	"github.com/bylanglois/views-api/internal/middleware"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	Body string `json:"body"`
}

func setupMetaAPI(t *testing.T) (*chi.Mux, huma.API, chan handlers.RequestMeta) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))

	metaChan := make(chan handlers.RequestMeta, 1)

	huma.Get(api, "/probe", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		metaChan <- handlers.RequestMetaFromContext(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	return router, api, metaChan
}

func TestRequestMeta(t *testing.T) {
	t.Run("carries user-agent and referrer into the handler", func(t *testing.T) {
		router, _, metaChan := setupMetaAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		req.Header.Set("Referer", "https://example.com/post")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		meta := <-metaChan
		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
		assert.Equal(t, "https://example.com/post", meta.Referrer)
	})

	t.Run("X-Forwarded-For wins over everything", func(t *testing.T) {
		router, _, metaChan := setupMetaAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1, 172.16.0.1")
		req.Header.Set("X-Real-IP", "10.0.0.1")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "203.0.113.7", (<-metaChan).ClientIP)
	})

	t.Run("X-Real-IP used when X-Forwarded-For is absent", func(t *testing.T) {
		router, _, metaChan := setupMetaAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("X-Real-IP", "198.51.100.9")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "198.51.100.9", (<-metaChan).ClientIP)
	})

	t.Run("falls back to the host without proxy headers", func(t *testing.T) {
		router, _, metaChan := setupMetaAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, (<-metaChan).ClientIP)
	})
}
