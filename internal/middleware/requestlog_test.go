package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/onxpoint/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupLoggedAPI(t *testing.T) (*chi.Mux, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestLogger(zap.New(core)))

	huma.Get(api, "/test", okHandler)
	huma.Get(api, "/fail", func(_ context.Context, _ *struct{}) (*testOutput, error) {
		return nil, huma.Error500InternalServerError("boom")
	})

	return router, logs
}

func TestRequestLogger(t *testing.T) {
	t.Run("logs method path status and client ip", func(t *testing.T) {
		router, logs := setupLoggedAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")

		router.ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.FilterMessage("request completed").All()
		require.Len(t, entries, 1)

		fields := entries[0].ContextMap()
		assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/test", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "192.168.1.1", fields["client_ip"])
	})

	t.Run("uses X-Real-IP when no forwarded chain", func(t *testing.T) {
		router, logs := setupLoggedAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Real-IP", "10.1.1.1")

		router.ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "10.1.1.1", entries[0].ContextMap()["client_ip"])
	})

	t.Run("falls back to remote address", func(t *testing.T) {
		router, logs := setupLoggedAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "172.16.0.9:54321"

		router.ServeHTTP(httptest.NewRecorder(), req)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "172.16.0.9", entries[0].ContextMap()["client_ip"])
	})

	t.Run("server errors are logged as warnings", func(t *testing.T) {
		router, logs := setupLoggedAPI(t)

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
	})
}
