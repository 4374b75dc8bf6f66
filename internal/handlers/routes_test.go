package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/onxpoint/internal/handlers"
	"github.com/serroba/onxpoint/internal/review"
	"github.com/serroba/onxpoint/internal/shortlink"
	"github.com/serroba/onxpoint/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) (*chi.Mux, huma.API) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))

	kv := store.NewMemoryStore(2)

	var events []*review.SubmittedEvent

	handlers.RegisterRoutes(api,
		handlers.NewSessionHandler(&mockAuthenticator{token: "v4.local.tok"}, zap.NewNop()),
		handlers.NewReviewHandler(review.NewStore(kv), recordPublish(&events), zap.NewNop()),
		handlers.NewShortLinkHandler(shortlink.NewStore(kv, func() string { return "gen" }), "http://localhost:8888", zap.NewNop()),
	)

	return router, api
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestRegisterRoutes(t *testing.T) {
	t.Run("protected operations declare bearer security", func(t *testing.T) {
		_, api := setupRouter(t)

		paths := api.OpenAPI().Paths
		assert.Equal(t, []map[string][]string{{handlers.BearerScheme: {}}}, paths["/api/review"].Post.Security)
		assert.Equal(t, []map[string][]string{{handlers.BearerScheme: {}}}, paths["/api/shorten"].Post.Security)
		assert.Empty(t, paths["/api/session"].Post.Security)
		assert.Empty(t, paths["/s/{short}"].Get.Security)
	})

	t.Run("session returns token", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := serve(router, http.MethodPost, "/api/session", `{"username":"alice","password":"s3cret"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "OK", body["status"])
		assert.Equal(t, "v4.local.tok", body["token"])
	})

	t.Run("review is created", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := serve(router, http.MethodPost, "/api/review", `{"url":"https://open.spotify.com/track/1","review":"nice"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "ok", body["status"])
		assert.NotEmpty(t, body["id"])
	})

	t.Run("shorten then redirect", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := serve(router, http.MethodPost, "/api/shorten", `{"url":"https://example.com/long","short":"ex"}`)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "http://localhost:8888/s/ex", body["short_url"])

		w = serve(router, http.MethodGet, "/s/ex", "")

		assert.Equal(t, http.StatusPermanentRedirect, w.Code)
		assert.Equal(t, "https://example.com/long", w.Header().Get("Location"))
	})

	t.Run("unknown short code is 404", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := serve(router, http.MethodGet, "/s/missing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
