package publishing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/serroba/onxpoint/internal/publishing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMastodonClient_PostStatus(t *testing.T) {
	t.Run("posts status with bearer token", func(t *testing.T) {
		var (
			gotPath string
			gotAuth string
			gotBody publishing.StatusRequest
		)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"109","url":"https://mastodon.example/@me/109"}`))
		}))
		defer srv.Close()

		client := publishing.NewMastodonClient(srv.URL+"/", "secret-token", srv.Client())

		status, err := client.PostStatus(context.Background(), &publishing.StatusRequest{
			Status:     "great\nSpotify: https://open.spotify.com/track/1",
			Visibility: "private",
		})

		require.NoError(t, err)
		assert.Equal(t, "109", status.ID)
		assert.Equal(t, "https://mastodon.example/@me/109", status.URL)
		assert.Equal(t, "/api/v1/statuses", gotPath)
		assert.Equal(t, "Bearer secret-token", gotAuth)
		assert.Equal(t, "private", gotBody.Visibility)
		assert.Empty(t, gotBody.ScheduledAt)
	})

	t.Run("non-2xx response returns HTTPError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"Validation failed"}`))
		}))
		defer srv.Close()

		client := publishing.NewMastodonClient(srv.URL, "t", srv.Client())

		_, err := client.PostStatus(context.Background(), &publishing.StatusRequest{Status: "x"})

		var httpErr *publishing.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
		assert.False(t, httpErr.Retryable())
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := publishing.NewMastodonClient(srv.URL, "t", srv.Client())

		_, err := client.PostStatus(context.Background(), &publishing.StatusRequest{Status: "x"})

		assert.Error(t, err)
	})
}

func TestHTTPError_Retryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := &publishing.HTTPError{StatusCode: tt.code}

			assert.Equal(t, tt.want, err.Retryable())
		})
	}
}
