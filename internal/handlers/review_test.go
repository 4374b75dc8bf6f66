package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/serroba/onxpoint/internal/handlers"
	"github.com/serroba/onxpoint/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReviewRequest() *handlers.SubmitReviewRequest {
	req := &handlers.SubmitReviewRequest{}
	req.Body.URL = "https://open.spotify.com/track/1"
	req.Body.Review = "Great record"
	req.Body.Schedule = "2026-12-01T10:00:00Z"

	return req
}

func TestSubmitReview(t *testing.T) {
	t.Run("saves record then publishes event", func(t *testing.T) {
		saver := &mockReviewSaver{}

		var events []*review.SubmittedEvent

		h := handlers.NewReviewHandler(saver, recordPublish(&events), zap.NewNop())

		resp, err := h.SubmitReview(context.Background(), newReviewRequest())

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)

		require.Len(t, saver.saved, 1)
		saved := saver.saved[0]
		assert.Equal(t, saved.ID.String(), resp.Body.ID)
		assert.Equal(t, "Great record", saved.Text)
		assert.Equal(t, "2026-12-01T10:00:00Z", saved.Schedule)
		assert.Empty(t, saved.PostURL)

		require.Len(t, events, 1)
		assert.Equal(t, resp.Body.ID, events[0].ID)
		assert.Equal(t, saved.URL, events[0].URL)
	})

	t.Run("each submission gets a fresh id", func(t *testing.T) {
		saver := &mockReviewSaver{}

		var events []*review.SubmittedEvent

		h := handlers.NewReviewHandler(saver, recordPublish(&events), zap.NewNop())

		first, err := h.SubmitReview(context.Background(), newReviewRequest())
		require.NoError(t, err)
		second, err := h.SubmitReview(context.Background(), newReviewRequest())
		require.NoError(t, err)

		assert.NotEqual(t, first.Body.ID, second.Body.ID)
		_, err = uuid.Parse(first.Body.ID)
		assert.NoError(t, err)
	})

	t.Run("save failure is a server error and nothing is published", func(t *testing.T) {
		var events []*review.SubmittedEvent

		h := handlers.NewReviewHandler(&mockReviewSaver{err: errMock}, recordPublish(&events), zap.NewNop())

		resp, err := h.SubmitReview(context.Background(), newReviewRequest())

		assert.Nil(t, resp)
		requireStatus(t, err, http.StatusInternalServerError)
		assert.Empty(t, events)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		saver := &mockReviewSaver{}
		h := handlers.NewReviewHandler(saver, errorPublish[review.SubmittedEvent](errMock), zap.NewNop())

		resp, err := h.SubmitReview(context.Background(), newReviewRequest())

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Len(t, saver.saved, 1)
	})
}
