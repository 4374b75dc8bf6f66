package publishing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/onxpoint/internal/messaging"
	"github.com/serroba/onxpoint/internal/review"
	"go.uber.org/zap"
)

// Handler turns submitted reviews into Mastodon statuses.
type Handler struct {
	poster  StatusPoster
	log     Log
	private bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates a publishing handler. When private is set, statuses are posted
// with private visibility.
func NewHandler(poster StatusPoster, log Log, private bool, logger *zap.Logger) *Handler {
	return &Handler{
		poster:  poster,
		log:     log,
		private: private,
		logger:  logger,
		now:     time.Now,
	}
}

// BuildStatus formats the status request for an event.
func BuildStatus(event *review.SubmittedEvent, private bool) *StatusRequest {
	req := &StatusRequest{
		Status:      fmt.Sprintf("%s\nSpotify: %s", event.Review, event.URL),
		ScheduledAt: event.Schedule,
	}

	if private {
		req.Visibility = "private"
	}

	return req
}

// Handle posts the status and records the publication. Client errors from Mastodon
// are permanent; network errors, 429 and 5xx are redelivered.
func (h *Handler) Handle(ctx context.Context, event *review.SubmittedEvent) error {
	status, err := h.poster.PostStatus(ctx, BuildStatus(event, h.private))
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			return messaging.Permanent(err)
		}

		return err
	}

	h.logger.Info("status posted",
		zap.String("review_id", event.ID),
		zap.String("status_id", status.ID),
	)

	// A failed log write must not repost the status on redelivery.
	if err := h.log.Record(ctx, &Publication{
		ReviewID:    event.ID,
		StatusID:    status.ID,
		StatusURL:   status.URL,
		PublishedAt: h.now(),
	}); err != nil {
		return messaging.Permanent(err)
	}

	return nil
}
