package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/onxpoint/internal/messaging"
	"github.com/serroba/onxpoint/internal/review"
	"go.uber.org/zap"
)

// ReviewSaver persists review records.
type ReviewSaver interface {
	Save(ctx context.Context, r *review.Record) error
}

// ReviewHandler accepts review submissions.
type ReviewHandler struct {
	store           ReviewSaver
	publishReviewed messaging.Publish[review.SubmittedEvent]
	logger          *zap.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(
	store ReviewSaver,
	publishReviewed messaging.Publish[review.SubmittedEvent],
	logger *zap.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		store:           store,
		publishReviewed: publishReviewed,
		logger:          logger,
	}
}

// SubmitReview persists the review and then announces it for publishing.
func (h *ReviewHandler) SubmitReview(ctx context.Context, req *SubmitReviewRequest) (*SubmitReviewResponse, error) {
	record := review.New(req.Body.URL, req.Body.Review, req.Body.Schedule)

	if err := h.store.Save(ctx, record); err != nil {
		h.logger.Error("failed to save review", zap.String("key", record.Key()), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save review")
	}

	event := review.NewSubmittedEvent(record, time.Now())
	if err := h.publishReviewed(ctx, event); err != nil {
		h.logger.Error("failed to publish review event",
			zap.String("id", event.ID),
			zap.Error(err),
		)
	}

	resp := &SubmitReviewResponse{}
	resp.Body.Status = "ok"
	resp.Body.ID = event.ID

	return resp, nil
}
