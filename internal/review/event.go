package review

import "time"

// TopicSubmitted carries reviews that have been persisted and await publishing.
const TopicSubmitted = "review.submitted"

// SubmittedEvent is published after a review and its index entry are written.
type SubmittedEvent struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Review      string    `json:"review"`
	Schedule    string    `json:"schedule,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewSubmittedEvent builds the event for a saved record.
func NewSubmittedEvent(r *Record, at time.Time) *SubmittedEvent {
	return &SubmittedEvent{
		ID:          r.ID.String(),
		URL:         r.URL,
		Review:      r.Text,
		Schedule:    r.Schedule,
		SubmittedAt: at,
	}
}
