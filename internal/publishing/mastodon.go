// Package publishing posts submitted reviews to Mastodon and records the result.
package publishing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Status is the subset of a Mastodon status (or scheduled status) we keep.
type Status struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StatusRequest is the body of POST /api/v1/statuses.
type StatusRequest struct {
	Status      string `json:"status"`
	Visibility  string `json:"visibility,omitempty"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
}

// StatusPoster posts statuses.
type StatusPoster interface {
	PostStatus(ctx context.Context, req *StatusRequest) (*Status, error)
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("mastodon responded %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// MastodonClient posts statuses with a bearer access token.
type MastodonClient struct {
	host        string
	accessToken string
	httpClient  *http.Client
}

// NewMastodonClient creates a client for host (e.g. https://mastodon.social).
func NewMastodonClient(host, accessToken string, httpClient *http.Client) *MastodonClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &MastodonClient{
		host:        strings.TrimSuffix(host, "/"),
		accessToken: accessToken,
		httpClient:  httpClient,
	}
}

func (c *MastodonClient) PostStatus(ctx context.Context, req *StatusRequest) (*Status, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, oops.Code("PUBLISH_ENCODE_FAILED").Wrap(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/v1/statuses", bytes.NewReader(body))
	if err != nil {
		return nil, oops.Code("PUBLISH_REQUEST_FAILED").Wrap(err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, oops.Code("PUBLISH_REQUEST_FAILED").Wrap(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, oops.Code("PUBLISH_RESPONSE_FAILED").Wrap(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var status Status
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, oops.Code("PUBLISH_RESPONSE_FAILED").Wrap(err)
	}

	return &status, nil
}
