package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/onxpoint/internal/messaging"
	"github.com/serroba/onxpoint/internal/review"
	"github.com/stretchr/testify/require"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com"

type mockAuthenticator struct {
	token string
	err   error
}

func (m *mockAuthenticator) Authenticate(_ context.Context, _, _ string) (string, error) {
	return m.token, m.err
}

type mockReviewSaver struct {
	saved []*review.Record
	err   error
}

func (m *mockReviewSaver) Save(_ context.Context, r *review.Record) error {
	if m.err != nil {
		return m.err
	}

	m.saved = append(m.saved, r)

	return nil
}

// recordPublish returns a publish function that appends events to dst.
func recordPublish[T any](dst *[]*T) messaging.Publish[T] {
	return func(_ context.Context, event *T) error {
		*dst = append(*dst, event)

		return nil
	}
}

// errorPublish returns a publish function that always fails.
func errorPublish[T any](err error) messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return err }
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()

	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, status, se.GetStatus())
}
