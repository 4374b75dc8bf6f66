// Package store provides the pooled key-value backend shared by the identity,
// short link and review components.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable covers connection, network and pool exhaustion failures.
	ErrUnavailable = errors.New("store unavailable")

	// ErrMalformed is returned when a stored value cannot be decoded.
	ErrMalformed = errors.New("malformed stored value")
)

// Conn is a leased connection. It is only valid inside the WithConn callback.
type Conn interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	AddToSet(ctx context.Context, setKey, member string) error
}

// KeyValueStore leases connections from a bounded pool.
//
// WithConn blocks until a connection is available or ctx is done, runs fn,
// and returns the connection to the pool whether fn succeeds, fails or panics.
// Operations issued through the same Conn run in order; nothing is atomic
// across calls.
type KeyValueStore interface {
	WithConn(ctx context.Context, fn func(Conn) error) error
	Ping(ctx context.Context) error
}

// Key layout shared with previously persisted data.
const (
	authPrefix   = "auth/"
	reviewPrefix = "reviews/"
	urlPrefix    = "url/"

	// ReviewIndexKey is the set holding every review key.
	ReviewIndexKey = "reviews"
)

// AuthKey returns the key holding the credential hash for username.
func AuthKey(username string) string {
	return authPrefix + username
}

// ReviewKey returns the key holding the serialized review with the given id.
func ReviewKey(id string) string {
	return reviewPrefix + id
}

// URLKey returns the key holding the long URL for a short code.
func URLKey(code string) string {
	return urlPrefix + code
}
