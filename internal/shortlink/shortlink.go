// Package shortlink maps short codes to long URLs in the key-value store.
package shortlink

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/samber/oops"
	"github.com/serroba/onxpoint/internal/metrics"
	"github.com/serroba/onxpoint/internal/store"
)

// ErrNotFound is returned by Resolve when no URL is stored for the code.
var ErrNotFound = errors.New("short link not found")

// ErrInvalidCode is returned when a code cannot be used as a key suffix.
var ErrInvalidCode = errors.New("invalid short code")

// ErrBaseURLMissing is returned when public URLs are requested without a configured base URL.
var ErrBaseURLMissing = errors.New("base url not configured")

// Code represents a short URL code.
type Code string

// CodeGenerator generates short codes.
type CodeGenerator func() string

// Store persists short links under url/<code>.
type Store struct {
	kv           store.KeyValueStore
	generateCode CodeGenerator
}

// NewStore creates a new short link store.
func NewStore(kv store.KeyValueStore, generator CodeGenerator) *Store {
	return &Store{
		kv:           kv,
		generateCode: generator,
	}
}

// Create stores longURL under code, overwriting any previous value.
// An empty code is replaced by a generated one; the code actually used is returned.
func (s *Store) Create(ctx context.Context, code Code, longURL string) (Code, error) {
	if code == "" {
		code = Code(s.generateCode())
	}

	if err := ValidateCode(code); err != nil {
		return "", err
	}

	err := s.kv.WithConn(ctx, func(c store.Conn) error {
		return c.Set(ctx, store.URLKey(string(code)), longURL)
	})
	metrics.RecordStoreWrite("shortlink", err)

	if err != nil {
		return "", oops.Code("SHORTLINK_CREATE_FAILED").With("code", string(code)).Wrap(err)
	}

	return code, nil
}

// Resolve returns the long URL for code, or ErrNotFound.
// A stored empty string is returned as is.
func (s *Store) Resolve(ctx context.Context, code Code) (string, error) {
	var longURL string

	err := s.kv.WithConn(ctx, func(c store.Conn) error {
		var err error
		longURL, err = c.Get(ctx, store.URLKey(string(code)))

		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}

		return "", oops.Code("SHORTLINK_RESOLVE_FAILED").With("code", string(code)).Wrap(err)
	}

	return longURL, nil
}

// ValidateCode rejects codes that would escape the url/ namespace or break the public path.
func ValidateCode(code Code) error {
	if code == "" || url.PathEscape(string(code)) != string(code) {
		return oops.Code("SHORTLINK_INVALID_CODE").With("code", string(code)).Wrap(ErrInvalidCode)
	}

	return nil
}

// PublicURL formats the public short URL for code.
// It fails with ErrBaseURLMissing when no base URL is configured.
func PublicURL(baseURL string, code Code) (string, error) {
	if baseURL == "" {
		return "", ErrBaseURLMissing
	}

	return strings.TrimSuffix(baseURL, "/") + "/s/" + string(code), nil
}
