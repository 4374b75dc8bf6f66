// Package review persists submitted reviews and their enumeration index.
package review

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/serroba/onxpoint/internal/metrics"
	"github.com/serroba/onxpoint/internal/store"
)

// ErrNotFound is returned by Get when no record exists for the id.
var ErrNotFound = errors.New("review not found")

// Record is a submitted review. It is written once and never updated here.
type Record struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Text     string    `json:"review"`
	Schedule string    `json:"schedule"`
	PostURL  string    `json:"post_url"`
}

// New builds a record with a fresh id and an empty post URL.
func New(url, text, schedule string) *Record {
	return &Record{
		ID:       uuid.New(),
		URL:      url,
		Text:     text,
		Schedule: schedule,
	}
}

// Key returns the store key of the record.
func (r *Record) Key() string {
	return store.ReviewKey(r.ID.String())
}

// Store writes records under reviews/<id> and indexes their keys in the reviews set.
type Store struct {
	kv store.KeyValueStore
}

// NewStore creates a new review store.
func NewStore(kv store.KeyValueStore) *Store {
	return &Store{kv: kv}
}

// Save writes the record, then adds its key to the index.
//
// The two writes are independent. If the index insert fails the record stays
// written and unindexed; nothing is rolled back.
func (s *Store) Save(ctx context.Context, r *Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return oops.Code("REVIEW_ENCODE_FAILED").Wrap(err)
	}

	key := r.Key()

	err = s.kv.WithConn(ctx, func(c store.Conn) error {
		if err := c.Set(ctx, key, string(payload)); err != nil {
			return oops.Code("REVIEW_SAVE_FAILED").
				With("key", key).
				With("step", "record").
				Wrap(err)
		}

		if err := c.AddToSet(ctx, store.ReviewIndexKey, key); err != nil {
			return oops.Code("REVIEW_SAVE_FAILED").
				With("key", key).
				With("step", "index").
				Wrap(err)
		}

		return nil
	})
	metrics.RecordStoreWrite("review", err)

	return err
}

// Get reads and decodes the record with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	var raw string

	err := s.kv.WithConn(ctx, func(c store.Conn) error {
		var err error
		raw, err = c.Get(ctx, store.ReviewKey(id.String()))

		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, oops.Code("REVIEW_GET_FAILED").With("id", id.String()).Wrap(err)
	}

	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, oops.Code("REVIEW_DECODE_FAILED").
			With("id", id.String()).
			Wrap(errors.Join(store.ErrMalformed, err))
	}

	return &r, nil
}
