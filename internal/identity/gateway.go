// Package identity checks username/password pairs against stored hashes and
// issues session tokens on success.
package identity

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"github.com/serroba/onxpoint/internal/credential"
	"github.com/serroba/onxpoint/internal/metrics"
	"github.com/serroba/onxpoint/internal/store"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	Issue() (string, error)
}

// Gateway authenticates users against hashes stored under auth/<username>.
type Gateway struct {
	store  store.KeyValueStore
	hasher credential.Hasher
	tokens TokenIssuer
	logger *zap.Logger

	// dummyHash is verified when the user is unknown so both rejection paths cost the same.
	dummyHash string
}

// NewGateway creates a new identity gateway.
func NewGateway(
	kv store.KeyValueStore,
	hasher credential.Hasher,
	tokens TokenIssuer,
	logger *zap.Logger,
) (*Gateway, error) {
	dummy, err := hasher.Hash("dummy-password-never-stored")
	if err != nil {
		return nil, err
	}

	return &Gateway{
		store:     kv,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Authenticate reads the stored hash, verifies password against it and issues a token.
// Store failures are returned as they are, so callers can tell them apart from
// ErrInvalidCredentials.
func (g *Gateway) Authenticate(ctx context.Context, username, password string) (string, error) {
	var storedHash string

	err := g.store.WithConn(ctx, func(c store.Conn) error {
		var err error
		storedHash, err = c.Get(ctx, store.AuthKey(username))

		return err
	})

	userExists := true

	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			metrics.RecordAuthAttempt(metrics.OutcomeError)

			return "", oops.Code("AUTH_LOOKUP_FAILED").
				With("operation", "get credential").
				Wrap(err)
		}

		userExists = false
		storedHash = g.dummyHash
	}

	valid, err := g.hasher.Verify(password, storedHash)
	if err != nil {
		metrics.RecordAuthAttempt(metrics.OutcomeError)
		g.logger.Error("stored credential hash is malformed", zap.String("username", username), zap.Error(err))

		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(errors.Join(store.ErrMalformed, err))
	}

	if !userExists || !valid {
		metrics.RecordAuthAttempt(metrics.OutcomeRejected)
		g.logger.Debug("authentication rejected", zap.String("username", username))

		return "", ErrInvalidCredentials
	}

	tok, err := g.tokens.Issue()
	if err != nil {
		metrics.RecordAuthAttempt(metrics.OutcomeError)

		return "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue token").
			Wrap(err)
	}

	metrics.RecordAuthAttempt(metrics.OutcomeSuccess)
	g.logger.Debug("authentication succeeded", zap.String("username", username))

	return tok, nil
}

// SetCredential hashes password and stores it as the only credential for username.
func (g *Gateway) SetCredential(ctx context.Context, username, password string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}

	hash, err := g.hasher.Hash(password)
	if err != nil {
		return err
	}

	err = g.store.WithConn(ctx, func(c store.Conn) error {
		return c.Set(ctx, store.AuthKey(username), hash)
	})
	metrics.RecordStoreWrite("credential", err)

	if err != nil {
		return oops.Code("AUTH_CREDENTIAL_WRITE_FAILED").Wrap(err)
	}

	g.logger.Info("credential stored", zap.String("username", username))

	return nil
}
