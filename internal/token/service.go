// Package token issues and verifies PASETO v4.local session tokens.
//
// Tokens are encrypted and authenticated with one symmetric key. They carry only
// the registered time claims (iat, nbf, exp): a valid token proves that some
// authentication succeeded, not which user performed it.
package token

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/samber/oops"
)

const (
	header = "v4.local."

	// nonce (32) + tag (32); an empty payload still carries both.
	minBodyLen = 64

	keyLen = 32

	// DefaultTTL is the lifetime of issued tokens when none is configured.
	DefaultTTL = time.Hour
)

var (
	// ErrKeyUnavailable is returned by Issue and Verify when no usable key was configured.
	ErrKeyUnavailable = errors.New("token key unavailable")

	// ErrMalformed is returned when the input is not structurally a v4.local token.
	ErrMalformed = errors.New("malformed token")

	// ErrAuthenticationFailed is returned when decryption, integrity or time checks fail.
	ErrAuthenticationFailed = errors.New("token authentication failed")
)

// Service issues and verifies tokens. It is safe for concurrent use.
type Service struct {
	key    paseto.V4SymmetricKey
	keyErr error
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the lifetime of issued tokens.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService builds a Service from key material: either 32 raw bytes or 64 hex characters.
// A missing or invalid key does not fail here; the service refuses every Issue and Verify
// call instead, and Ready reports the problem.
func NewService(keyMaterial string, opts ...Option) *Service {
	s := &Service{
		ttl: DefaultTTL,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.key, s.keyErr = parseKey(keyMaterial)

	return s
}

// Ready returns the key error, if any.
func (s *Service) Ready() error {
	return s.keyErr
}

// Issue returns a fresh token. Each call uses a new random nonce.
func (s *Service) Issue() (string, error) {
	if s.keyErr != nil {
		return "", s.keyErr
	}

	now := s.now()

	t := paseto.NewToken()
	t.SetIssuedAt(now)
	t.SetNotBefore(now)
	t.SetExpiration(now.Add(s.ttl))

	return t.V4Encrypt(s.key, nil), nil
}

// Verify checks a token string. It has no side effects.
func (s *Service) Verify(tainted string) error {
	if s.keyErr != nil {
		return s.keyErr
	}

	if err := checkStructure(tainted); err != nil {
		return err
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ValidAt(s.now()))

	if _, err := parser.ParseV4Local(s.key, tainted, nil); err != nil {
		return oops.Code("TOKEN_AUTHENTICATION_FAILED").Wrap(errors.Join(ErrAuthenticationFailed, err))
	}

	return nil
}

// GenerateKey returns new key material in hex form, suitable for configuration.
func GenerateKey() string {
	return paseto.NewV4SymmetricKey().ExportHex()
}

func parseKey(material string) (paseto.V4SymmetricKey, error) {
	var raw []byte

	switch {
	case material == "":
		return paseto.V4SymmetricKey{}, oops.Code("TOKEN_KEY_MISSING").
			Wrap(errors.Join(ErrKeyUnavailable, errors.New("no key material configured")))
	case len(material) == keyLen:
		raw = []byte(material)
	case len(material) == 2*keyLen:
		decoded, err := hex.DecodeString(material)
		if err != nil {
			return paseto.V4SymmetricKey{}, oops.Code("TOKEN_KEY_INVALID").Wrap(errors.Join(ErrKeyUnavailable, err))
		}

		raw = decoded
	default:
		return paseto.V4SymmetricKey{}, oops.Code("TOKEN_KEY_INVALID").
			With("length", len(material)).
			Wrap(errors.Join(ErrKeyUnavailable, errors.New("key must be 32 bytes or 64 hex characters")))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(raw)
	if err != nil {
		return paseto.V4SymmetricKey{}, oops.Code("TOKEN_KEY_INVALID").Wrap(errors.Join(ErrKeyUnavailable, err))
	}

	return key, nil
}

// checkStructure rejects inputs that cannot be a v4.local token before any crypto runs.
func checkStructure(tainted string) error {
	if !strings.HasPrefix(tainted, header) {
		return ErrMalformed
	}

	parts := strings.Split(tainted[len(header):], ".")
	if len(parts) > 2 {
		return ErrMalformed
	}

	body, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(body) < minBodyLen {
		return ErrMalformed
	}

	if len(parts) == 2 {
		if _, err := base64.RawURLEncoding.DecodeString(parts[1]); err != nil {
			return ErrMalformed
		}
	}

	return nil
}
