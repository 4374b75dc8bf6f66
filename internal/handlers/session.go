package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/onxpoint/internal/identity"
	"go.uber.org/zap"
)

// Authenticator exchanges a username and password for a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// SessionHandler issues session tokens.
type SessionHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(auth Authenticator, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{auth: auth, logger: logger}
}

func (h *SessionHandler) CreateSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	tok, err := h.auth.Authenticate(ctx, req.Body.Username, req.Body.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, huma.Error401Unauthorized("invalid username or password")
		}

		h.logger.Error("authentication failed", zap.String("username", req.Body.Username), zap.Error(err))

		return nil, huma.Error500InternalServerError("authentication failed")
	}

	resp := &CreateSessionResponse{}
	resp.Body.Status = "OK"
	resp.Body.Token = tok

	return resp, nil
}
