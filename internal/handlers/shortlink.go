package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/onxpoint/internal/shortlink"
	"go.uber.org/zap"
)

// LinkStore creates and resolves short links.
type LinkStore interface {
	Create(ctx context.Context, code shortlink.Code, longURL string) (shortlink.Code, error)
	Resolve(ctx context.Context, code shortlink.Code) (string, error)
}

// ShortLinkHandler handles short link operations.
type ShortLinkHandler struct {
	store   LinkStore
	baseURL string
	logger  *zap.Logger
}

// NewShortLinkHandler creates a new short link handler.
func NewShortLinkHandler(store LinkStore, baseURL string, logger *zap.Logger) *ShortLinkHandler {
	return &ShortLinkHandler{
		store:   store,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (h *ShortLinkHandler) CreateShortLink(
	ctx context.Context,
	req *CreateShortLinkRequest,
) (*CreateShortLinkResponse, error) {
	code, err := h.store.Create(ctx, shortlink.Code(req.Body.Short), req.Body.URL)
	if err != nil {
		if errors.Is(err, shortlink.ErrInvalidCode) {
			return nil, huma.Error400BadRequest("invalid short code")
		}

		h.logger.Error("failed to save short link", zap.String("short", req.Body.Short), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	publicURL, err := shortlink.PublicURL(h.baseURL, code)
	if err != nil {
		h.logger.Error("cannot format short url", zap.String("short", string(code)), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	resp := &CreateShortLinkResponse{}
	resp.Body.Status = "ok"
	resp.Body.ShortURL = publicURL

	return resp, nil
}

func (h *ShortLinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	longURL, err := h.store.Resolve(ctx, shortlink.Code(req.Short))
	if err != nil {
		if errors.Is(err, shortlink.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve short link", zap.String("short", req.Short), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return &RedirectResponse{
		Status:   http.StatusPermanentRedirect,
		Location: longURL,
	}, nil
}
