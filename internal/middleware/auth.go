package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/onxpoint/internal/metrics"
	"github.com/serroba/onxpoint/internal/token"
	"go.uber.org/zap"
)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(tainted string) error
}

// BearerAuth returns a Huma middleware that rejects requests to operations declaring
// a security requirement unless they carry a valid bearer token.
// Operations without security requirements pass through untouched.
func BearerAuth(api huma.API, verifier TokenVerifier, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op == nil || len(op.Security) == 0 {
			next(ctx)

			return
		}

		tok, ok := bearerToken(ctx.Header("Authorization"))
		if !ok {
			metrics.RecordTokenVerification(metrics.OutcomeRejected)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing bearer token")

			return
		}

		if err := verifier.Verify(tok); err != nil {
			if errors.Is(err, token.ErrKeyUnavailable) {
				metrics.RecordTokenVerification(metrics.OutcomeError)
				logger.Error("token verification unavailable", zap.String("path", op.Path), zap.Error(err))
				_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")

				return
			}

			metrics.RecordTokenVerification(metrics.OutcomeRejected)
			logger.Debug("bearer token rejected",
				zap.String("path", op.Path),
				zap.String("client_ip", clientIP(ctx)),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid bearer token")

			return
		}

		metrics.RecordTokenVerification(metrics.OutcomeSuccess)
		next(ctx)
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "

	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	tok := strings.TrimSpace(header[len(prefix):])

	return tok, tok != ""
}
