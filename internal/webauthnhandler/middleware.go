package webauthnhandler

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/myrjola/gymplan/internal/contexthelpers"
	"github.com/myrjola/gymplan/internal/logging"
)

// AuthenticateMiddleware puts the signed-in user's id into the request context. Sessions of users that no longer
// exist stay anonymous.
func (h *WebAuthnHandler) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		webAuthnID := h.sessionManager.GetBytes(ctx, string(userIDSessionKey))

		// User has not yet authenticated.
		if webAuthnID == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := h.getUserID(ctx, webAuthnID)
		switch {
		case errors.Is(err, sql.ErrNoRows): // Do not authenticate if user does not exist.
		case err != nil:
			h.logger.LogAttrs(ctx, slog.LevelError, "unable to fetch user", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		default:
			r = contexthelpers.AuthenticateContext(r, userID)
		}

		// Add session information to logging context.
		token := h.sessionManager.Token(ctx)
		// Hash token with sha256 to avoid leaking it in logs.
		tokenHash := sha256.Sum256([]byte(token))
		ctx = logging.WithAttrs(r.Context(),
			slog.String("session_hash", hex.EncodeToString(tokenHash[:])),
			slog.Int("user_id", userID),
		)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}
