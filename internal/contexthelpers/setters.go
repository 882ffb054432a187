package contexthelpers

import (
	"context"
	"net/http"

	"github.com/myrjola/gymplan/internal/i18n"
)

func withValue(r *http.Request, key contextKey, v any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, v))
}

func AuthenticateContext(r *http.Request, userID int) *http.Request {
	return r.WithContext(WithUserID(r.Context(), userID))
}

// WithUserID marks ctx as belonging to the signed-in user. Outside HTTP handlers, such as in tests, it stands in for
// AuthenticateContext.
func WithUserID(ctx context.Context, userID int) context.Context {
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	return context.WithValue(ctx, AuthenticatedUserIDContextKey, userID)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	return withValue(r, CurrentPathContextKey, currentPath)
}

func SetCSPNonce(r *http.Request, cspNonce string) *http.Request {
	return withValue(r, CspNonceContextKey, cspNonce)
}

func SetLanguage(r *http.Request, language i18n.Language) *http.Request {
	return withValue(r, LanguageContextKey, language)
}
