package contexthelpers

import (
	"context"

	"github.com/myrjola/gymplan/internal/i18n"
)

// value returns the value stored under key or fallback when it is missing or of another type.
func value[T any](ctx context.Context, key contextKey, fallback T) T {
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	return fallback
}

func IsAuthenticated(ctx context.Context) bool {
	return value(ctx, IsAuthenticatedContextKey, false)
}

// AuthenticatedUserID returns the signed-in user's id or 0 when nobody is signed in.
func AuthenticatedUserID(ctx context.Context) int {
	return value(ctx, AuthenticatedUserIDContextKey, 0)
}

func CurrentPath(ctx context.Context) string {
	return value(ctx, CurrentPathContextKey, "")
}

func CSPNonce(ctx context.Context) string {
	return value(ctx, CspNonceContextKey, "")
}

// Language returns the UI language or [i18n.DefaultLanguage] when none was chosen.
func Language(ctx context.Context) i18n.Language {
	return value(ctx, LanguageContextKey, i18n.DefaultLanguage)
}
