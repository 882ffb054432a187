package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/gymplan/internal/i18n"
)

const (
	languageCookieName   = "language"
	languageCookieMaxAge = 365 * 24 * time.Hour
)

// isRelativePath reports whether path stays on this site. Browsers treat "//host" and "/\host" as protocol-relative
// URLs, so those are rejected along with anything carrying a scheme.
func isRelativePath(path string) bool {
	if !strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return false
	}
	return len(path) == 1 || (path[1] != '/' && path[1] != '\\')
}

// setLanguagePOST remembers the chosen UI language in a cookie and returns to the page the picker was on.
func (app *application) setLanguagePOST(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Language(r.PostFormValue("language"))
	if !i18n.IsSupported(lang) {
		http.Error(w, "Invalid language", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     languageCookieName,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   int(languageCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "language changed", slog.String("language", string(lang)))

	target := r.PostFormValue("redirect")
	if !isRelativePath(target) {
		target = "/"
	}
	redirect(w, r, target)
}
