package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// staticFiles serves ui/static with long-lived caching through the wrap middleware. Paths that do not name a regular
// file fall through to notFound, which is expected to carry the session so that the page shows the signed-in
// navigation.
func (app *application) staticFiles(wrap func(http.Handler) http.Handler, notFound http.Handler) http.Handler {
	files := wrap(cacheForever(http.FileServer(http.Dir(app.staticDir))))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleanPath := filepath.Clean(r.URL.Path)
		if strings.Contains(cleanPath, "..") {
			notFound.ServeHTTP(w, r)
			return
		}
		if stat, err := os.Stat(filepath.Join(app.staticDir, cleanPath)); err != nil || !stat.Mode().IsRegular() {
			notFound.ServeHTTP(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
