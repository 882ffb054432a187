package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/myrjola/gymplan/internal/contexthelpers"
	"github.com/myrjola/gymplan/internal/i18n"
	"github.com/myrjola/gymplan/internal/workout"
)

// formatFloat prints weights without trailing zeros, so 100.0 becomes 100 and 2.50 becomes 2.5.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// templateFuncs returns the functions available to page templates, bound to the request in ctx.
//
// Parsing only needs the function names. Templates are parsed with context.Background and the functions are rebound
// to the request context before execution.
func (app *application) templateFuncs(ctx context.Context) template.FuncMap {
	lang := contexthelpers.Language(ctx)
	nonce := template.HTMLAttr(fmt.Sprintf("nonce=%q", contexthelpers.CSPNonce(ctx))) //nolint:gosec // server generated.
	return template.FuncMap{
		"nonce": func() template.HTMLAttr { return nonce },
		"mdToHTML": func(markdown string) template.HTML {
			return app.renderMarkdownToHTML(ctx, markdown)
		},
		"t": func(key string) string {
			return i18n.Translate(lang, key)
		},
		"tf": func(key string, args ...any) string {
			return i18n.Translatef(lang, key, args...)
		},
		"formatFloat":  formatFloat,
		"variantLabel": workout.VariantLabel,
		"inc":          func(i int) int { return i + 1 },
	}
}

// parsePage parses the base layout together with ui/templates/pages/{pageName}, which has to define "page".
//
// Templates are parsed on every render so that edits show up without restarting the server.
func (app *application) parsePage(pageName string) (*template.Template, error) {
	t, err := template.New(pageName).
		Funcs(app.templateFuncs(context.Background())).
		ParseFS(app.templateFS, "base.gohtml", fmt.Sprintf("pages/%s/*.gohtml", pageName))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageName, err)
	}
	return t, nil
}

func (app *application) renderToBuf(ctx context.Context, pageName string, data any) (*bytes.Buffer, error) {
	t, err := app.parsePage(pageName)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err = t.Funcs(app.templateFuncs(ctx)).ExecuteTemplate(buf, "base", data); err != nil {
		return nil, fmt.Errorf("execute page %s: %w", pageName, err)
	}
	return buf, nil
}

// render writes the page with the given status. The page is rendered to a buffer first so that a failing template
// still results in a clean error page.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, pageName string, data any) {
	buf, err := app.renderToBuf(r.Context(), pageName, data)
	if err != nil {
		if pageName == "error" {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
