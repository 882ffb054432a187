package main

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"github.com/myrjola/gymplan/internal/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// newMarkdown returns the renderer of catalogue descriptions. Raw HTML in the source is omitted.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}

// renderMarkdownToHTML renders markdown for direct inclusion in a template. When rendering fails the escaped source
// is returned instead.
func (app *application) renderMarkdownToHTML(ctx context.Context, markdown string) template.HTML {
	var buf bytes.Buffer
	if err := app.markdown.Convert([]byte(markdown), &buf); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "render markdown", errors.SlogError(err))
		return template.HTML(template.HTMLEscapeString(markdown)) //nolint:gosec // escaped above.
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark omits raw HTML by default.
}
