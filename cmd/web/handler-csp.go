package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

const (
	// cspReportPath receives the reports of the report-uri directive.
	cspReportPath = "/api/reports/csp"
	// maxReportSize limits the body of violation reports.
	maxReportSize = 64 * 1024
)

// cspViolationReport is the legacy report-uri payload sent by browsers.
type cspViolationReport struct {
	CSPReport struct {
		DocumentURI        string `json:"document-uri"`
		ViolatedDirective  string `json:"violated-directive"`
		EffectiveDirective string `json:"effective-directive"`
		BlockedURI         string `json:"blocked-uri"`
		SourceFile         string `json:"source-file"`
		LineNumber         int    `json:"line-number"`
		Disposition        string `json:"disposition"`
	} `json:"csp-report"`
}

// cspViolation logs Content-Security-Policy violations reported by browsers.
func (app *application) cspViolation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxReportSize))
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "read CSP report", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var report cspViolationReport
	if err = json.Unmarshal(body, &report); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "parse CSP report",
			slog.Any("error", err), slog.String("content_type", r.Header.Get("Content-Type")))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	csp := report.CSPReport
	app.logger.LogAttrs(ctx, slog.LevelWarn, "CSP violation detected",
		slog.String("document_uri", csp.DocumentURI),
		slog.String("violated_directive", csp.ViolatedDirective),
		slog.String("effective_directive", csp.EffectiveDirective),
		slog.String("blocked_uri", csp.BlockedURI),
		slog.String("source_file", csp.SourceFile),
		slog.Int("line_number", csp.LineNumber),
		slog.String("disposition", csp.Disposition),
		slog.String("user_agent", r.Header.Get("User-Agent")))

	w.WriteHeader(http.StatusNoContent)
}
