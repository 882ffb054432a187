package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newCapturingApp(logBuffer *bytes.Buffer) *application {
	return &application{ //nolint:exhaustruct // this is a test
		logger: slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{ //nolint:exhaustruct // test only
			Level: slog.LevelDebug,
		})),
	}
}

func Test_application_cspViolation(t *testing.T) {
	var logBuffer bytes.Buffer
	app := newCapturingApp(&logBuffer)

	tests := []struct {
		name               string
		body               string
		contentType        string
		expectedStatusCode int
		logContains        []string
	}{
		{
			name: "Valid CSP report",
			body: `{"csp-report": {"document-uri": "https://example.com/plan", ` +
				`"violated-directive": "script-src", "effective-directive": "script-src", ` +
				`"blocked-uri": "https://evil.com/script.js", "line-number": 42, ` +
				`"source-file": "https://example.com/plan", "disposition": "enforce"}}`,
			contentType:        "application/csp-report",
			expectedStatusCode: http.StatusNoContent,
			logContains: []string{"CSP violation detected", "script-src",
				"https://evil.com/script.js", "https://example.com/plan", "line_number=42"},
		},
		{
			name:               "Minimal fields with JSON content type",
			body:               `{"csp-report": {"violated-directive": "img-src", "blocked-uri": "data:image/png"}}`,
			contentType:        "application/json",
			expectedStatusCode: http.StatusNoContent,
			logContains:        []string{"CSP violation detected", "img-src", "data:image/png"},
		},
		{
			name:               "Invalid JSON",
			body:               `{"invalid json structure`,
			contentType:        "application/csp-report",
			expectedStatusCode: http.StatusBadRequest,
			logContains:        []string{"parse CSP report", "application/csp-report"},
		},
		{
			name:               "Empty body",
			body:               "",
			contentType:        "application/csp-report",
			expectedStatusCode: http.StatusBadRequest,
			logContains:        []string{"parse CSP report"},
		},
		{
			name:               "Oversized report is truncated and rejected",
			body:               `{"csp-report": {"script-sample": "` + strings.Repeat("a", maxReportSize) + `"}}`,
			contentType:        "application/csp-report",
			expectedStatusCode: http.StatusBadRequest,
			logContains:        []string{"parse CSP report"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logBuffer.Reset()

			req := httptest.NewRequest(http.MethodPost, "/api/reports/csp", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			req.Header.Set("User-Agent", "Mozilla/5.0 (Test Browser)")
			w := httptest.NewRecorder()

			app.cspViolation(w, req)

			if w.Code != tt.expectedStatusCode {
				t.Errorf("Expected status code %d, got %d", tt.expectedStatusCode, w.Code)
			}
			if tt.expectedStatusCode == http.StatusNoContent && w.Body.Len() != 0 {
				t.Errorf("Expected empty response body for 204, got: %s", w.Body.String())
			}

			logOutput := logBuffer.String()
			for _, expectedContent := range tt.logContains {
				if !strings.Contains(logOutput, expectedContent) {
					t.Errorf("Expected log to contain '%s', but log output was: %s", expectedContent, logOutput)
				}
			}
		})
	}
}

func Test_application_cspViolation_readError(t *testing.T) {
	var logBuffer bytes.Buffer
	app := newCapturingApp(&logBuffer)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/csp", &errorReader{})
	req.Header.Set("Content-Type", "application/csp-report")
	w := httptest.NewRecorder()

	app.cspViolation(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d for read error, got %d", http.StatusBadRequest, w.Code)
	}
	if logOutput := logBuffer.String(); !strings.Contains(logOutput, "read CSP report") {
		t.Errorf("Expected log to contain read error message, got: %s", logOutput)
	}
}

// errorReader is a helper type that always returns an error when Read is called.
type errorReader struct{}

func (e *errorReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
