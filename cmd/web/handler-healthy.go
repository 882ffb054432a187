package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/myrjola/gymplan/internal/errors"
)

const healthCheckTimeout = time.Second

// healthy reports whether the database answers. Load balancers and the end-to-end tests poll it.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := app.workoutService.Ping(ctx); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "health check failed", errors.SlogError(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// testTimeout holds the request for sleep_ms milliseconds so that the request timeout can be exercised.
func (app *application) testTimeout(w http.ResponseWriter, r *http.Request) {
	sleep := 0
	if raw := r.URL.Query().Get("sleep_ms"); raw != "" {
		var err error
		if sleep, err = strconv.Atoi(raw); err != nil || sleep < 0 {
			http.Error(w, "Invalid sleep_ms parameter", http.StatusBadRequest)
			return
		}
	}

	timer := time.NewTimer(time.Duration(sleep) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-r.Context().Done():
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"completed","slept_ms":` + strconv.Itoa(sleep) + `}`))
}
