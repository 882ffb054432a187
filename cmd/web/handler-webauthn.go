package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/workout"
)

func writeJSON(w http.ResponseWriter, out []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

// passkeyRejected logs a failed passkey ceremony. The browser is told only that the request was bad.
func (app *application) passkeyRejected(w http.ResponseWriter, r *http.Request, msg string, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelWarn, msg, errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
}

func (app *application) beginRegistration(w http.ResponseWriter, r *http.Request) {
	out, err := app.webAuthnHandler.BeginRegistration(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "begin registration"))
		return
	}
	writeJSON(w, out)
}

func (app *application) finishRegistration(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.FinishRegistration(r); err != nil {
		app.passkeyRejected(w, r, "registration rejected", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (app *application) beginLogin(w http.ResponseWriter, r *http.Request) {
	out, err := app.webAuthnHandler.BeginLogin(w, r)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "begin login"))
		return
	}
	writeJSON(w, out)
}

func (app *application) finishLogin(w http.ResponseWriter, r *http.Request) {
	if err := app.webAuthnHandler.FinishLogin(r); err != nil {
		app.passkeyRejected(w, r, "login rejected", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// logout tears down the in-memory plans of the user after saving them and signs the user out.
func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := app.workoutService.Close(ctx); err != nil && !errors.Is(err, workout.ErrNoIdentity) {
		// The unsaved plan stays with the persister and is resumed on the next sign-in.
		app.logger.LogAttrs(ctx, slog.LevelError, "plan not saved on sign-out",
			errors.SlogError(errors.Wrap(err, "close plan")))
	}
	if err := app.webAuthnHandler.Logout(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "logout"))
		return
	}
	redirect(w, r, "/")
}
