package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/workout"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.render(w, r, http.StatusInternalServerError, "error", newBaseTemplateData(r))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

// planError responds to a failed plan operation. Missing days, exercises, and series are 404 Not Found. Everything
// else is a server error; user input errors are handled by the pages that re-render their forms.
func (app *application) planError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, workout.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if errors.Is(err, workout.ErrNoIdentity) {
		redirect(w, r, "/")
		return
	}
	app.serverError(w, r, err)
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// parseDayParam parses the "day" path parameter holding the 0-based position of the day in the plan.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseDayParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	dayIndex, err := strconv.Atoi(r.PathValue("day"))
	if err != nil || dayIndex < 0 {
		app.notFound(w, r)
		return 0, false
	}
	return dayIndex, true
}

// parseExerciseIDParam parses the "exerciseID" path parameter.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseExerciseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	exerciseID, err := uuid.Parse(r.PathValue("exerciseID"))
	if err != nil {
		app.notFound(w, r)
		return uuid.Nil, false
	}
	return exerciseID, true
}

// parseSeriesParam parses the 0-based "series" path parameter.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseSeriesParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	series, err := strconv.Atoi(r.PathValue("series"))
	if err != nil || series < 0 {
		app.notFound(w, r)
		return 0, false
	}
	return series, true
}

// parseEditorParam maps the "editor" path parameter to the plan mode it edits.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseEditorParam(w http.ResponseWriter, r *http.Request) (workout.Mode, bool) {
	switch editor := r.PathValue("editor"); editor {
	case "creator":
		return workout.ModeCreator, true
	case "plan":
		return workout.ModeSaved, true
	default:
		app.notFound(w, r)
		return "", false
	}
}

// openStore opens the plan store of the signed-in user. On failure, responds automatically.
func (app *application) openStore(w http.ResponseWriter, r *http.Request) (*workout.Store, bool) {
	store, err := app.workoutService.Open(r.Context())
	if err != nil {
		app.planError(w, r, err)
		return nil, false
	}
	return store, true
}
