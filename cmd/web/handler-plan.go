package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/workout"
)

type saveStatusView string

const (
	saveStatusNone    saveStatusView = ""
	saveStatusSaved   saveStatusView = "saved"
	saveStatusPending saveStatusView = "pending"
	saveStatusFailed  saveStatusView = "failed"
)

func toSaveStatusView(status workout.SaveStatus) saveStatusView {
	switch {
	case status.Pending:
		return saveStatusPending
	case status.Err != nil:
		return saveStatusFailed
	case status.Revision > 0:
		return saveStatusSaved
	default:
		return saveStatusNone
	}
}

type planTemplateData struct {
	BaseTemplateData
	Days       []dayView
	MixEnabled bool
	SaveStatus saveStatusView
	// Error is the translation key of the message explaining why the last submission was rejected.
	Error string
}

func (app *application) renderPlan(
	w http.ResponseWriter,
	r *http.Request,
	store *workout.Store,
	status int,
	errKey string,
) {
	data := planTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Days:             toDayViews(store.Saved()),
		MixEnabled:       store.Config().MixEnabled,
		SaveStatus:       toSaveStatusView(app.workoutService.SaveStatus(r.Context())),
		Error:            errKey,
	}
	app.render(w, r, status, "plan", data)
}

// planRejected re-renders the plan with the validation message of err or responds with the matching error page.
func (app *application) planRejected(w http.ResponseWriter, r *http.Request, store *workout.Store, err error) {
	var validationErr *workout.ValidationError
	if errors.As(err, &validationErr) {
		app.renderPlan(w, r, store, http.StatusUnprocessableEntity, "validation."+validationErr.Field)
		return
	}
	app.planError(w, r, err)
}

func dayAnchor(dayIndex int) string {
	return fmt.Sprintf("/plan#day-%d", dayIndex)
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	store, ok := app.openStore(w, r)
	if !ok {
		return
	}
	app.renderPlan(w, r, store, http.StatusOK, "")
}

// planSelectionPOST picks the base set or a drop-one variant of a day.
func (app *application) planSelectionPOST(w http.ResponseWriter, r *http.Request) {
	dayIndex, ok := app.parseDayParam(w, r)
	if !ok {
		return
	}
	store, ok := app.openStore(w, r)
	if !ok {
		return
	}
	variantIndex, err := strconv.Atoi(r.PostFormValue("set"))
	if err != nil {
		app.renderPlan(w, r, store, http.StatusUnprocessableEntity, "validation."+workout.FieldSelectedSet)
		return
	}
	if err = store.SetSelectedSet(dayIndex, variantIndex); err != nil {
		app.planRejected(w, r, store, err)
		return
	}
	redirect(w, r, dayAnchor(dayIndex))
}

// planConfigPOST toggles set mixing.
func (app *application) planConfigPOST(w http.ResponseWriter, r *http.Request) {
	store, ok := app.openStore(w, r)
	if !ok {
		return
	}
	enabled, err := strconv.ParseBool(r.PostFormValue("mixEnabled"))
	if err != nil {
		http.Error(w, "invalid mixEnabled", http.StatusUnprocessableEntity)
		return
	}
	if err = store.SetMixEnabled(enabled); err != nil {
		app.planError(w, r, err)
		return
	}
	redirect(w, r, "/plan")
}

// seriesTarget holds the path parameters addressing a single series of an exercise in the saved plan.
type seriesTarget struct {
	dayIndex   int
	exerciseID uuid.UUID
	series     int
	store      *workout.Store
}

// parseSeriesTarget parses the path parameters and opens the store. On failure, responds automatically.
func (app *application) parseSeriesTarget(w http.ResponseWriter, r *http.Request) (seriesTarget, bool) {
	var (
		target seriesTarget
		ok     bool
	)
	if target.dayIndex, ok = app.parseDayParam(w, r); !ok {
		return target, false
	}
	if target.exerciseID, ok = app.parseExerciseIDParam(w, r); !ok {
		return target, false
	}
	if target.series, ok = app.parseSeriesParam(w, r); !ok {
		return target, false
	}
	if target.store, ok = app.openStore(w, r); !ok {
		return target, false
	}
	return target, true
}

// seriesWeightPOST sets the weight of a single series.
func (app *application) seriesWeightPOST(w http.ResponseWriter, r *http.Request) {
	target, ok := app.parseSeriesTarget(w, r)
	if !ok {
		return
	}
	weight, err := strconv.ParseFloat(r.PostFormValue("weight"), 64)
	if err != nil {
		app.renderPlan(w, r, target.store, http.StatusUnprocessableEntity, "validation."+workout.FieldWeight)
		return
	}
	if _, err = target.store.SetSeriesWeight(target.dayIndex, target.exerciseID, target.series, weight); err != nil {
		app.planRejected(w, r, target.store, err)
		return
	}
	redirect(w, r, dayAnchor(target.dayIndex))
}

func (app *application) seriesIncreasePOST(w http.ResponseWriter, r *http.Request) {
	app.bumpSeriesWeight(w, r, workout.Increase)
}

func (app *application) seriesDecreasePOST(w http.ResponseWriter, r *http.Request) {
	app.bumpSeriesWeight(w, r, workout.Decrease)
}

// bumpSeriesWeight steps the weight of a single series by the exercise's increase.
func (app *application) bumpSeriesWeight(w http.ResponseWriter, r *http.Request, dir workout.Direction) {
	target, ok := app.parseSeriesTarget(w, r)
	if !ok {
		return
	}
	if _, err := target.store.BumpSeriesWeight(target.dayIndex, target.exerciseID, target.series, dir); err != nil {
		app.planRejected(w, r, target.store, err)
		return
	}
	redirect(w, r, dayAnchor(target.dayIndex))
}
