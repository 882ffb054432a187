package main

import (
	"net/http"
	"strconv"

	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/workout"
)

// dayView is a day of a plan together with its position used in URLs.
type dayView struct {
	Index int
	// Number is the label of the day shown to the user.
	Number int
	Day    workout.Day
}

func toDayViews(plan workout.Plan) []dayView {
	days := make([]dayView, len(plan))
	for i, day := range plan {
		days[i] = dayView{Index: i, Number: day.Day, Day: day}
	}
	return days
}

type creatorTemplateData struct {
	BaseTemplateData
	Days []dayView
	// DayCount is the value of the day count input.
	DayCount string
	MinDays  int
	MaxDays  int
	// Error is the translation key of the message explaining why the last submission was rejected.
	Error string
}

func (app *application) renderCreator(
	w http.ResponseWriter,
	r *http.Request,
	store *workout.Store,
	status int,
	dayCount string,
	errKey string,
) {
	draft := store.Draft()
	if dayCount == "" && len(draft) > 0 {
		dayCount = strconv.Itoa(len(draft))
	}
	data := creatorTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Days:             toDayViews(draft),
		DayCount:         dayCount,
		MinDays:          workout.MinDays,
		MaxDays:          workout.MaxDays,
		Error:            errKey,
	}
	app.render(w, r, status, "creator", data)
}

func (app *application) creatorGET(w http.ResponseWriter, r *http.Request) {
	store, ok := app.openStore(w, r)
	if !ok {
		return
	}
	app.renderCreator(w, r, store, http.StatusOK, "", "")
}

// creatorDaysPOST replaces the draft with the submitted number of empty days.
func (app *application) creatorDaysPOST(w http.ResponseWriter, r *http.Request) {
	store, ok := app.openStore(w, r)
	if !ok {
		return
	}
	raw := r.PostFormValue("days")
	n, err := strconv.Atoi(raw)
	if err != nil {
		app.renderCreator(w, r, store, http.StatusUnprocessableEntity, raw, "validation.days")
		return
	}
	if _, err = store.SetDayCount(n); err != nil {
		if errors.Is(err, workout.ErrInvalidRange) {
			app.renderCreator(w, r, store, http.StatusUnprocessableEntity, raw, "validation.days")
			return
		}
		app.planError(w, r, err)
		return
	}
	redirect(w, r, "/creator")
}

// creatorCommitPOST saves the draft as the new plan and shows it.
func (app *application) creatorCommitPOST(w http.ResponseWriter, r *http.Request) {
	store, ok := app.openStore(w, r)
	if !ok {
		return
	}
	if _, err := store.CommitDraft(); err != nil {
		if errors.Is(err, workout.ErrEmptyDraft) {
			app.renderCreator(w, r, store, http.StatusUnprocessableEntity, "", "validation.emptyDraft")
			return
		}
		app.planError(w, r, err)
		return
	}
	redirect(w, r, "/plan")
}
