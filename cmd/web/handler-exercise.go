package main

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/workout"
)

// exerciseForm holds the raw values of the exercise form so that rejected input is shown back as typed.
type exerciseForm struct {
	Name     string
	Series   string
	Reps     string
	Increase string
	Weight   string
}

func exerciseFormFrom(exercise workout.Exercise) exerciseForm {
	return exerciseForm{
		Name:     exercise.Name,
		Series:   strconv.Itoa(exercise.Series),
		Reps:     strconv.Itoa(exercise.Reps),
		Increase: formatFloat(exercise.Increase),
		Weight:   formatFloat(exercise.Weight),
	}
}

func parseExerciseForm(r *http.Request) exerciseForm {
	return exerciseForm{
		Name:     r.PostFormValue("name"),
		Series:   r.PostFormValue("series"),
		Reps:     r.PostFormValue("reps"),
		Increase: r.PostFormValue("increase"),
		Weight:   r.PostFormValue("weight"),
	}
}

// input converts the form to store input. Unparsable numbers become values that fail validation of the same field.
func (f exerciseForm) input() workout.ExerciseInput {
	return workout.ExerciseInput{
		Name:     f.Name,
		Series:   parseIntOrZero(f.Series),
		Reps:     parseIntOrZero(f.Reps),
		Increase: parseFloatOrNaN(f.Increase),
		Weight:   parseFloatOrNaN(f.Weight),
	}
}

func parseIntOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloatOrNaN(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

type exerciseFormTemplateData struct {
	BaseTemplateData
	// Title is the translation key of the page heading.
	Title     string
	Action    string
	CancelURL string
	Form      exerciseForm
	// Error is the translation key of the validation message and ErrorField the rejected field.
	Error      string
	ErrorField string
	// Suggestions are catalogue exercise names offered for the name field.
	Suggestions []string
}

// exerciseTarget holds the path parameters addressing a day of the draft or the saved plan.
type exerciseTarget struct {
	mode     workout.Mode
	dayIndex int
	store    *workout.Store
}

func (t exerciseTarget) editorURL() string {
	if t.mode == workout.ModeCreator {
		return "/creator"
	}
	return dayAnchor(t.dayIndex)
}

func (t exerciseTarget) editorPath() string {
	if t.mode == workout.ModeCreator {
		return "creator"
	}
	return "plan"
}

// plan returns the plan the editor works on.
func (t exerciseTarget) plan() workout.Plan {
	if t.mode == workout.ModeCreator {
		return t.store.Draft()
	}
	return t.store.Saved()
}

// parseExerciseTarget parses the path parameters, opens the store, and makes the edited plan the active one. On
// failure, responds automatically.
func (app *application) parseExerciseTarget(w http.ResponseWriter, r *http.Request) (exerciseTarget, bool) {
	var (
		target exerciseTarget
		ok     bool
	)
	if target.mode, ok = app.parseEditorParam(w, r); !ok {
		return target, false
	}
	if target.dayIndex, ok = app.parseDayParam(w, r); !ok {
		return target, false
	}
	if target.store, ok = app.openStore(w, r); !ok {
		return target, false
	}
	if target.dayIndex >= len(target.plan()) {
		app.notFound(w, r)
		return target, false
	}
	if err := target.store.SetMode(target.mode); err != nil {
		app.planError(w, r, err)
		return target, false
	}
	return target, true
}

func (app *application) renderExerciseForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	data exerciseFormTemplateData,
) {
	catalogue, err := app.workoutService.Catalogue(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data.BaseTemplateData = newBaseTemplateData(r)
	data.Suggestions = make([]string, len(catalogue))
	for i, exercise := range catalogue {
		data.Suggestions[i] = exercise.Name
	}
	app.render(w, r, status, "exercise-form", data)
}

// rejectExercise re-renders the form with the validation message of err or responds with the matching error page.
func (app *application) rejectExercise(
	w http.ResponseWriter,
	r *http.Request,
	data exerciseFormTemplateData,
	err error,
) {
	var validationErr *workout.ValidationError
	if errors.As(err, &validationErr) {
		data.Error = "validation." + validationErr.Field
		data.ErrorField = validationErr.Field
		app.renderExerciseForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	app.planError(w, r, err)
}

func newExerciseFormData(target exerciseTarget, form exerciseForm) exerciseFormTemplateData {
	return exerciseFormTemplateData{
		BaseTemplateData: BaseTemplateData{},
		Title:            "exercise.add.title",
		Action:           fmt.Sprintf("/%s/days/%d/exercises/new", target.editorPath(), target.dayIndex),
		CancelURL:        target.editorURL(),
		Form:             form,
		Error:            "",
		ErrorField:       "",
		Suggestions:      nil,
	}
}

func editExerciseFormData(target exerciseTarget, id uuid.UUID, form exerciseForm) exerciseFormTemplateData {
	data := newExerciseFormData(target, form)
	data.Title = "exercise.edit.title"
	data.Action = fmt.Sprintf("/%s/days/%d/exercises/%s/edit", target.editorPath(), target.dayIndex, id)
	return data
}

func (app *application) exerciseNewGET(w http.ResponseWriter, r *http.Request) {
	target, ok := app.parseExerciseTarget(w, r)
	if !ok {
		return
	}
	app.renderExerciseForm(w, r, http.StatusOK, newExerciseFormData(target, exerciseForm{}))
}

func (app *application) exerciseNewPOST(w http.ResponseWriter, r *http.Request) {
	target, ok := app.parseExerciseTarget(w, r)
	if !ok {
		return
	}
	form := parseExerciseForm(r)
	if _, err := target.store.AddExercise(target.dayIndex, form.input()); err != nil {
		app.rejectExercise(w, r, newExerciseFormData(target, form), err)
		return
	}
	redirect(w, r, target.editorURL())
}

func (app *application) exerciseEditGET(w http.ResponseWriter, r *http.Request) {
	target, ok := app.parseExerciseTarget(w, r)
	if !ok {
		return
	}
	exerciseID, ok := app.parseExerciseIDParam(w, r)
	if !ok {
		return
	}
	for _, exercise := range target.plan()[target.dayIndex].Exercises {
		if exercise.ID == exerciseID {
			app.renderExerciseForm(w, r, http.StatusOK,
				editExerciseFormData(target, exerciseID, exerciseFormFrom(exercise)))
			return
		}
	}
	app.notFound(w, r)
}

func (app *application) exerciseEditPOST(w http.ResponseWriter, r *http.Request) {
	target, ok := app.parseExerciseTarget(w, r)
	if !ok {
		return
	}
	exerciseID, ok := app.parseExerciseIDParam(w, r)
	if !ok {
		return
	}
	form := parseExerciseForm(r)
	if _, err := target.store.EditExercise(target.dayIndex, exerciseID, form.input()); err != nil {
		app.rejectExercise(w, r, editExerciseFormData(target, exerciseID, form), err)
		return
	}
	redirect(w, r, target.editorURL())
}

// exerciseDeletePOST removes an exercise. Deleting an exercise that is already gone is not an error.
func (app *application) exerciseDeletePOST(w http.ResponseWriter, r *http.Request) {
	target, ok := app.parseExerciseTarget(w, r)
	if !ok {
		return
	}
	exerciseID, ok := app.parseExerciseIDParam(w, r)
	if !ok {
		return
	}
	if err := target.store.DeleteExercise(target.dayIndex, exerciseID); err != nil && !errors.Is(err, workout.ErrNotFound) {
		app.planError(w, r, err)
		return
	}
	redirect(w, r, target.editorURL())
}
