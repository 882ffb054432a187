package main

import (
	"net/http"
	"strconv"

	"github.com/myrjola/gymplan/internal/workout"
)

type catalogueTemplateData struct {
	BaseTemplateData
	Exercises []workout.CatalogueExercise
}

type catalogueExerciseTemplateData struct {
	BaseTemplateData
	Exercise workout.CatalogueExercise
}

func (app *application) catalogueGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.workoutService.Catalogue(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := catalogueTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Exercises:        exercises,
	}
	app.render(w, r, http.StatusOK, "catalogue", data)
}

func (app *application) catalogueExerciseGET(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		app.notFound(w, r)
		return
	}
	exercise, err := app.workoutService.CatalogueExercise(r.Context(), id)
	if err != nil {
		app.planError(w, r, err)
		return
	}
	data := catalogueExerciseTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Exercise:         exercise,
	}
	app.render(w, r, http.StatusOK, "catalogue-exercise", data)
}
