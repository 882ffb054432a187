package main

import (
	"net/http"

	"github.com/myrjola/gymplan/internal/workout"
)

type homeTemplateData struct {
	BaseTemplateData
	// SavedDays is the number of days in the saved plan of a signed-in user.
	SavedDays int
	Mode      workout.Mode
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		SavedDays:        0,
		Mode:             workout.ModeCreator,
	}

	// Only open the plan of authenticated users
	if data.Authenticated {
		store, ok := app.openStore(w, r)
		if !ok {
			return
		}
		data.SavedDays = len(store.Saved())
		data.Mode = store.Mode()
	}

	app.render(w, r, http.StatusOK, "home", data)
}
