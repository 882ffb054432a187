package workout_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/myrjola/gymplan/internal/workout"
)

const testUserID = 1

type recordingPublisher struct {
	mu     sync.Mutex
	events []workout.Event
}

func (p *recordingPublisher) Publish(event workout.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []workout.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events
}

func newEmptyStore(t *testing.T) (*workout.Store, *recordingPublisher) {
	t.Helper()
	publisher := &recordingPublisher{mu: sync.Mutex{}, events: nil}
	store := workout.NewStore(testUserID, workout.Snapshot{Plan: nil, Config: workout.Config{MixEnabled: false}}, 0,
		publisher)
	return store, publisher
}

var squat = workout.ExerciseInput{Name: "Squat", Series: 3, Reps: 5, Increase: 2.5, Weight: 100}

// newSavedStore returns a store with a committed single day plan containing the given exercises.
func newSavedStore(t *testing.T, inputs ...workout.ExerciseInput) (*workout.Store, *recordingPublisher) {
	t.Helper()
	store, publisher := newEmptyStore(t)
	if _, err := store.SetDayCount(1); err != nil {
		t.Fatalf("SetDayCount: %v", err)
	}
	for _, in := range inputs {
		if _, err := store.AddExercise(0, in); err != nil {
			t.Fatalf("AddExercise: %v", err)
		}
	}
	if _, err := store.CommitDraft(); err != nil {
		t.Fatalf("CommitDraft: %v", err)
	}
	return store, publisher
}

func savedExercise(t *testing.T, store *workout.Store, dayIndex, exerciseIndex int) workout.Exercise {
	t.Helper()
	plan := store.Saved()
	if len(plan) <= dayIndex || len(plan[dayIndex].Exercises) <= exerciseIndex {
		t.Fatalf("No exercise %d on day %d", exerciseIndex, dayIndex)
	}
	return plan[dayIndex].Exercises[exerciseIndex]
}

func TestStore_SetDayCount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		n        int
		wantDays []int
		wantErr  error
	}{
		{name: "one day", n: 1, wantDays: []int{1}, wantErr: nil},
		{name: "three days", n: 3, wantDays: []int{1, 2, 3}, wantErr: nil},
		{name: "seven days", n: 7, wantDays: []int{1, 2, 3, 4, 5, 6, 7}, wantErr: nil},
		{name: "zero days", n: 0, wantDays: nil, wantErr: workout.ErrInvalidRange},
		{name: "eight days", n: 8, wantDays: nil, wantErr: workout.ErrInvalidRange},
		{name: "negative", n: -1, wantDays: nil, wantErr: workout.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, publisher := newEmptyStore(t)
			plan, err := store.SetDayCount(tt.n)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetDayCount(%d) error = %v, want %v", tt.n, err, tt.wantErr)
			}
			var gotDays []int
			for _, day := range plan {
				gotDays = append(gotDays, day.Day)
				if len(day.Exercises) != 0 || day.SelectedSetIndex != workout.BaseSet {
					t.Errorf("Day %d is not empty: %+v", day.Day, day)
				}
			}
			if diff := cmp.Diff(tt.wantDays, gotDays); diff != "" {
				t.Errorf("day labels mismatch (-want +got):\n%s", diff)
			}
			if len(publisher.Events()) != 0 {
				t.Errorf("Draft changes must not be published, got %d events", len(publisher.Events()))
			}
		})
	}
}

func TestStore_SetDayCount_InvalidKeepsDraft(t *testing.T) {
	t.Parallel()
	store, _ := newEmptyStore(t)
	if _, err := store.SetDayCount(2); err != nil {
		t.Fatalf("SetDayCount: %v", err)
	}
	if _, err := store.SetDayCount(8); !errors.Is(err, workout.ErrInvalidRange) {
		t.Fatalf("SetDayCount(8) error = %v, want ErrInvalidRange", err)
	}
	if got := len(store.Draft()); got != 2 {
		t.Errorf("Got %d draft days, want 2", got)
	}
}

func TestStore_CommitDraft(t *testing.T) {
	t.Parallel()

	t.Run("empty draft", func(t *testing.T) {
		t.Parallel()
		store, publisher := newEmptyStore(t)
		if _, err := store.CommitDraft(); !errors.Is(err, workout.ErrEmptyDraft) {
			t.Errorf("CommitDraft() error = %v, want ErrEmptyDraft", err)
		}
		if len(publisher.Events()) != 0 {
			t.Errorf("Failed commit published %d events", len(publisher.Events()))
		}
	})

	t.Run("saved plan is independent of draft", func(t *testing.T) {
		t.Parallel()
		store, publisher := newSavedStore(t, squat)
		if got := store.Mode(); got != workout.ModeSaved {
			t.Errorf("Got mode %q after commit, want %q", got, workout.ModeSaved)
		}
		if got := len(publisher.Events()); got != 1 {
			t.Fatalf("Got %d events after commit, want 1", got)
		}

		if err := store.SetMode(workout.ModeCreator); err != nil {
			t.Fatalf("SetMode: %v", err)
		}
		draftID := store.Draft()[0].Exercises[0].ID
		edit := squat
		edit.Name = "Front Squat"
		if _, err := store.EditExercise(0, draftID, edit); err != nil {
			t.Fatalf("EditExercise: %v", err)
		}
		if got := savedExercise(t, store, 0, 0).Name; got != "Squat" {
			t.Errorf("Saved exercise renamed to %q by a draft edit", got)
		}
		if got := len(publisher.Events()); got != 1 {
			t.Errorf("Draft edit published, got %d events", got)
		}
	})

	t.Run("committed plan matches draft", func(t *testing.T) {
		t.Parallel()
		store, publisher := newSavedStore(t, squat)
		opts := cmp.Options{cmpopts.EquateEmpty()}
		if diff := cmp.Diff(store.Draft(), store.Saved(), opts); diff != "" {
			t.Errorf("Saved() mismatch (-draft +saved):\n%s", diff)
		}
		event := publisher.Events()[0]
		if diff := cmp.Diff(store.Saved(), event.Snapshot.Plan, opts); diff != "" {
			t.Errorf("Published snapshot mismatch (-want +got):\n%s", diff)
		}
		if event.UserID != testUserID || event.Revision != 1 {
			t.Errorf("Got event user %d revision %d, want user %d revision 1", event.UserID, event.Revision,
				testUserID)
		}
	})
}

func TestStore_AddExercise(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		dayIndex  int
		in        workout.ExerciseInput
		wantField string
		wantErr   error
	}{
		{name: "valid", dayIndex: 0, in: squat, wantField: "", wantErr: nil},
		{name: "trims name", dayIndex: 0, in: workout.ExerciseInput{
			Name: "  Squat ", Series: 3, Reps: 5, Increase: 2.5, Weight: 100}, wantField: "", wantErr: nil},
		{name: "zero weight", dayIndex: 0, in: workout.ExerciseInput{
			Name: "Squat", Series: 3, Reps: 5, Increase: 2.5, Weight: 0}, wantField: "", wantErr: nil},
		{name: "blank name", dayIndex: 0, in: workout.ExerciseInput{
			Name: "  ", Series: 3, Reps: 5, Increase: 2.5, Weight: 100}, wantField: workout.FieldName, wantErr: nil},
		{name: "zero series", dayIndex: 0, in: workout.ExerciseInput{
			Name: "Squat", Series: 0, Reps: 5, Increase: 2.5, Weight: 100}, wantField: workout.FieldSeries,
			wantErr: nil},
		{name: "zero reps", dayIndex: 0, in: workout.ExerciseInput{
			Name: "Squat", Series: 3, Reps: 0, Increase: 2.5, Weight: 100}, wantField: workout.FieldReps,
			wantErr: nil},
		{name: "zero increase", dayIndex: 0, in: workout.ExerciseInput{
			Name: "Squat", Series: 3, Reps: 5, Increase: 0, Weight: 100}, wantField: workout.FieldIncrease,
			wantErr: nil},
		{name: "NaN increase", dayIndex: 0, in: workout.ExerciseInput{
			Name: "Squat", Series: 3, Reps: 5, Increase: math.NaN(), Weight: 100}, wantField: workout.FieldIncrease,
			wantErr: nil},
		{name: "negative weight", dayIndex: 0, in: workout.ExerciseInput{
			Name: "Squat", Series: 3, Reps: 5, Increase: 2.5, Weight: -1}, wantField: workout.FieldWeight,
			wantErr: nil},
		{name: "first invalid field is reported", dayIndex: 0, in: workout.ExerciseInput{
			Name: "", Series: 0, Reps: 0, Increase: 0, Weight: -1}, wantField: workout.FieldName, wantErr: nil},
		{name: "missing day", dayIndex: 3, in: squat, wantField: "", wantErr: workout.ErrNotFound},
		{name: "missing day is checked before validation", dayIndex: -1, in: workout.ExerciseInput{
			Name: "", Series: 0, Reps: 0, Increase: 0, Weight: 0}, wantField: "", wantErr: workout.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, _ := newEmptyStore(t)
			if _, err := store.SetDayCount(1); err != nil {
				t.Fatalf("SetDayCount: %v", err)
			}
			exercise, err := store.AddExercise(tt.dayIndex, tt.in)

			var validationErr *workout.ValidationError
			switch {
			case tt.wantField != "":
				if !errors.As(err, &validationErr) || validationErr.Field != tt.wantField {
					t.Fatalf("AddExercise() error = %v, want invalid %s", err, tt.wantField)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddExercise() error = %v, want %v", err, tt.wantErr)
				}
			case err != nil:
				t.Fatalf("AddExercise() unexpected error: %v", err)
			}

			draft := store.Draft()
			if err != nil {
				if len(draft[0].Exercises) != 0 {
					t.Errorf("Failed add mutated the draft: %+v", draft[0].Exercises)
				}
				return
			}
			want := workout.Exercise{
				ID:       exercise.ID,
				Name:     "Squat",
				Series:   3,
				Reps:     5,
				Weight:   tt.in.Weight,
				Increase: 2.5,
				Weights:  []float64{tt.in.Weight, tt.in.Weight, tt.in.Weight},
			}
			if exercise.ID == uuid.Nil {
				t.Errorf("Exercise has no identifier")
			}
			if diff := cmp.Diff([]workout.Exercise{want}, draft[0].Exercises); diff != "" {
				t.Errorf("Draft exercises mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_EditExercise(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		series      int
		weight      float64
		wantWeights []float64
	}{
		{name: "same series", series: 3, weight: 110, wantWeights: []float64{110, 102.5, 105}},
		{name: "more series pads with weight", series: 5, weight: 90, wantWeights: []float64{90, 102.5, 105, 90, 90}},
		{name: "fewer series truncates", series: 2, weight: 100, wantWeights: []float64{100, 102.5}},
		{name: "single series", series: 1, weight: 80, wantWeights: []float64{80}},
		{
			name:        "new weight replaces only the first kept series",
			series:      2,
			weight:      120,
			wantWeights: []float64{120, 102.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, publisher := newSavedStore(t, squat)
			id := savedExercise(t, store, 0, 0).ID
			if _, err := store.SetSeriesWeight(0, id, 1, 102.5); err != nil {
				t.Fatalf("SetSeriesWeight: %v", err)
			}
			if _, err := store.SetSeriesWeight(0, id, 2, 105); err != nil {
				t.Fatalf("SetSeriesWeight: %v", err)
			}
			eventsBefore := len(publisher.Events())

			in := workout.ExerciseInput{Name: "Squat", Series: tt.series, Reps: 8, Increase: 5, Weight: tt.weight}
			if _, err := store.EditExercise(0, id, in); err != nil {
				t.Fatalf("EditExercise: %v", err)
			}
			want := workout.Exercise{
				ID:       id,
				Name:     "Squat",
				Series:   tt.series,
				Reps:     8,
				Weight:   tt.weight,
				Increase: 5,
				Weights:  tt.wantWeights,
			}
			if diff := cmp.Diff(want, savedExercise(t, store, 0, 0)); diff != "" {
				t.Errorf("Edited exercise mismatch (-want +got):\n%s", diff)
			}
			if got := len(publisher.Events()); got != eventsBefore+1 {
				t.Errorf("Got %d events after saved plan edit, want %d", got, eventsBefore+1)
			}
		})
	}
}

func TestStore_EditExercise_Errors(t *testing.T) {
	t.Parallel()
	store, publisher := newSavedStore(t, squat)
	id := savedExercise(t, store, 0, 0).ID
	eventsBefore := len(publisher.Events())

	_, err := store.EditExercise(0, uuid.New(), squat)
	if !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("EditExercise(unknown id) error = %v, want ErrNotFound", err)
	}

	invalid := squat
	invalid.Reps = 0
	var validationErr *workout.ValidationError
	if _, err = store.EditExercise(0, id, invalid); !errors.As(err, &validationErr) ||
		validationErr.Field != workout.FieldReps {
		t.Errorf("EditExercise(invalid reps) error = %v, want invalid reps", err)
	}
	if _, err = store.EditExercise(1, id, squat); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("EditExercise(missing day) error = %v, want ErrNotFound", err)
	}
	if got := savedExercise(t, store, 0, 0).Reps; got != squat.Reps {
		t.Errorf("Failed edit changed reps to %d", got)
	}
	if got := len(publisher.Events()); got != eventsBefore {
		t.Errorf("Failed edits published %d events", got-eventsBefore)
	}
}

func TestStore_DeleteExercise(t *testing.T) {
	t.Parallel()
	bench := workout.ExerciseInput{Name: "Bench", Series: 3, Reps: 5, Increase: 2.5, Weight: 60}
	row := workout.ExerciseInput{Name: "Row", Series: 3, Reps: 8, Increase: 2.5, Weight: 50}
	store, publisher := newSavedStore(t, squat, bench, row)
	id := savedExercise(t, store, 0, 1).ID

	if err := store.DeleteExercise(0, id); err != nil {
		t.Fatalf("DeleteExercise: %v", err)
	}
	if diff := cmp.Diff([]string{"Squat", "Row"}, names(store.Saved()[0].Exercises)); diff != "" {
		t.Errorf("Saved exercises mismatch (-want +got):\n%s", diff)
	}
	if got := len(publisher.Events()); got != 2 {
		t.Errorf("Got %d events, want commit and delete", got)
	}
	if err := store.DeleteExercise(0, id); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Second DeleteExercise() error = %v, want ErrNotFound", err)
	}
}

func TestStore_SetSeriesWeight(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		series      int
		weight      float64
		wantWeight  float64
		wantWeights []float64
		wantErr     error
	}{
		{name: "first series updates base weight", series: 0, weight: 105,
			wantWeight: 105, wantWeights: []float64{105, 100, 100}, wantErr: nil},
		{name: "later series keeps base weight", series: 2, weight: 95,
			wantWeight: 100, wantWeights: []float64{100, 100, 95}, wantErr: nil},
		{name: "rounds to two decimals", series: 1, weight: 101.255555,
			wantWeight: 100, wantWeights: []float64{100, 101.26, 100}, wantErr: nil},
		{name: "negative clamps to zero", series: 0, weight: -5,
			wantWeight: 0, wantWeights: []float64{0, 100, 100}, wantErr: nil},
		{name: "NaN clamps to zero", series: 1, weight: math.NaN(),
			wantWeight: 100, wantWeights: []float64{100, 0, 100}, wantErr: nil},
		{name: "missing series", series: 3, weight: 10,
			wantWeight: 100, wantWeights: []float64{100, 100, 100}, wantErr: workout.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, _ := newSavedStore(t, squat)
			id := savedExercise(t, store, 0, 0).ID
			if _, err := store.SetSeriesWeight(0, id, tt.series, tt.weight); !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetSeriesWeight() error = %v, want %v", err, tt.wantErr)
			}
			exercise := savedExercise(t, store, 0, 0)
			if exercise.Weight != tt.wantWeight {
				t.Errorf("Got weight %v, want %v", exercise.Weight, tt.wantWeight)
			}
			if diff := cmp.Diff(tt.wantWeights, exercise.Weights); diff != "" {
				t.Errorf("Weights mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_BumpSeriesWeight(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		in          workout.ExerciseInput
		series      int
		directions  []workout.Direction
		wantWeights []float64
	}{
		{
			name:        "increase by increase",
			in:          squat,
			series:      0,
			directions:  []workout.Direction{workout.Increase, workout.Increase},
			wantWeights: []float64{105, 100, 100},
		},
		{
			name:        "decrease stops at zero",
			in:          workout.ExerciseInput{Name: "Curl", Series: 2, Reps: 10, Increase: 2.5, Weight: 4},
			series:      1,
			directions:  []workout.Direction{workout.Decrease, workout.Decrease},
			wantWeights: []float64{4, 0},
		},
		{
			name:        "fractional increase does not drift",
			in:          workout.ExerciseInput{Name: "Raise", Series: 1, Reps: 12, Increase: 0.1, Weight: 0},
			series:      0,
			directions:  []workout.Direction{workout.Increase, workout.Increase, workout.Increase},
			wantWeights: []float64{0.3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, _ := newSavedStore(t, tt.in)
			id := savedExercise(t, store, 0, 0).ID
			for _, dir := range tt.directions {
				if _, err := store.BumpSeriesWeight(0, id, tt.series, dir); err != nil {
					t.Fatalf("BumpSeriesWeight: %v", err)
				}
			}
			exercise := savedExercise(t, store, 0, 0)
			if diff := cmp.Diff(tt.wantWeights, exercise.Weights); diff != "" {
				t.Errorf("Weights mismatch (-want +got):\n%s", diff)
			}
			if exercise.Weight != exercise.Weights[0] {
				t.Errorf("Weight %v differs from first series %v", exercise.Weight, exercise.Weights[0])
			}
		})
	}
}

func TestStore_BumpSeriesWeight_InvalidDirection(t *testing.T) {
	t.Parallel()
	store, _ := newSavedStore(t, squat)
	id := savedExercise(t, store, 0, 0).ID
	var validationErr *workout.ValidationError
	if _, err := store.BumpSeriesWeight(0, id, 0, workout.Direction(2)); !errors.As(err, &validationErr) {
		t.Errorf("BumpSeriesWeight() error = %v, want ValidationError", err)
	}
}

func TestStore_SetSelectedSet(t *testing.T) {
	t.Parallel()
	bench := workout.ExerciseInput{Name: "Bench", Series: 3, Reps: 5, Increase: 2.5, Weight: 60}
	row := workout.ExerciseInput{Name: "Row", Series: 3, Reps: 8, Increase: 2.5, Weight: 50}
	store, publisher := newSavedStore(t, squat, bench, row)

	if err := store.SetSelectedSet(0, 1); err != nil {
		t.Fatalf("SetSelectedSet: %v", err)
	}
	if diff := cmp.Diff([]string{"Squat", "Row"}, names(store.Saved()[0].ActiveExercises())); diff != "" {
		t.Errorf("Active exercises mismatch (-want +got):\n%s", diff)
	}

	// Removing exercises leaves the selection dangling which resolves to the base set.
	if err := store.SetSelectedSet(0, 2); err != nil {
		t.Fatalf("SetSelectedSet: %v", err)
	}
	id := savedExercise(t, store, 0, 2).ID
	if err := store.DeleteExercise(0, id); err != nil {
		t.Fatalf("DeleteExercise: %v", err)
	}
	day := store.Saved()[0]
	if day.SelectedSetIndex != 2 {
		t.Errorf("Got selected set %d, want 2", day.SelectedSetIndex)
	}
	if diff := cmp.Diff([]string{"Squat", "Bench"}, names(day.ActiveExercises())); diff != "" {
		t.Errorf("Active exercises mismatch (-want +got):\n%s", diff)
	}

	var validationErr *workout.ValidationError
	if err := store.SetSelectedSet(0, -2); !errors.As(err, &validationErr) ||
		validationErr.Field != workout.FieldSelectedSet {
		t.Errorf("SetSelectedSet(-2) error = %v, want invalid selectedSetIndex", err)
	}
	if err := store.SetSelectedSet(4, 0); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("SetSelectedSet(missing day) error = %v, want ErrNotFound", err)
	}
	// Commit, two selections, and one delete.
	if got := len(publisher.Events()); got != 4 {
		t.Errorf("Got %d events, want 4", got)
	}
}

func TestStore_SelectionAfterDelete(t *testing.T) {
	t.Parallel()
	bench := workout.ExerciseInput{Name: "Bench", Series: 3, Reps: 5, Increase: 2.5, Weight: 60}
	row := workout.ExerciseInput{Name: "Row", Series: 3, Reps: 8, Increase: 2.5, Weight: 50}
	tests := []struct {
		name        string
		selected    int
		wantBefore  []string
		deleted     []int
		wantVariant int
		wantAfter   []string
	}{
		{
			name:        "index is reused by the shorter list",
			selected:    1,
			wantBefore:  []string{"Squat", "Row"},
			deleted:     []int{1},
			wantVariant: 2,
			wantAfter:   []string{"Squat"},
		},
		{
			name:        "index beyond a single exercise falls back to base set",
			selected:    2,
			wantBefore:  []string{"Squat", "Bench"},
			deleted:     []int{2, 1},
			wantVariant: 1,
			wantAfter:   []string{"Squat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, _ := newSavedStore(t, squat, bench, row)
			if err := store.SetSelectedSet(0, tt.selected); err != nil {
				t.Fatalf("SetSelectedSet: %v", err)
			}
			if diff := cmp.Diff(tt.wantBefore, names(store.Saved()[0].ActiveExercises())); diff != "" {
				t.Errorf("Active exercises before delete mismatch (-want +got):\n%s", diff)
			}
			for _, position := range tt.deleted {
				id := savedExercise(t, store, 0, position).ID
				if err := store.DeleteExercise(0, id); err != nil {
					t.Fatalf("DeleteExercise: %v", err)
				}
			}
			day := store.Saved()[0]
			if got := len(day.Variants()); got != tt.wantVariant {
				t.Errorf("Got %d variants, want %d", got, tt.wantVariant)
			}
			if day.SelectedSetIndex != tt.selected {
				t.Errorf("Got selected set %d, want %d", day.SelectedSetIndex, tt.selected)
			}
			if diff := cmp.Diff(tt.wantAfter, names(day.ActiveExercises())); diff != "" {
				t.Errorf("Active exercises after delete mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_SetMixEnabled(t *testing.T) {
	t.Parallel()
	store, publisher := newSavedStore(t, squat)
	if err := store.SetMixEnabled(true); err != nil {
		t.Fatalf("SetMixEnabled: %v", err)
	}
	if !store.Config().MixEnabled {
		t.Errorf("MixEnabled not set")
	}
	events := publisher.Events()
	if last := events[len(events)-1]; !last.Snapshot.Config.MixEnabled || last.Revision != 2 {
		t.Errorf("Got last event %+v, want mix enabled at revision 2", last)
	}
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()
	store, _ := newSavedStore(t, squat)
	store.Reset()

	if got := len(store.Saved()); got != 0 {
		t.Errorf("Got %d saved days after reset", got)
	}
	if got := len(store.Draft()); got != 0 {
		t.Errorf("Got %d draft days after reset", got)
	}
	if _, err := store.SetDayCount(2); !errors.Is(err, workout.ErrNoIdentity) {
		t.Errorf("SetDayCount after reset error = %v, want ErrNoIdentity", err)
	}
}

func TestNewStore_LoadedPlan(t *testing.T) {
	t.Parallel()
	snapshot := workout.Snapshot{
		Plan: workout.Plan{{
			Day: 2,
			Exercises: []workout.Exercise{
				{ID: uuid.Nil, Name: "Squat", Series: 3, Reps: 5, Weight: 100, Increase: 2.5, Weights: []float64{100}},
			},
			SelectedSetIndex: -7,
		}},
		Config: workout.Config{MixEnabled: true},
	}
	store := workout.NewStore(testUserID, snapshot, 5, nil)

	if got := store.Mode(); got != workout.ModeSaved {
		t.Errorf("Got mode %q, want %q", got, workout.ModeSaved)
	}
	day := store.Saved()[0]
	if day.SelectedSetIndex != workout.BaseSet {
		t.Errorf("Got selected set %d, want base set", day.SelectedSetIndex)
	}
	exercise := day.Exercises[0]
	if exercise.ID == uuid.Nil {
		t.Errorf("Missing identifier not generated")
	}
	if diff := cmp.Diff([]float64{100, 100, 100}, exercise.Weights); diff != "" {
		t.Errorf("Weights mismatch (-want +got):\n%s", diff)
	}
	if _, err := store.BumpSeriesWeight(0, exercise.ID, 2, workout.Increase); err != nil {
		t.Fatalf("BumpSeriesWeight: %v", err)
	}
	if got := store.Revision(); got != 6 {
		t.Errorf("Got revision %d, want 6", got)
	}
}
