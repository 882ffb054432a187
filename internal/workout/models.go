package workout

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// BaseSet is the selected set index of a day that trains its full exercise list.
const BaseSet = -1

const (
	MinDays = 1
	MaxDays = 7
)

// Exercise is a prescribed exercise of a training day.
//
// Weights holds the working weight of every series and always has Series entries. Weight aliases Weights[0].
type Exercise struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Series   int       `json:"series"`
	Reps     int       `json:"reps"`
	Weight   float64   `json:"weight"`
	Increase float64   `json:"increase"`
	Weights  []float64 `json:"weights"`
}

func (e Exercise) clone() Exercise {
	e.Weights = slices.Clone(e.Weights)
	return e
}

// Day is a training day of a plan.
type Day struct {
	// Day is the display label. It is not necessarily unique or dense.
	Day       int        `json:"day"`
	Exercises []Exercise `json:"exercises"`
	// SelectedSetIndex is BaseSet or the index of the drop-one variant to train. It may point past the current
	// variants after exercises have been removed, see ResolveSelection.
	SelectedSetIndex int `json:"selectedSetIndex"`
}

// UnmarshalJSON defaults SelectedSetIndex to BaseSet for days stored before the field existed.
func (d *Day) UnmarshalJSON(data []byte) error {
	type plainDay Day
	day := plainDay{Day: 0, Exercises: nil, SelectedSetIndex: BaseSet}
	if err := json.Unmarshal(data, &day); err != nil {
		return fmt.Errorf("unmarshal day: %w", err)
	}
	*d = Day(day)
	return nil
}

// ActiveExercises returns the exercises to train according to the day's selected set.
func (d Day) ActiveExercises() []Exercise {
	return ResolveSelection(d.Exercises, d.SelectedSetIndex)
}

// Variants returns the drop-one variants of the day's current exercises.
func (d Day) Variants() [][]Exercise {
	return Variants(d.Exercises)
}

// SetOption is a selectable exercise set of a day shown by the set selector.
type SetOption struct {
	// Index is the value stored in Day.SelectedSetIndex when the option is picked.
	Index     int
	Exercises []Exercise
}

// SetOptions returns the base set followed by every drop-one variant of the day.
func (d Day) SetOptions() []SetOption {
	variants := d.Variants()
	options := make([]SetOption, 0, len(variants)+1)
	options = append(options, SetOption{Index: BaseSet, Exercises: d.Exercises})
	for i, variant := range variants {
		options = append(options, SetOption{Index: i, Exercises: variant})
	}
	return options
}

// Selected reports whether option is the day's current selection after resolving stale indexes.
func (d Day) Selected(option SetOption) bool {
	if d.SelectedSetIndex < 0 || d.SelectedSetIndex >= len(d.Exercises) {
		return option.Index == BaseSet
	}
	return option.Index == d.SelectedSetIndex
}

func (d Day) clone() Day {
	exercises := make([]Exercise, len(d.Exercises))
	for i, exercise := range d.Exercises {
		exercises[i] = exercise.clone()
	}
	d.Exercises = exercises
	return d
}

// Plan is an ordered sequence of training days.
type Plan []Day

// Clone returns a deep copy of p so that mutating either plan never affects the other.
func (p Plan) Clone() Plan {
	plan := make(Plan, len(p))
	for i, day := range p {
		plan[i] = day.clone()
	}
	return plan
}

// Config holds flags persisted together with the saved plan.
type Config struct {
	MixEnabled bool `json:"mixEnabled"`
}

// Snapshot is the persisted state of a user: the saved plan and its config.
type Snapshot struct {
	Plan   Plan   `json:"plan"`
	Config Config `json:"config"`
}

// normalize repairs snapshots written by older versions or by hand: missing days and exercise lists become empty,
// missing identifiers are generated, invalid selections fall back to the base set, and weights are resized to the
// series count.
func (s *Snapshot) normalize() {
	if s.Plan == nil {
		s.Plan = Plan{}
	}
	for i := range s.Plan {
		day := &s.Plan[i]
		if day.SelectedSetIndex < BaseSet {
			day.SelectedSetIndex = BaseSet
		}
		if day.Exercises == nil {
			day.Exercises = []Exercise{}
		}
		for j := range day.Exercises {
			exercise := &day.Exercises[j]
			if exercise.ID == uuid.Nil {
				exercise.ID = uuid.New()
			}
			if exercise.Series > 0 && len(exercise.Weights) != exercise.Series {
				exercise.Weights = resizeWeights(exercise.Weights, exercise.Series, exercise.Weight)
			}
		}
	}
}

// Mode selects which plan is the target of exercise add, edit, and delete.
type Mode string

const (
	// ModeCreator targets the draft plan.
	ModeCreator Mode = "creator"
	// ModeSaved targets the saved plan.
	ModeSaved Mode = "saved"
)

// Direction of a series weight bump.
type Direction int

const (
	Decrease Direction = -1
	Increase Direction = 1
)

// Category of a catalogue exercise.
type Category string

const (
	CategoryFullBody Category = "full_body"
	CategoryUpper    Category = "upper"
	CategoryLower    Category = "lower"
)

// CatalogueExercise is a well-known exercise users pick names from when building their plan.
type CatalogueExercise struct {
	ID                  int
	Name                string
	Category            Category
	DescriptionMarkdown string
}
