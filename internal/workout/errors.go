package workout

import (
	"github.com/myrjola/gymplan/internal/errors"
)

var (
	// ErrInvalidRange is returned when the day count is outside [MinDays, MaxDays].
	ErrInvalidRange = errors.NewSentinel("day count out of range")
	// ErrEmptyDraft is returned when committing a draft without days.
	ErrEmptyDraft = errors.NewSentinel("draft has no days")
	// ErrNotFound is returned when a day, exercise, series, or stored plan does not exist.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrPersistence wraps failures of the plan repository.
	ErrPersistence = errors.NewSentinel("persistence failure")
	// ErrNoIdentity is returned when plans are accessed without a signed-in user.
	ErrNoIdentity = errors.NewSentinel("no signed-in user")
)

// Field names reported by ValidationError.
const (
	FieldName        = "name"
	FieldSeries      = "series"
	FieldReps        = "reps"
	FieldIncrease    = "increase"
	FieldWeight      = "weight"
	FieldSelectedSet = "selectedSetIndex"
	FieldDirection   = "direction"
	FieldMode        = "mode"
)

// ValidationError reports the first invalid field of user input. Nothing is mutated when it is returned.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field
}
