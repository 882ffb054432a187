package workout

import (
	"math"
	"strings"
)

// ExerciseInput is the user-submitted content of an exercise form.
type ExerciseInput struct {
	Name     string
	Series   int
	Reps     int
	Increase float64
	Weight   float64
}

// validate checks the fields in form order and reports the first invalid one.
func (in ExerciseInput) validate() (ExerciseInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return in, &ValidationError{Field: FieldName}
	case in.Series < 1:
		return in, &ValidationError{Field: FieldSeries}
	case in.Reps < 1:
		return in, &ValidationError{Field: FieldReps}
	case !(in.Increase > 0) || math.IsInf(in.Increase, 0):
		return in, &ValidationError{Field: FieldIncrease}
	case !(in.Weight >= 0) || math.IsInf(in.Weight, 0):
		return in, &ValidationError{Field: FieldWeight}
	}
	return in, nil
}

// resizeWeights returns weights resized to series entries. Existing entries keep their position, missing
// entries are padded with weight, and surplus entries are dropped.
func resizeWeights(weights []float64, series int, weight float64) []float64 {
	resized := make([]float64, series)
	n := copy(resized, weights)
	for i := n; i < series; i++ {
		resized[i] = weight
	}
	return resized
}

// round2 rounds to two decimals to keep repeated bumps free of floating point drift.
func round2(v float64) float64 {
	return math.Round(v*100) / 100 //nolint:mnd // two decimals
}

// sanitizeWeight maps weights that cannot be lifted or stored to zero.
func sanitizeWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}
