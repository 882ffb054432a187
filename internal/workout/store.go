package workout

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Event notifies that the saved plan or its config of a user changed.
type Event struct {
	UserID int
	// Revision increases by one for every change of the user's saved state.
	Revision int64
	Snapshot Snapshot
}

// Publisher receives change events. Publish must not block.
type Publisher interface {
	Publish(event Event)
}

// Store holds the draft and saved plans of a single signed-in user.
//
// The draft is edited in the creator workflow and is never persisted. The saved plan is the last committed draft and
// every change to it is published as an Event. Exactly one plan is the target of exercise add, edit, and delete,
// selected by Mode. Reads return deep copies. Store is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	userID    int
	draft     Plan
	saved     Plan
	config    Config
	mode      Mode
	revision  int64
	publisher Publisher
}

// NewStore creates a store for userID initialised with the persisted snapshot at revision. The store starts in
// ModeSaved when the user has a saved plan and in ModeCreator otherwise. A nil publisher discards events.
func NewStore(userID int, snapshot Snapshot, revision int64, publisher Publisher) *Store {
	snapshot.Plan = snapshot.Plan.Clone()
	snapshot.normalize()
	mode := ModeCreator
	if len(snapshot.Plan) > 0 {
		mode = ModeSaved
	}
	return &Store{
		mu:        sync.Mutex{},
		userID:    userID,
		draft:     Plan{},
		saved:     snapshot.Plan,
		config:    snapshot.Config,
		mode:      mode,
		revision:  revision,
		publisher: publisher,
	}
}

// SetDayCount replaces the draft with n empty days labelled 1..n and makes the draft the edit target.
func (s *Store) SetDayCount(n int) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == 0 {
		return nil, ErrNoIdentity
	}
	if n < MinDays || n > MaxDays {
		return nil, fmt.Errorf("set day count %d: %w", n, ErrInvalidRange)
	}
	draft := make(Plan, n)
	for i := range draft {
		draft[i] = Day{Day: i + 1, Exercises: []Exercise{}, SelectedSetIndex: BaseSet}
	}
	s.draft = draft
	s.mode = ModeCreator
	return s.draft.Clone(), nil
}

// CommitDraft makes a deep copy of the draft the new saved plan and switches to ModeSaved.
func (s *Store) CommitDraft() (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == 0 {
		return nil, ErrNoIdentity
	}
	if len(s.draft) == 0 {
		return nil, ErrEmptyDraft
	}
	saved := s.draft.Clone()
	for i := range saved {
		saved[i].SelectedSetIndex = BaseSet
	}
	s.saved = saved
	s.mode = ModeSaved
	s.publish()
	return s.saved.Clone(), nil
}

// AddExercise validates in and appends a new exercise to the day of the active plan. Every series starts at
// the submitted weight.
func (s *Store) AddExercise(dayIndex int, in ExerciseInput) (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.activeDay(dayIndex)
	if err != nil {
		return Exercise{}, err
	}
	if in, err = in.validate(); err != nil {
		return Exercise{}, err
	}
	exercise := Exercise{
		ID:       uuid.New(),
		Name:     in.Name,
		Series:   in.Series,
		Reps:     in.Reps,
		Weight:   in.Weight,
		Increase: in.Increase,
		Weights:  resizeWeights(nil, in.Series, in.Weight),
	}
	day.Exercises = append(day.Exercises, exercise)
	s.publishIfSaved()
	return exercise.clone(), nil
}

// EditExercise validates in and replaces the fields of the exercise identified by id, keeping its identifier.
// Per-series weights keep their positions when the series count changes and new series start at the
// submitted weight.
//
// The submitted weight always becomes the weight of the first series so that Weight stays equal to Weights[0].
// When the weight changes, the first kept series therefore takes the new weight instead of its old value; only
// series 2 and later are preserved as they were.
func (s *Store) EditExercise(dayIndex int, id uuid.UUID, in ExerciseInput) (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.activeDay(dayIndex)
	if err != nil {
		return Exercise{}, err
	}
	if in, err = in.validate(); err != nil {
		return Exercise{}, err
	}
	exercise, err := findExercise(day, id)
	if err != nil {
		return Exercise{}, err
	}
	exercise.Name = in.Name
	exercise.Series = in.Series
	exercise.Reps = in.Reps
	exercise.Increase = in.Increase
	exercise.Weight = in.Weight
	exercise.Weights = resizeWeights(exercise.Weights, in.Series, in.Weight)
	exercise.Weights[0] = in.Weight
	s.publishIfSaved()
	return exercise.clone(), nil
}

// DeleteExercise removes the exercise identified by id from the day of the active plan.
func (s *Store) DeleteExercise(dayIndex int, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, err := s.activeDay(dayIndex)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(day.Exercises, func(e Exercise) bool { return e.ID == id })
	if i < 0 {
		return fmt.Errorf("delete exercise %s: %w", id, ErrNotFound)
	}
	day.Exercises = slices.Delete(day.Exercises, i, i+1)
	s.publishIfSaved()
	return nil
}

// SetSeriesWeight sets the weight of one series of a saved plan exercise. Negative and NaN weights are stored as
// zero. The first series is also the exercise's base weight.
func (s *Store) SetSeriesWeight(dayIndex int, id uuid.UUID, series int, w float64) (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exercise, err := s.savedSeries(dayIndex, id, series)
	if err != nil {
		return Exercise{}, err
	}
	setSeriesWeight(exercise, series, round2(sanitizeWeight(w)))
	s.publish()
	return exercise.clone(), nil
}

// BumpSeriesWeight moves the weight of one series by the exercise's increase, or by 1 when the increase is not
// positive, never going below zero.
func (s *Store) BumpSeriesWeight(dayIndex int, id uuid.UUID, series int, dir Direction) (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exercise, err := s.savedSeries(dayIndex, id, series)
	if err != nil {
		return Exercise{}, err
	}
	if dir != Increase && dir != Decrease {
		return Exercise{}, &ValidationError{Field: FieldDirection}
	}
	step := exercise.Increase
	if !(step > 0) {
		step = 1
	}
	w := exercise.Weights[series] + float64(dir)*step
	setSeriesWeight(exercise, series, round2(max(0, w)))
	s.publish()
	return exercise.clone(), nil
}

func setSeriesWeight(exercise *Exercise, series int, w float64) {
	exercise.Weights[series] = w
	if series == 0 {
		exercise.Weight = w
	}
}

// SetSelectedSet selects the exercise set a saved plan day trains: BaseSet or a drop-one variant index. The index
// is not checked against the current variants, see ResolveSelection.
func (s *Store) SetSelectedSet(dayIndex int, variantIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == 0 {
		return ErrNoIdentity
	}
	day, err := dayAt(s.saved, dayIndex)
	if err != nil {
		return err
	}
	if variantIndex < BaseSet {
		return &ValidationError{Field: FieldSelectedSet}
	}
	day.SelectedSetIndex = variantIndex
	s.publish()
	return nil
}

// SetMixEnabled updates the config flag persisted with the saved plan.
func (s *Store) SetMixEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == 0 {
		return ErrNoIdentity
	}
	s.config.MixEnabled = enabled
	s.publish()
	return nil
}

// SetMode selects the plan targeted by exercise add, edit, and delete.
func (s *Store) SetMode(mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == 0 {
		return ErrNoIdentity
	}
	if mode != ModeCreator && mode != ModeSaved {
		return &ValidationError{Field: FieldMode}
	}
	s.mode = mode
	return nil
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Store) Draft() Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Store) Saved() Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved.Clone()
}

func (s *Store) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Revision returns the revision of the latest published change.
func (s *Store) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Reset clears both plans and detaches the store from its user. Every later mutation fails with ErrNoIdentity.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = 0
	s.draft = Plan{}
	s.saved = Plan{}
	s.config = Config{MixEnabled: false}
	s.mode = ModeCreator
}

func (s *Store) activeDay(dayIndex int) (*Day, error) {
	if s.userID == 0 {
		return nil, ErrNoIdentity
	}
	if s.mode == ModeSaved {
		return dayAt(s.saved, dayIndex)
	}
	return dayAt(s.draft, dayIndex)
}

func (s *Store) savedSeries(dayIndex int, id uuid.UUID, series int) (*Exercise, error) {
	if s.userID == 0 {
		return nil, ErrNoIdentity
	}
	day, err := dayAt(s.saved, dayIndex)
	if err != nil {
		return nil, err
	}
	exercise, err := findExercise(day, id)
	if err != nil {
		return nil, err
	}
	if series < 0 || series >= len(exercise.Weights) {
		return nil, fmt.Errorf("series %d: %w", series, ErrNotFound)
	}
	return exercise, nil
}

func dayAt(plan Plan, dayIndex int) (*Day, error) {
	if dayIndex < 0 || dayIndex >= len(plan) {
		return nil, fmt.Errorf("day %d: %w", dayIndex, ErrNotFound)
	}
	return &plan[dayIndex], nil
}

func findExercise(day *Day, id uuid.UUID) (*Exercise, error) {
	for i := range day.Exercises {
		if day.Exercises[i].ID == id {
			return &day.Exercises[i], nil
		}
	}
	return nil, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
}

func (s *Store) publishIfSaved() {
	if s.mode == ModeSaved {
		s.publish()
	}
}

// publish must be called with s.mu held so that events leave in revision order.
func (s *Store) publish() {
	s.revision++
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(Event{
		UserID:   s.userID,
		Revision: s.revision,
		Snapshot: Snapshot{Plan: s.saved.Clone(), Config: s.config},
	})
}
