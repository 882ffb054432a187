package workout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/gymplan/internal/contexthelpers"
	"github.com/myrjola/gymplan/internal/sqlite"
	"github.com/myrjola/gymplan/internal/testhelpers"
	"github.com/myrjola/gymplan/internal/workout"
)

func newTestService(t *testing.T) (*workout.Service, *sqlite.Database) {
	t.Helper()
	logger := testhelpers.NewTestLogger(t)
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	svc := workout.NewService(db, logger, time.Second)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if runErr := svc.RunPersister(ctx); runErr != nil {
			t.Errorf("RunPersister: %v", runErr)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("Failed to close database: %v", closeErr)
		}
	})
	return svc, db
}

func signIn(ctx context.Context, t *testing.T, db *sqlite.Database) context.Context {
	t.Helper()
	var userID int
	err := db.ReadWrite.QueryRowContext(ctx, `
		INSERT INTO users (webauthn_user_id, display_name)
		VALUES (randomblob(64), 'Test User')
		RETURNING id`).Scan(&userID)
	if err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}
	return contexthelpers.WithUserID(ctx, userID)
}

func TestService_Open_RequiresIdentity(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	if _, err := svc.Open(t.Context()); !errors.Is(err, workout.ErrNoIdentity) {
		t.Errorf("Open() error = %v, want ErrNoIdentity", err)
	}
	if err := svc.Close(t.Context()); !errors.Is(err, workout.ErrNoIdentity) {
		t.Errorf("Close() error = %v, want ErrNoIdentity", err)
	}
}

func TestService_PlanSurvivesSignOut(t *testing.T) {
	t.Parallel()
	svc, db := newTestService(t)
	ctx := signIn(t.Context(), t, db)

	store, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := store.Mode(); got != workout.ModeCreator {
		t.Errorf("Got mode %q for a new user, want %q", got, workout.ModeCreator)
	}
	if _, err = store.SetDayCount(2); err != nil {
		t.Fatalf("SetDayCount: %v", err)
	}
	if _, err = store.AddExercise(0, squat); err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	if _, err = store.CommitDraft(); err != nil {
		t.Fatalf("CommitDraft: %v", err)
	}
	id := store.Saved()[0].Exercises[0].ID
	if _, err = store.BumpSeriesWeight(0, id, 1, workout.Increase); err != nil {
		t.Fatalf("BumpSeriesWeight: %v", err)
	}
	if err = store.SetSelectedSet(0, 0); err != nil {
		t.Fatalf("SetSelectedSet: %v", err)
	}
	want := store.Saved()

	if err = svc.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := len(store.Saved()); got != 0 {
		t.Errorf("Closed store still holds %d saved days", got)
	}
	if _, err = store.SetDayCount(1); !errors.Is(err, workout.ErrNoIdentity) {
		t.Errorf("SetDayCount on closed store error = %v, want ErrNoIdentity", err)
	}
	status := svc.SaveStatus(ctx)
	if status.Err != nil || status.Revision != 3 {
		t.Errorf("Got save status %+v, want revision 3 saved", status)
	}

	reopened, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("Open after sign-out: %v", err)
	}
	if reopened == store {
		t.Errorf("Open after sign-out returned the closed store")
	}
	if got := reopened.Mode(); got != workout.ModeSaved {
		t.Errorf("Got mode %q, want %q", got, workout.ModeSaved)
	}
	if diff := cmp.Diff(want, reopened.Saved()); diff != "" {
		t.Errorf("Reopened plan mismatch (-want +got):\n%s", diff)
	}
	if got := len(reopened.Draft()); got != 0 {
		t.Errorf("Got %d draft days after sign-in, want an empty draft", got)
	}
}

func TestService_UsersAreIsolated(t *testing.T) {
	t.Parallel()
	svc, db := newTestService(t)
	alice := signIn(t.Context(), t, db)
	bob := signIn(t.Context(), t, db)

	aliceStore, err := svc.Open(alice)
	if err != nil {
		t.Fatalf("Open alice: %v", err)
	}
	if _, err = aliceStore.SetDayCount(3); err != nil {
		t.Fatalf("SetDayCount: %v", err)
	}
	bobStore, err := svc.Open(bob)
	if err != nil {
		t.Fatalf("Open bob: %v", err)
	}
	if got := len(bobStore.Draft()); got != 0 {
		t.Errorf("Got %d draft days for another user", got)
	}
	again, err := svc.Open(alice)
	if err != nil {
		t.Fatalf("Open alice again: %v", err)
	}
	if again != aliceStore {
		t.Errorf("Open returned a new store for a signed-in user")
	}
}

func TestService_Catalogue(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	exercises, err := svc.Catalogue(t.Context())
	if err != nil {
		t.Fatalf("Catalogue: %v", err)
	}
	if len(exercises) == 0 {
		t.Fatalf("Catalogue is empty")
	}
	for i := 1; i < len(exercises); i++ {
		if exercises[i-1].Name > exercises[i].Name {
			t.Errorf("Catalogue not sorted by name: %q before %q", exercises[i-1].Name, exercises[i].Name)
		}
	}
	exercise, err := svc.CatalogueExercise(t.Context(), exercises[0].ID)
	if err != nil {
		t.Fatalf("CatalogueExercise: %v", err)
	}
	if diff := cmp.Diff(exercises[0], exercise); diff != "" {
		t.Errorf("CatalogueExercise() mismatch (-want +got):\n%s", diff)
	}
	if _, err = svc.CatalogueExercise(t.Context(), 999999); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("CatalogueExercise(missing) error = %v, want ErrNotFound", err)
	}
}

func TestService_Ping(t *testing.T) {
	t.Parallel()
	svc, db := newTestService(t)
	if err := svc.Ping(t.Context()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := db.ReadOnly.Close(); err != nil {
		t.Fatalf("Failed to close read-only pool: %v", err)
	}
	if err := svc.Ping(t.Context()); err == nil {
		t.Error("Ping() succeeded with a closed pool")
	}
}
