package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/myrjola/gymplan/internal/contexthelpers"
	"github.com/myrjola/gymplan/internal/sqlite"
)

// Service manages the plan stores of signed-in users.
//
// A store is opened lazily on the first request of a user, loading the saved plan once. Close tears it down on
// sign-out after flushing pending saves.
type Service struct {
	db        *sqlite.Database
	repo      *repository
	persister *Persister
	logger    *slog.Logger

	mu     sync.Mutex
	stores map[int]*Store
}

// NewService creates a new workout service. Saves time out after saveTimeout.
func NewService(db *sqlite.Database, logger *slog.Logger, saveTimeout time.Duration) *Service {
	factory := newRepositoryFactory(db, logger)
	repo := factory.newRepository()
	return &Service{
		db:        db,
		repo:      repo,
		persister: NewPersister(repo.plans, logger, saveTimeout),
		logger:    logger,
		mu:        sync.Mutex{},
		stores:    make(map[int]*Store),
	}
}

// RunPersister saves plan changes in the background until ctx is done.
func (s *Service) RunPersister(ctx context.Context) error {
	if err := s.persister.Run(ctx); err != nil {
		return fmt.Errorf("run persister: %w", err)
	}
	return nil
}

// Open returns the plan store of the authenticated user, loading the saved plan on first use.
func (s *Service) Open(ctx context.Context) (*Store, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return nil, ErrNoIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.stores[userID]; ok {
		return store, nil
	}

	// Looked up before loading so that a save finishing in between shows up in the loaded row.
	unsaved, hasUnsaved := s.persister.Unsaved(userID)
	snapshot, revision, err := s.repo.plans.Load(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		snapshot = Snapshot{Plan: Plan{}, Config: Config{MixEnabled: false}}
		revision = 0
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	// A snapshot of the previous session may still wait for its save. It is newer than the stored one and the
	// store continues from its revision so that later saves supersede it.
	if hasUnsaved && unsaved.Revision > revision {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "resuming unsaved plan",
			slog.Int("userID", userID), slog.Int64("storedRevision", revision),
			slog.Int64("revision", unsaved.Revision))
		snapshot = unsaved.Snapshot
		revision = unsaved.Revision
	}

	store := NewStore(userID, snapshot, revision, s.persister)
	s.stores[userID] = store
	s.logger.LogAttrs(ctx, slog.LevelDebug, "opened plan store",
		slog.Int("userID", userID), slog.Int64("revision", revision), slog.Int("days", len(snapshot.Plan)))
	return store, nil
}

// Close tears down the plan store of the authenticated user and waits for its pending save. The returned error
// wraps ErrPersistence when that save failed. Closing a user without an open store is a no-op.
func (s *Service) Close(ctx context.Context) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return ErrNoIdentity
	}

	s.mu.Lock()
	store, ok := s.stores[userID]
	delete(s.stores, userID)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	// Reset before flushing so that no request can publish a change that would be lost. A snapshot that is not
	// saved in time stays with the persister and the next Open resumes from it.
	store.Reset()
	if err := s.persister.FlushUser(ctx, userID); err != nil {
		return fmt.Errorf("flush plan: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "closed plan store", slog.Int("userID", userID))
	return nil
}

// SaveStatus returns the persistence state of the authenticated user's saved plan.
func (s *Service) SaveStatus(ctx context.Context) SaveStatus {
	return s.persister.Status(contexthelpers.AuthenticatedUserID(ctx))
}

// Flush waits for pending saves of all users.
func (s *Service) Flush(ctx context.Context) error {
	if err := s.persister.Flush(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Catalogue lists the well-known exercises.
func (s *Service) Catalogue(ctx context.Context) ([]CatalogueExercise, error) {
	exercises, err := s.repo.catalogue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalogue: %w", err)
	}
	return exercises, nil
}

// CatalogueExercise returns a single catalogue exercise.
func (s *Service) CatalogueExercise(ctx context.Context, id int) (CatalogueExercise, error) {
	exercise, err := s.repo.catalogue.Get(ctx, id)
	if err != nil {
		return CatalogueExercise{}, fmt.Errorf("get catalogue exercise: %w", err)
	}
	return exercise, nil
}

// Ping checks that both database connection pools respond.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.ReadOnly.PingContext(ctx); err != nil {
		return fmt.Errorf("ping read-only db: %w", err)
	}
	if err := s.db.ReadWrite.PingContext(ctx); err != nil {
		return fmt.Errorf("ping read-write db: %w", err)
	}
	return nil
}
