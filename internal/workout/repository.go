package workout

import (
	"context"
	"log/slog"

	"github.com/myrjola/gymplan/internal/sqlite"
)

// PlanRepository persists the saved plan snapshot of each user.
type PlanRepository interface {
	// Save stores snapshot unless a newer revision is already stored.
	Save(ctx context.Context, userID int, revision int64, snapshot Snapshot) error
	// Load returns the stored snapshot and its revision or ErrNotFound.
	Load(ctx context.Context, userID int) (Snapshot, int64, error)
}

// catalogueRepository reads the exercise catalogue.
type catalogueRepository interface {
	List(ctx context.Context) ([]CatalogueExercise, error)
	Get(ctx context.Context, id int) (CatalogueExercise, error)
}

// baseRepository holds what the SQLite repositories share.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// repository bundles the repositories used by Service.
type repository struct {
	plans     PlanRepository
	catalogue catalogueRepository
}

// repositoryFactory creates repositories.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		plans:     newSQLitePlanRepository(f.db, f.logger),
		catalogue: newSQLiteCatalogueRepository(f.db, f.logger),
	}
}
