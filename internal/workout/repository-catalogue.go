package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/gymplan/internal/sqlite"
)

// sqliteCatalogueRepository implements catalogueRepository.
type sqliteCatalogueRepository struct {
	baseRepository
}

// newSQLiteCatalogueRepository creates a new SQLite catalogue repository.
func newSQLiteCatalogueRepository(db *sqlite.Database, logger *slog.Logger) *sqliteCatalogueRepository {
	return &sqliteCatalogueRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves a single catalogue exercise by ID.
func (r *sqliteCatalogueRepository) Get(ctx context.Context, id int) (CatalogueExercise, error) {
	var exercise CatalogueExercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, category, description_markdown
		FROM exercises
		WHERE id = ?`, id).Scan(
		&exercise.ID,
		&exercise.Name,
		&exercise.Category,
		&exercise.DescriptionMarkdown,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return CatalogueExercise{}, fmt.Errorf("exercise %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return CatalogueExercise{}, fmt.Errorf("query exercise: %w", err)
	}
	return exercise, nil
}

// List returns all catalogue exercises ordered by name.
func (r *sqliteCatalogueRepository) List(ctx context.Context) (_ []CatalogueExercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, category, description_markdown
		FROM exercises
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []CatalogueExercise
	for rows.Next() {
		var exercise CatalogueExercise
		if err = rows.Scan(
			&exercise.ID,
			&exercise.Name,
			&exercise.Category,
			&exercise.DescriptionMarkdown,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return exercises, nil
}
