package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/gymplan/internal/sqlite"
)

// sqlitePlanRepository implements PlanRepository storing snapshots as JSON documents.
type sqlitePlanRepository struct {
	baseRepository
}

// newSQLitePlanRepository creates a new SQLite plan repository.
func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Save upserts the snapshot. Writes with a revision older than the stored one are ignored so that a delayed save
// never overwrites a newer plan.
func (r *sqlitePlanRepository) Save(ctx context.Context, userID int, revision int64, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO user_plans (user_id, plan_data, revision)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_data = excluded.plan_data,
			revision = excluded.revision,
			updated = STRFTIME('%Y-%m-%dT%H:%M:%fZ')
		WHERE excluded.revision >= user_plans.revision`,
		userID, string(data), revision)
	if err != nil {
		return fmt.Errorf("upsert user plan: %w", err)
	}
	var affected int64
	if affected, err = result.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "ignored stale plan snapshot",
			slog.Int("userID", userID), slog.Int64("revision", revision))
	}
	return nil
}

// Load returns the stored snapshot normalised for the current data model.
func (r *sqlitePlanRepository) Load(ctx context.Context, userID int) (Snapshot, int64, error) {
	var (
		data     string
		revision int64
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT plan_data, revision
		FROM user_plans
		WHERE user_id = ?`, userID).Scan(&data, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, 0, fmt.Errorf("plan of user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, 0, fmt.Errorf("query user plan: %w", err)
	}
	var snapshot Snapshot
	if err = json.Unmarshal([]byte(data), &snapshot); err != nil {
		return Snapshot{}, 0, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	snapshot.normalize()
	return snapshot, revision, nil
}
