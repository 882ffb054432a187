package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migrateTo makes the live schema match schemaDefinition declaratively.
//
// The target schema is created in an attached in-memory database called schemaTarget and diffed against the live
// sqlite_schema:
//
//  1. tables missing from the target are dropped,
//  2. tables missing from the live schema are created,
//  3. tables whose definition changed are rebuilt with the 12-step procedure
//     https://www.sqlite.org/lang_altertable.html#otheralter keeping the columns both versions share,
//  4. triggers and indexes are dropped, created, or recreated to match.
//
// Based on https://david.rothlis.net/declarative-schema-migration-for-sqlite/.
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target: %w", err)
	}
	defer detach()

	// Foreign keys can't be toggled inside a transaction so this happens around it.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, fmt.Errorf("re-enable foreign keys: %w", fkErr))
		}
	}()

	var tx *sql.Tx
	if tx, err = db.ReadWrite.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer db.rollback(ctx, tx)

	m := migration{tx: tx, logger: db.logger}
	if err = m.tables(ctx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	for _, typ := range []string{"trigger", "index"} {
		if err = m.entities(ctx, typ); err != nil {
			return fmt.Errorf("migrate %ss: %w", typ, err)
		}
	}
	var violations []string
	if violations, err = m.queryColumn(ctx, "SELECT \"table\" FROM pragma_foreign_key_check"); err != nil {
		return fmt.Errorf("foreign key check: %w", err)
	}
	if len(violations) > 0 {
		return fmt.Errorf("foreign key violations in tables %s", strings.Join(violations, ", "))
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachSchemaTarget attaches an in-memory database holding the target schema as schemaTarget. The returned
// function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	// The shared cache keeps the in-memory database alive while the live connection has it attached.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target",
				slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("create target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target",
				slog.Any("error", detachErr))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to roll back transaction", slog.Any("error", err))
	}
}

// migration runs the diffing queries and DDL of a single migrateTo call.
type migration struct {
	tx     *sql.Tx
	logger *slog.Logger
}

// Internal tables of SQLite and Litestream are never touched.
const userEntities = `name NOT LIKE 'sqlite_%' AND name NOT LIKE '_litestream_%'`

func (m migration) exec(ctx context.Context, msg string, query string) error {
	m.logger.LogAttrs(ctx, slog.LevelInfo, msg, slog.String("query", query))
	if _, err := m.tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%s %q: %w", msg, query, err)
	}
	return nil
}

func (m migration) tables(ctx context.Context) error {
	dropped, err := m.queryColumn(ctx, `SELECT name FROM main.sqlite_schema
WHERE type = 'table' AND `+userEntities+`
  AND name NOT IN (SELECT name FROM schemaTarget.sqlite_schema WHERE type = 'table')`)
	if err != nil {
		return fmt.Errorf("query dropped tables: %w", err)
	}
	for _, table := range dropped {
		if err = m.exec(ctx, "drop table", "DROP TABLE "+table); err != nil {
			return err
		}
	}

	created, err := m.queryColumn(ctx, `SELECT sql FROM schemaTarget.sqlite_schema
WHERE type = 'table' AND `+userEntities+`
  AND name NOT IN (SELECT name FROM main.sqlite_schema WHERE type = 'table')`)
	if err != nil {
		return fmt.Errorf("query created tables: %w", err)
	}
	for _, createSQL := range created {
		if err = m.exec(ctx, "create table", createSQL); err != nil {
			return err
		}
	}

	// ALTER TABLE RENAME quotes the table name in sqlite_schema so quotes are ignored in the comparison.
	changed, err := m.changed(ctx, "table", `REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')`)
	if err != nil {
		return fmt.Errorf("query changed tables: %w", err)
	}
	for _, table := range changed {
		if err = m.rebuild(ctx, table); err != nil {
			return fmt.Errorf("rebuild %s: %w", table.name, err)
		}
	}
	return nil
}

// rebuild implements steps 4-7 of the 12-step procedure: create the new definition under a temporary name, copy the
// shared columns, drop the old table, and rename.
func (m migration) rebuild(ctx context.Context, table schemaEntity) error {
	tempName := table.name + "_migration_temp"
	if err := m.exec(ctx, "create rebuilt table",
		strings.Replace(table.targetSQL, table.name, tempName, 1)); err != nil {
		return err
	}
	// Column names are quoted since some may be keywords.
	shared, err := m.queryColumn(ctx, `SELECT '"' || target.name || '"'
FROM pragma_table_info(:table) AS live
JOIN pragma_table_info(:table, 'schemaTarget') AS target USING (name)`, sql.Named("table", table.name))
	if err != nil {
		return fmt.Errorf("query shared columns: %w", err)
	}
	columns := strings.Join(shared, ", ")
	steps := []struct{ msg, query string }{
		{"copy rows", fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, columns, columns, table.name)},
		{"drop old table", "DROP TABLE " + table.name},
		{"rename rebuilt table", fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name)},
	}
	for _, step := range steps {
		if err = m.exec(ctx, step.msg, step.query); err != nil {
			return err
		}
	}
	return nil
}

// entities synchronises schema entities of typ such as triggers and indexes. Changed ones are dropped and created.
func (m migration) entities(ctx context.Context, typ string) error {
	dropped, err := m.queryColumn(ctx, `SELECT name FROM main.sqlite_schema
WHERE type = :type AND `+userEntities+`
  AND name NOT IN (SELECT name FROM schemaTarget.sqlite_schema WHERE type = :type)`, sql.Named("type", typ))
	if err != nil {
		return fmt.Errorf("query dropped: %w", err)
	}
	// Automatic indexes of UNIQUE and PRIMARY KEY constraints have no sql and are managed by their table.
	created, err := m.queryColumn(ctx, `SELECT sql FROM schemaTarget.sqlite_schema
WHERE type = :type AND `+userEntities+` AND sql IS NOT NULL
  AND name NOT IN (SELECT name FROM main.sqlite_schema WHERE type = :type)`, sql.Named("type", typ))
	if err != nil {
		return fmt.Errorf("query created: %w", err)
	}
	changed, err := m.changed(ctx, typ, "live.sql <> target.sql")
	if err != nil {
		return fmt.Errorf("query changed: %w", err)
	}

	keyword := strings.ToUpper(typ)
	for _, name := range dropped {
		if err = m.exec(ctx, "drop "+typ, fmt.Sprintf("DROP %s %s", keyword, name)); err != nil {
			return err
		}
	}
	for _, entity := range changed {
		if err = m.exec(ctx, "drop changed "+typ, fmt.Sprintf("DROP %s %s", keyword, entity.name)); err != nil {
			return err
		}
		created = append(created, entity.targetSQL)
	}
	for _, createSQL := range created {
		if err = m.exec(ctx, "create "+typ, createSQL); err != nil {
			return err
		}
	}
	return nil
}

type schemaEntity struct {
	name      string
	targetSQL string
}

// changed lists the entities of typ present in both schemas for which differs holds.
func (m migration) changed(ctx context.Context, typ string, differs string) ([]schemaEntity, error) {
	rows, err := m.tx.QueryContext(ctx, `SELECT live.name, target.sql
FROM main.sqlite_schema AS live
JOIN schemaTarget.sqlite_schema AS target USING (type, name)
WHERE live.type = :type AND live.name NOT LIKE 'sqlite_%' AND live.name NOT LIKE '_litestream_%'
  AND `+differs, sql.Named("type", typ))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer m.closeRows(ctx, rows)
	var entities []schemaEntity
	for rows.Next() {
		var entity schemaEntity
		if err = rows.Scan(&entity.name, &entity.targetSQL); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entities = append(entities, entity)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return entities, nil
}

// queryColumn returns the single text column of every row of query.
func (m migration) queryColumn(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := m.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer m.closeRows(ctx, rows)
	var results []string
	for rows.Next() {
		var result string
		if err = rows.Scan(&result); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return results, nil
}

func (m migration) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "could not close rows", slog.Any("error", err))
	}
}
