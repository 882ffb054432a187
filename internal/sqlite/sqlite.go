package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	_ "embed"
)

//go:embed schema.sql
var schemaDefinition string

//go:embed fixtures.sql
var fixtures string

const optimizeInterval = time.Hour

type Database struct {
	ReadWrite *sql.DB
	ReadOnly  *sql.DB
	logger    *slog.Logger
}

// NewDatabase connects to a database, migrates the schema, and applies fixtures.
//
// It establishes two connection pools, one for read/write operations and one for read-only operations.
// See https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err error
		db  *Database
	)

	if db, err = connect(ctx, url, logger); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("migrateTo: %w", err)
	}

	// The exercise catalogue is reference data owned by the application so it's upserted on every start.
	if _, err = db.ReadWrite.ExecContext(ctx, fixtures); err != nil {
		return nil, fmt.Errorf("apply fixtures: %w", err)
	}

	go db.startDatabaseOptimizer(ctx, optimizeInterval)

	return db, nil
}

//nolint:gochecknoglobals // the driver can only be registered once per process.
var registerDriver sync.Once

const optimizedDriver = "sqlite3optimized"

// registerOptimizedDriver registers a driver that executes performance-enhancing pragmas on connection.
func registerOptimizedDriver() {
	sql.Register(optimizedDriver,
		&sqlite3.SQLiteDriver{
			Extensions: nil,
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if _, err := conn.Exec(
					// Temporary tables and indices live in memory instead of files.
					"PRAGMA temp_store = memory;"+
						// Memory-mapped I/O saves syscalls.
						"PRAGMA mmap_size = 30000000000;", nil); err != nil {
					return fmt.Errorf("exec optimization pragmas: %w", err)
				}
				return nil
			},
		})
}

// dataSourceNames builds the read-write and read-only DSNs for url.
//
// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
// The options prefixed with underscore '_' are documented at
// https://pkg.go.dev/github.com/mattn/go-sqlite3#SQLiteDriver.Open.
func dataSourceNames(url string) (string, string) {
	// In-memory databases need shared cache so that both pools see the same data. Every connect gets its own
	// name so that parallel tests stay isolated. See https://www.sqlite.org/inmemorydb.html.
	extra := ""
	if strings.Contains(url, ":memory:") {
		url = rand.Text()
		extra = "&mode=memory&cache=shared"
	}
	common := strings.Join([]string{
		"_loc=auto",
		// Foreign keys may be violated temporarily inside a transaction, e.g. during a table rebuild.
		"_defer_foreign_keys=1",
		"_journal_mode=wal",
		"_busy_timeout=5000",
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		"_synchronous=normal",
		"_foreign_keys=on",
	}, "&")
	readWrite := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s%s", url, common, extra)
	readOnly := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s%s", url, common, extra)
	return readWrite, readOnly
}

func connect(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sql.DB
		readDB      *sql.DB
	)

	readWriteDSN, readDSN := dataSourceNames(url)
	registerDriver.Do(registerOptimizedDriver)

	if readWriteDB, err = sql.Open(optimizedDriver, readWriteDSN); err != nil {
		return nil, fmt.Errorf("open read-write database: %w", err)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "opened database", slog.String("sqlDsn", readWriteDSN))

	// SQLite allows a single writer so more connections would only queue on the busy timeout.
	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	// sql.DB is lazy. The ping creates the database file before the read-only pool tries to open it.
	if err = readWriteDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping read-write database: %w", err)
	}

	if readDB, err = sql.Open(optimizedDriver, readDSN); err != nil {
		return nil, fmt.Errorf("open read database: %w", err)
	}

	maxReadConns := 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
		logger:    logger,
	}, nil
}

// Close closes the database connections.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}
