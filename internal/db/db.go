// Package db persists calibration history and saved tuning presets in a
// local SQLite database whose schema is managed by embedded migrations.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/motion.swarm/internal/monitoring"
)

// migrationsFS holds the SQL migrations compiled into the binary.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// DevMode reads migrations from DevMigrationsDir on disk instead of the
// embedded copy, so schema edits can be tried without rebuilding.
var DevMode = false

// DevMigrationsDir is the on-disk migrations directory used in DevMode.
var DevMigrationsDir = "internal/db/migrations"

// pragmas are applied to every connection through the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"temp_store(MEMORY)",
	"foreign_keys(ON)",
}

type DB struct {
	*sql.DB
}

// NewDB opens the database at path and applies any pending migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	migFS, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.MigrateUp(migFS); err != nil {
		db.Close()
		return nil, err
	}
	version, _, err := db.MigrateVersion(migFS)
	if err != nil {
		db.Close()
		return nil, err
	}
	monitoring.Opsf("database ready: %s (schema version %d)", path, version)
	return db, nil
}

// OpenDB opens the database with the standard pragmas but leaves the
// schema alone. The migrate subcommand uses it directly.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}
	return &DB{db}, nil
}

func dsn(path string) string {
	params := make([]string, len(pragmas))
	for i, p := range pragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// getMigrationsFS returns a filesystem whose root holds the *.sql files.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		if _, err := os.Stat(DevMigrationsDir); err != nil {
			return nil, fmt.Errorf("dev migrations directory: %w", err)
		}
		return os.DirFS(DevMigrationsDir), nil
	}
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return sub, nil
}
