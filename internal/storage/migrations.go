package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV1_1Up,
		Down:    migrationV1_1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    root_path TEXT NOT NULL UNIQUE,
    module_name TEXT,
    go_version TEXT,
    total_files INTEGER DEFAULT 0,
    total_identifiers INTEGER DEFAULT 0,
    index_version TEXT NOT NULL,
    last_indexed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Files table
CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    file_path TEXT NOT NULL,
    package_name TEXT,
    content_hash BLOB NOT NULL,
    mod_time TIMESTAMP,
    size_bytes INTEGER,
    parse_error TEXT,
    last_indexed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
    UNIQUE(project_id, file_path)
);

CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
CREATE INDEX IF NOT EXISTS idx_files_hash ON files(content_hash);
CREATE INDEX IF NOT EXISTS idx_files_package ON files(package_name);

-- Identifiers table
CREATE TABLE IF NOT EXISTS identifiers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    species TEXT NOT NULL,
    modifiers TEXT,
    package_name TEXT NOT NULL,
    container TEXT,
    type_descriptor TEXT NOT NULL,
    type_identifier TEXT,
    type_package TEXT,
    type_acronym TEXT,
    array_dimensions INTEGER DEFAULT 0,
    tokens TEXT,
    normalized_tokens TEXT,
    acronym TEXT,
    start_line INTEGER,
    start_col INTEGER,
    end_line INTEGER,
    end_col INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_identifiers_file ON identifiers(file_id);
CREATE INDEX IF NOT EXISTS idx_identifiers_name ON identifiers(name);
CREATE INDEX IF NOT EXISTS idx_identifiers_species ON identifiers(species);
CREATE INDEX IF NOT EXISTS idx_identifiers_acronym ON identifiers(acronym);
CREATE UNIQUE INDEX IF NOT EXISTS idx_identifiers_unique ON identifiers(file_id, name, start_line, start_col);

-- Full-text search on identifier names, words and types
CREATE VIRTUAL TABLE IF NOT EXISTS identifiers_fts USING fts5(
    name, tokens, normalized_tokens, type_identifier,
    content='identifiers',
    content_rowid='id'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS identifiers_ai AFTER INSERT ON identifiers BEGIN
    INSERT INTO identifiers_fts(rowid, name, tokens, normalized_tokens, type_identifier)
    VALUES (new.id, new.name, new.tokens, new.normalized_tokens, new.type_identifier);
END;

CREATE TRIGGER IF NOT EXISTS identifiers_ad AFTER DELETE ON identifiers BEGIN
    INSERT INTO identifiers_fts(identifiers_fts, rowid, name, tokens, normalized_tokens, type_identifier)
    VALUES ('delete', old.id, old.name, old.tokens, old.normalized_tokens, old.type_identifier);
END;

CREATE TRIGGER IF NOT EXISTS identifiers_au AFTER UPDATE ON identifiers BEGIN
    INSERT INTO identifiers_fts(identifiers_fts, rowid, name, tokens, normalized_tokens, type_identifier)
    VALUES ('delete', old.id, old.name, old.tokens, old.normalized_tokens, old.type_identifier);
    INSERT INTO identifiers_fts(rowid, name, tokens, normalized_tokens, type_identifier)
    VALUES (new.id, new.name, new.tokens, new.normalized_tokens, new.type_identifier);
END;

-- Imports table
CREATE TABLE IF NOT EXISTS imports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    import_path TEXT NOT NULL,
    alias TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_imports_file ON imports(file_id);
CREATE INDEX IF NOT EXISTS idx_imports_path ON imports(import_path);
`

const migrationV1Down = `
DROP TRIGGER IF EXISTS identifiers_au;
DROP TRIGGER IF EXISTS identifiers_ad;
DROP TRIGGER IF EXISTS identifiers_ai;

DROP TABLE IF EXISTS imports;
DROP TABLE IF EXISTS identifiers_fts;
DROP TABLE IF EXISTS identifiers;
DROP TABLE IF EXISTS files;
DROP TABLE IF EXISTS projects;
DROP TABLE IF EXISTS schema_version;
`

const migrationV1_1Up = `
-- One row per indexing pass
CREATE TABLE IF NOT EXISTS index_runs (
    id TEXT PRIMARY KEY,
    project_id INTEGER NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    files_indexed INTEGER DEFAULT 0,
    files_skipped INTEGER DEFAULT 0,
    identifiers_extracted INTEGER DEFAULT 0,
    error_count INTEGER DEFAULT 0,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_index_runs_project ON index_runs(project_id, finished_at);
`

const migrationV1_1Down = `
DROP TABLE IF EXISTS index_runs;
`

// currentVersion returns the highest applied schema version, or 0.0.0
func currentVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	current := semver.MustParse("0.0.0")

	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return current, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var versionStr string
		if err := rows.Scan(&versionStr); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(versionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", versionStr, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// SchemaVersion returns the highest migration applied to db
func SchemaVersion(ctx context.Context, db *sql.DB) (string, error) {
	v, err := currentVersion(ctx, db)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !current.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		current = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return fmt.Errorf("no migrations to rollback")
	}

	// Find migration
	var migration *Migration
	for i := range AllMigrations {
		v, err := semver.NewVersion(AllMigrations[i].Version)
		if err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}

	if migration == nil {
		return fmt.Errorf("migration %s not found", current)
	}

	if _, err := db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}

	// The first migration drops schema_version itself
	var tableName string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
	}

	return nil
}
