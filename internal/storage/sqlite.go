package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyQuery is returned when a search query has no searchable terms
	ErrEmptyQuery = errors.New("empty search query")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Project operations

const projectColumns = `id, root_path, module_name, go_version, total_files, total_identifiers,
	index_version, last_indexed_at, created_at, updated_at`

func scanProject(row rowScanner) (*Project, error) {
	var project Project
	var moduleName, goVersion sql.NullString
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&project.ID, &project.RootPath, &moduleName, &goVersion,
		&project.TotalFiles, &project.TotalIdentifiers, &project.IndexVersion,
		&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	project.ModuleName = moduleName.String
	project.GoVersion = goVersion.String
	if lastIndexedAt.Valid {
		project.LastIndexedAt = lastIndexedAt.Time
	}
	return &project, nil
}

// createProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		INSERT INTO projects (root_path, module_name, go_version, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.RootPath, project.ModuleName, project.GoVersion,
		project.IndexVersion, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("failed to create project %s: %w", project.RootPath, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, project *Project) error {
	return s.createProjectWithQuerier(ctx, s.querier(), project)
}

// getProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getProjectWithQuerier(ctx context.Context, q querier, rootPath string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE root_path = ?`
	return scanProject(q.QueryRowContext(ctx, query, rootPath))
}

func (s *SQLiteStorage) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return s.getProjectWithQuerier(ctx, s.querier(), rootPath)
}

// getProjectByIDWithQuerier retrieves a project by ID
func (s *SQLiteStorage) getProjectByIDWithQuerier(ctx context.Context, q querier, projectID int64) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return scanProject(q.QueryRowContext(ctx, query, projectID))
}

// updateProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		UPDATE projects
		SET module_name = ?, go_version = ?, total_files = ?, total_identifiers = ?,
		    index_version = ?, last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.ModuleName, project.GoVersion, project.TotalFiles, project.TotalIdentifiers,
		project.IndexVersion, project.LastIndexedAt, now, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *Project) error {
	return s.updateProjectWithQuerier(ctx, s.querier(), project)
}

// File operations

const fileColumns = `id, project_id, file_path, package_name, content_hash, mod_time,
	size_bytes, parse_error, last_indexed_at, created_at, updated_at`

func scanFile(row rowScanner) (*File, error) {
	var file File
	var hash []byte
	var packageName, parseError sql.NullString
	err := row.Scan(
		&file.ID, &file.ProjectID, &file.FilePath, &packageName,
		&hash, &file.ModTime, &file.SizeBytes, &parseError,
		&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	file.PackageName = packageName.String
	copy(file.ContentHash[:], hash)
	if parseError.Valid {
		file.ParseError = &parseError.String
	}
	return &file, nil
}

// upsertFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertFileWithQuerier(ctx context.Context, q querier, file *File) error {
	query := `
		INSERT INTO files (project_id, file_path, package_name, content_hash, mod_time, size_bytes, parse_error, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, file_path) DO UPDATE SET
			package_name = excluded.package_name,
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			parse_error = excluded.parse_error,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		file.ProjectID, file.FilePath, file.PackageName, file.ContentHash[:],
		file.ModTime, file.SizeBytes, file.ParseError, now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	file.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return s.upsertFileWithQuerier(ctx, s.querier(), file)
}

// getFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileWithQuerier(ctx context.Context, q querier, projectID int64, filePath string) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? AND file_path = ?`
	return scanFile(q.QueryRowContext(ctx, query, projectID, filePath))
}

func (s *SQLiteStorage) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return s.getFileWithQuerier(ctx, s.querier(), projectID, filePath)
}

// getFileByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileByIDWithQuerier(ctx context.Context, q querier, fileID int64) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ?`
	return scanFile(q.QueryRowContext(ctx, query, fileID))
}

func (s *SQLiteStorage) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return s.getFileByIDWithQuerier(ctx, s.querier(), fileID)
}

// deleteFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM files WHERE id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID int64) error {
	return s.deleteFileWithQuerier(ctx, s.querier(), fileID)
}

// listFilesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listFilesWithQuerier(ctx context.Context, q querier, projectID int64) ([]*File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE project_id = ? ORDER BY file_path`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return s.listFilesWithQuerier(ctx, s.querier(), projectID)
}

// Identifier operations

const identifierColumns = `id, file_id, name, species, modifiers, package_name, container,
	type_descriptor, type_identifier, type_package, type_acronym, array_dimensions,
	tokens, normalized_tokens, acronym, start_line, start_col, end_line, end_col, created_at`

func scanIdentifier(row rowScanner) (*Identifier, error) {
	var id Identifier
	var modifiers, container, typeIdentifier, typePackage, typeAcronym sql.NullString
	var tokens, normalized, acronym sql.NullString
	err := row.Scan(
		&id.ID, &id.FileID, &id.Name, &id.Species, &modifiers, &id.PackageName, &container,
		&id.TypeDescriptor, &typeIdentifier, &typePackage, &typeAcronym, &id.ArrayDimensions,
		&tokens, &normalized, &acronym,
		&id.StartLine, &id.StartCol, &id.EndLine, &id.EndCol, &id.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	id.Modifiers = modifiers.String
	id.Container = container.String
	id.TypeIdentifier = typeIdentifier.String
	id.TypePackage = typePackage.String
	id.TypeAcronym = typeAcronym.String
	id.Tokens = tokens.String
	id.NormalizedTokens = normalized.String
	id.Acronym = acronym.String
	return &id, nil
}

// upsertIdentifierWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertIdentifierWithQuerier(ctx context.Context, q querier, identifier *Identifier) error {
	// Use atomic INSERT ... ON CONFLICT to avoid race conditions
	query := `
		INSERT INTO identifiers (
			file_id, name, species, modifiers, package_name, container,
			type_descriptor, type_identifier, type_package, type_acronym, array_dimensions,
			tokens, normalized_tokens, acronym,
			start_line, start_col, end_line, end_col, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id, name, start_line, start_col)
		DO UPDATE SET
			species = excluded.species,
			modifiers = excluded.modifiers,
			package_name = excluded.package_name,
			container = excluded.container,
			type_descriptor = excluded.type_descriptor,
			type_identifier = excluded.type_identifier,
			type_package = excluded.type_package,
			type_acronym = excluded.type_acronym,
			array_dimensions = excluded.array_dimensions,
			tokens = excluded.tokens,
			normalized_tokens = excluded.normalized_tokens,
			acronym = excluded.acronym,
			end_line = excluded.end_line,
			end_col = excluded.end_col
		RETURNING id, created_at
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		identifier.FileID, identifier.Name, identifier.Species, identifier.Modifiers,
		identifier.PackageName, identifier.Container,
		identifier.TypeDescriptor, identifier.TypeIdentifier, identifier.TypePackage,
		identifier.TypeAcronym, identifier.ArrayDimensions,
		identifier.Tokens, identifier.NormalizedTokens, identifier.Acronym,
		identifier.StartLine, identifier.StartCol, identifier.EndLine, identifier.EndCol, now,
	).Scan(&identifier.ID, &identifier.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert identifier: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) UpsertIdentifier(ctx context.Context, identifier *Identifier) error {
	return s.upsertIdentifierWithQuerier(ctx, s.querier(), identifier)
}

// getIdentifierWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getIdentifierWithQuerier(ctx context.Context, q querier, identifierID int64) (*Identifier, error) {
	query := `SELECT ` + identifierColumns + ` FROM identifiers WHERE id = ?`
	return scanIdentifier(q.QueryRowContext(ctx, query, identifierID))
}

func (s *SQLiteStorage) GetIdentifier(ctx context.Context, identifierID int64) (*Identifier, error) {
	return s.getIdentifierWithQuerier(ctx, s.querier(), identifierID)
}

// listIdentifiersByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listIdentifiersByFileWithQuerier(ctx context.Context, q querier, fileID int64) ([]*Identifier, error) {
	query := `SELECT ` + identifierColumns + ` FROM identifiers WHERE file_id = ? ORDER BY start_line, start_col`
	rows, err := q.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	identifiers := make([]*Identifier, 0)
	for rows.Next() {
		id, err := scanIdentifier(rows)
		if err != nil {
			return nil, err
		}
		identifiers = append(identifiers, id)
	}
	return identifiers, rows.Err()
}

func (s *SQLiteStorage) ListIdentifiersByFile(ctx context.Context, fileID int64) ([]*Identifier, error) {
	return s.listIdentifiersByFileWithQuerier(ctx, s.querier(), fileID)
}

// deleteIdentifiersByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteIdentifiersByFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM identifiers WHERE file_id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteIdentifiersByFile(ctx context.Context, fileID int64) error {
	return s.deleteIdentifiersByFileWithQuerier(ctx, s.querier(), fileID)
}

// Search operations

// searchTextWithQuerier runs an FTS5 query over identifier names, words and
// type names. Every whitespace separated term of query is matched as a prefix
// and any term may match.
func (s *SQLiteStorage) searchTextWithQuerier(ctx context.Context, q querier, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	match := MatchQuery(strings.Fields(query))
	if match == "" {
		return nil, ErrEmptyQuery
	}

	sqlQuery := `
		SELECT
			i.id AS identifier_id,
			bm25(identifiers_fts) AS score
		FROM identifiers_fts
		INNER JOIN identifiers i ON identifiers_fts.rowid = i.id
		INNER JOIN files f ON i.file_id = f.id
		WHERE identifiers_fts MATCH ?
		AND f.project_id = ?
	`
	args := []interface{}{match, projectID}

	sqlQuery, args = applyTextFilters(sqlQuery, args, filters)

	// Order by BM25 score (lower is better) and limit
	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectTextResults(rows, filters)
}

func (s *SQLiteStorage) SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return s.searchTextWithQuerier(ctx, s.querier(), projectID, query, limit, filters)
}

// MatchQuery builds an FTS5 expression matching any of terms as a prefix.
// Each term is quoted, so FTS5 operators and column filters in terms are literal.
func MatchQuery(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		// Terms without letters or digits tokenize to nothing
		if strings.IndexFunc(term, isWordRune) < 0 {
			continue
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"*`)
	}
	return strings.Join(quoted, " OR ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// applyTextFilters adds WHERE clause filters for text search
func applyTextFilters(query string, args []interface{}, filters *SearchFilters) (string, []interface{}) {
	if filters == nil {
		return query, args
	}

	query, args = appendIn(query, args, "i.species", filters.Species)
	query, args = appendIn(query, args, "i.package_name", filters.Packages)

	if filters.FilePattern != "" {
		query += " AND f.file_path GLOB ?"
		args = append(args, filters.FilePattern)
	}

	return query, args
}

// appendIn adds "AND column IN (...)" for the non-empty values
func appendIn(query string, args []interface{}, column string, values []string) (string, []interface{}) {
	placeholders := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}
	if len(placeholders) == 0 {
		return query, args
	}
	return query + " AND " + column + " IN (" + strings.Join(placeholders, ",") + ")", args
}

// collectTextResults processes text search results and normalizes scores
func collectTextResults(rows *sql.Rows, filters *SearchFilters) ([]TextResult, error) {
	results := make([]TextResult, 0)

	for rows.Next() {
		var result TextResult
		if err := rows.Scan(&result.IdentifierID, &result.BM25Score); err != nil {
			return nil, err
		}

		// Convert BM25 score (negative, lower is better) to positive normalized score
		// BM25 scores are typically in range [-50, 0]
		result.BM25Score = 1.0 / (1.0 + math.Abs(result.BM25Score)/50.0)

		// Apply minimum relevance filter
		if filters != nil && filters.MinRelevance > 0 && result.BM25Score < filters.MinRelevance {
			continue
		}

		results = append(results, result)
	}

	return results, rows.Err()
}

// Import operations

// upsertImportWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertImportWithQuerier(ctx context.Context, q querier, imp *Import) error {
	query := `
		INSERT INTO imports (file_id, import_path, alias, created_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query, imp.FileID, imp.ImportPath, imp.Alias, now)
	if err != nil {
		return fmt.Errorf("failed to upsert import: %w", err)
	}

	if imp.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			imp.ID = id
		}
	}
	imp.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertImport(ctx context.Context, imp *Import) error {
	return s.upsertImportWithQuerier(ctx, s.querier(), imp)
}

// listImportsByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listImportsByFileWithQuerier(ctx context.Context, q querier, fileID int64) ([]*Import, error) {
	query := `
		SELECT id, file_id, import_path, alias, created_at
		FROM imports
		WHERE file_id = ?
		ORDER BY import_path
	`
	rows, err := q.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	imports := make([]*Import, 0)
	for rows.Next() {
		var imp Import
		var alias sql.NullString
		if err := rows.Scan(&imp.ID, &imp.FileID, &imp.ImportPath, &alias, &imp.CreatedAt); err != nil {
			return nil, err
		}
		imp.Alias = alias.String
		imports = append(imports, &imp)
	}
	return imports, rows.Err()
}

func (s *SQLiteStorage) ListImportsByFile(ctx context.Context, fileID int64) ([]*Import, error) {
	return s.listImportsByFileWithQuerier(ctx, s.querier(), fileID)
}

// deleteImportsByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteImportsByFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM imports WHERE file_id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteImportsByFile(ctx context.Context, fileID int64) error {
	return s.deleteImportsByFileWithQuerier(ctx, s.querier(), fileID)
}

// Index run operations

// recordIndexRunWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) recordIndexRunWithQuerier(ctx context.Context, q querier, run *IndexRun) error {
	if run.ID == "" {
		return fmt.Errorf("failed to record index run: missing run ID")
	}

	query := `
		INSERT INTO index_runs (
			id, project_id, started_at, finished_at,
			files_indexed, files_skipped, identifiers_extracted, error_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		run.ID, run.ProjectID, run.StartedAt, run.FinishedAt,
		run.FilesIndexed, run.FilesSkipped, run.IdentifiersExtracted, run.ErrorCount)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("failed to record index run %s: %w", run.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to record index run: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) RecordIndexRun(ctx context.Context, run *IndexRun) error {
	return s.recordIndexRunWithQuerier(ctx, s.querier(), run)
}

// listIndexRunsWithQuerier returns the most recent runs first
func (s *SQLiteStorage) listIndexRunsWithQuerier(ctx context.Context, q querier, projectID int64, limit int) ([]*IndexRun, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
		SELECT id, project_id, started_at, finished_at,
		       files_indexed, files_skipped, identifiers_extracted, error_count
		FROM index_runs
		WHERE project_id = ?
		ORDER BY finished_at DESC
		LIMIT ?
	`
	rows, err := q.QueryContext(ctx, query, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*IndexRun, 0)
	for rows.Next() {
		var run IndexRun
		err := rows.Scan(
			&run.ID, &run.ProjectID, &run.StartedAt, &run.FinishedAt,
			&run.FilesIndexed, &run.FilesSkipped, &run.IdentifiersExtracted, &run.ErrorCount,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStorage) ListIndexRuns(ctx context.Context, projectID int64, limit int) ([]*IndexRun, error) {
	return s.listIndexRunsWithQuerier(ctx, s.querier(), projectID, limit)
}

// Status operations

// getStatusWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, projectID int64) (*ProjectStatus, error) {
	project, err := s.getProjectByIDWithQuerier(ctx, q, projectID)
	if err != nil {
		return nil, err
	}

	status := &ProjectStatus{
		Project:       project,
		LastIndexedAt: project.LastIndexedAt,
		SpeciesCounts: make(map[string]int),
	}

	// Count files
	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE project_id = ?", projectID).Scan(&status.FilesCount)
	if err != nil {
		return nil, err
	}

	// Count imports
	err = q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM imports im
		JOIN files f ON im.file_id = f.id
		WHERE f.project_id = ?
	`, projectID).Scan(&status.ImportsCount)
	if err != nil {
		return nil, err
	}

	// Count identifiers per species
	rows, err := q.QueryContext(ctx, `
		SELECT i.species, COUNT(*) FROM identifiers i
		JOIN files f ON i.file_id = f.id
		WHERE f.project_id = ?
		GROUP BY i.species
	`, projectID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var species string
		var count int
		if err := rows.Scan(&species, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		status.SpeciesCounts[species] = count
		status.IdentifiersCount += count
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	runs, err := s.listIndexRunsWithQuerier(ctx, q, projectID, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 {
		status.LastRun = runs[0]
	}

	// Calculate database size
	var pageCount, pageSize int
	err = q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexesBuilt:    true, // FTS indexes are created with migrations
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return s.getStatusWithQuerier(ctx, s.querier(), projectID)
}

// Transaction implementations. Every operation runs on the transaction's
// connection; with a single pooled connection, using the DB here would block.

func (t *sqliteTx) CreateProject(ctx context.Context, project *Project) error {
	return t.storage.createProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return t.storage.getProjectWithQuerier(ctx, t.querier(), rootPath)
}

func (t *sqliteTx) UpdateProject(ctx context.Context, project *Project) error {
	return t.storage.updateProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return t.storage.upsertFileWithQuerier(ctx, t.querier(), file)
}

func (t *sqliteTx) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return t.storage.getFileWithQuerier(ctx, t.querier(), projectID, filePath)
}

func (t *sqliteTx) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return t.storage.getFileByIDWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return t.storage.listFilesWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) UpsertIdentifier(ctx context.Context, identifier *Identifier) error {
	return t.storage.upsertIdentifierWithQuerier(ctx, t.querier(), identifier)
}

func (t *sqliteTx) GetIdentifier(ctx context.Context, identifierID int64) (*Identifier, error) {
	return t.storage.getIdentifierWithQuerier(ctx, t.querier(), identifierID)
}

func (t *sqliteTx) ListIdentifiersByFile(ctx context.Context, fileID int64) ([]*Identifier, error) {
	return t.storage.listIdentifiersByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteIdentifiersByFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteIdentifiersByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return t.storage.searchTextWithQuerier(ctx, t.querier(), projectID, query, limit, filters)
}

func (t *sqliteTx) UpsertImport(ctx context.Context, imp *Import) error {
	return t.storage.upsertImportWithQuerier(ctx, t.querier(), imp)
}

func (t *sqliteTx) ListImportsByFile(ctx context.Context, fileID int64) ([]*Import, error) {
	return t.storage.listImportsByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteImportsByFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteImportsByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) RecordIndexRun(ctx context.Context, run *IndexRun) error {
	return t.storage.recordIndexRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) ListIndexRuns(ctx context.Context, projectID int64, limit int) ([]*IndexRun, error) {
	return t.storage.listIndexRunsWithQuerier(ctx, t.querier(), projectID, limit)
}

func (t *sqliteTx) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
