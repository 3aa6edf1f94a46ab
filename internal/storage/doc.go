// Package storage provides SQLite-based persistence for indexed identifiers.
//
// The storage layer manages:
//   - Project metadata
//   - File information and content hashes
//   - Extracted identifiers and their name analysis
//   - Import statements
//   - A history of indexing runs
//   - Full-text search indexes
//
// # Database Schema
//
// Tables:
//   - projects: Project metadata (root path, module name, Go version)
//   - files: File paths and SHA-256 hashes
//   - identifiers: Declared names with species, modifiers and declared type
//   - identifiers_fts: FTS5 index over names, words and type identifiers
//   - imports: Import paths per file
//   - index_runs: One row per indexing pass, keyed by UUID
//   - schema_version: Applied migrations
//
// The FTS5 table uses identifiers as its external content and is kept in
// sync by triggers, so callers only write to identifiers.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.idtk/idtk.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	project := &storage.Project{RootPath: "/src/app", IndexVersion: "1.0.0"}
//	if err := store.CreateProject(ctx, project); err != nil {
//	    return err
//	}
//
// # Transactions
//
// Use transactions for atomic per-file updates:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.UpsertFile(ctx, file); err != nil {
//	    return err
//	}
//	if err := tx.DeleteIdentifiersByFile(ctx, file.ID); err != nil {
//	    return err
//	}
//	for _, id := range identifiers {
//	    if err := tx.UpsertIdentifier(ctx, id); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// The connection pool holds a single connection. Every Tx method runs on the
// transaction itself; calling the parent store while a Tx is open blocks.
//
// # Full-Text Search
//
// SearchText matches each whitespace separated query term as a quoted prefix
// and ranks by BM25:
//
//	results, err := store.SearchText(ctx, project.ID, "user count", 20, &storage.SearchFilters{
//	    Species: []string{"field", "local"},
//	})
//
// Scores are normalized into (0, 1], higher is better.
//
// # Build Tags
//
// The default build uses the pure Go modernc.org/sqlite driver. Building with
// the sqlite_cgo tag switches to github.com/mattn/go-sqlite3, which needs a C
// compiler and the sqlite_fts5 tag:
//
//	CGO_ENABLED=1 go build -tags "sqlite_cgo sqlite_fts5"
package storage
