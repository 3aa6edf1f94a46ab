// Package indexer coordinates the end-to-end indexing pipeline for Go codebases.
//
// The indexer walks a project, extracts every declared identifier with the
// AST parser, analyzes each name and declared type, and stores the result so
// that identifiers can be searched by the words they are made of.
//
// # Basic Usage
//
//	idx := indexer.New(store, analysis.New(analysis.Options{
//	    Dictionary:         contraction.MustLoadDefault(),
//	    ExpandContractions: true,
//	    CacheSize:          analysis.DefaultCacheSize,
//	}))
//
//	stats, err := idx.IndexProject(ctx, "/path/to/project", &indexer.Config{
//	    IncludeTests: true,
//	})
//
//	fmt.Printf("Indexed %d files in %v\n", stats.FilesIndexed, stats.Duration)
//
// # Indexing Pipeline
//
//  1. Project Discovery: find all .go files, skipping vendor, hidden,
//     underscore and testdata directories
//  2. Incremental Decision: compare SHA-256 content hashes with the stored
//     ones and skip unchanged files
//  3. Parse & Analyze: extract identifiers and analyze them (parallel,
//     bounded by Config.Workers)
//  4. Store: replace each changed file's identifiers and imports, one
//     transaction per Config.BatchSize files
//  5. Cleanup: remove files that no longer exist on disk
//  6. Record: update project totals and store an index run under a UUID
//
// # Errors
//
// A file that cannot be read is counted in FilesFailed. Syntax errors and
// type descriptors that fail to parse do not fail the file; they are listed
// in Statistics.ErrorMessages and the remaining identifiers are stored. Any
// storage error aborts the run.
//
// # Concurrency
//
// Indexer is safe for concurrent use, but two runs over the same project
// race on the same rows. Callers that accept requests concurrently guard
// runs with an IndexLock:
//
//	if !lock.TryAcquire() {
//	    return errBusy
//	}
//	defer lock.Release()
package indexer
