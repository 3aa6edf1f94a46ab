package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dshills/idtk/internal/analysis"
	"github.com/dshills/idtk/internal/parser"
	"github.com/dshills/idtk/internal/storage"
	"github.com/dshills/idtk/pkg/types"
)

const (
	// DefaultBatchSize is the number of files written per transaction
	DefaultBatchSize = 20
)

// Indexer coordinates the indexing pipeline: parse -> analyze -> store
type Indexer struct {
	parser   *parser.Parser
	analyzer *analysis.Analyzer
	storage  storage.Storage
}

// Config contains configuration for the indexer
type Config struct {
	Workers       int  // Number of concurrent workers (default: runtime.NumCPU())
	BatchSize     int  // Number of files to commit per transaction (default: 20)
	IncludeTests  bool // Whether to index test files (default: true)
	IncludeVendor bool // Whether to index vendor directory (default: false)
}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	RunID                string
	FilesIndexed         int
	FilesSkipped         int
	FilesFailed          int
	FilesRemoved         int
	IdentifiersExtracted int
	Duration             time.Duration
	ErrorMessages        []string
}

// New creates a new Indexer instance
func New(store storage.Storage, analyzer *analysis.Analyzer) *Indexer {
	return &Indexer{
		parser:   parser.New(),
		analyzer: analyzer,
		storage:  store,
	}
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		BatchSize:    DefaultBatchSize,
		IncludeTests: true,
	}
}

// preparedFile is a parsed and analyzed file waiting to be stored
type preparedFile struct {
	relPath     string
	hash        [32]byte
	modTime     time.Time
	size        int64
	result      *types.ParseResult
	identifiers []*storage.Identifier
}

// IndexProject indexes an entire Go project. Files whose content hash is
// unchanged since the last run are skipped and files that disappeared from
// disk are removed from the index.
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = DefaultConfig()
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat project: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrInvalidArgument, absRoot)
	}

	startTime := time.Now()
	stats := &Statistics{
		RunID:         uuid.NewString(),
		ErrorMessages: make([]string, 0),
	}

	// Get or create project
	project, err := idx.getOrCreateProject(ctx, absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	// Discover Go files
	files, err := discoverFiles(absRoot, config)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	known, err := idx.knownFiles(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed files: %w", err)
	}

	prepared, err := idx.prepareFiles(ctx, absRoot, files, known, workers, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to index files: %w", err)
	}

	if err := idx.storeFiles(ctx, project, prepared, batchSize, stats); err != nil {
		return nil, fmt.Errorf("failed to store files: %w", err)
	}

	if err := idx.removeMissing(ctx, absRoot, files, known, stats); err != nil {
		return nil, fmt.Errorf("failed to remove deleted files: %w", err)
	}

	// Update project statistics
	if err := idx.updateProjectStats(ctx, project, absRoot); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	stats.Duration = time.Since(startTime)

	run := &storage.IndexRun{
		ID:                   stats.RunID,
		ProjectID:            project.ID,
		StartedAt:            startTime,
		FinishedAt:           time.Now(),
		FilesIndexed:         stats.FilesIndexed,
		FilesSkipped:         stats.FilesSkipped,
		IdentifiersExtracted: stats.IdentifiersExtracted,
		ErrorCount:           len(stats.ErrorMessages),
	}
	if err := idx.storage.RecordIndexRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record index run: %w", err)
	}

	return stats, nil
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	// Try to get existing project
	project, err := idx.storage.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	// Create new project
	project = &storage.Project{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion,
	}

	// Try to extract module info from go.mod
	if modInfo, err := parseGoMod(filepath.Join(rootPath, "go.mod")); err == nil {
		project.ModuleName = modInfo.Module
		project.GoVersion = modInfo.GoVersion
	}

	if err := idx.storage.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// discoverFiles finds all Go files in the project
func discoverFiles(rootPath string, config *Config) ([]string, error) {
	var files []string

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == rootPath {
				return nil
			}
			// Skip vendor unless explicitly included
			if !config.IncludeVendor && d.Name() == "vendor" {
				return filepath.SkipDir
			}
			// Skip hidden directories and Go tool ignored ones
			if strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") || d.Name() == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}

		// Check if it's a Go file
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		// Skip test files unless explicitly included
		if !config.IncludeTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// knownFiles maps relative path to the stored file record
func (idx *Indexer) knownFiles(ctx context.Context, projectID int64) (map[string]*storage.File, error) {
	files, err := idx.storage.ListFiles(ctx, projectID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]*storage.File, len(files))
	for _, f := range files {
		known[f.FilePath] = f
	}
	return known, nil
}

// prepareFiles hashes, parses and analyzes files concurrently. Nothing is
// written to storage here. Unchanged files are counted as skipped.
func (idx *Indexer) prepareFiles(ctx context.Context, rootPath string, files []string,
	known map[string]*storage.File, workers int, stats *Statistics) ([]*preparedFile, error) {

	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex // Protects prepared and stats
	prepared := make([]*preparedFile, 0, len(files))

	for _, filePath := range files {
		if err := sem.Acquire(gctx, 1); err != nil {
			break // Context cancelled; reported below
		}

		g.Go(func() error {
			defer sem.Release(1)

			pf, skip, err := idx.prepareFile(rootPath, filePath, known)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.FilesFailed++
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
			case skip:
				stats.FilesSkipped++
			default:
				prepared = append(prepared, pf)
			}
			return nil // Continue with other files
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Keep batches deterministic regardless of worker scheduling
	sort.Slice(prepared, func(i, j int) bool { return prepared[i].relPath < prepared[j].relPath })
	return prepared, nil
}

// prepareFile reads one file and extracts and analyzes its identifiers.
// skip is true when the stored content hash matches.
func (idx *Indexer) prepareFile(rootPath, filePath string, known map[string]*storage.File) (pf *preparedFile, skip bool, err error) {
	relPath, err := relativePath(rootPath, filePath)
	if err != nil {
		return nil, false, err
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false, err
	}

	pf = &preparedFile{
		relPath: relPath,
		hash:    sha256.Sum256(content),
		modTime: info.ModTime(),
		size:    info.Size(),
	}

	if existing, ok := known[relPath]; ok && existing.ContentHash == pf.hash {
		return nil, true, nil
	}

	pf.result = idx.parser.ParseSource(filePath, content)
	pf.identifiers = make([]*storage.Identifier, 0, len(pf.result.Identifiers))

	for i := range pf.result.Identifiers {
		id := &pf.result.Identifiers[i]
		analyzed, err := idx.analyzer.AnalyzeIdentifier(id)
		if err != nil {
			pf.result.AddIdentifierError(filePath, id, err)
			continue
		}
		pf.identifiers = append(pf.identifiers, toStorageIdentifier(id, analyzed))
	}

	return pf, false, nil
}

// relativePath returns filePath relative to rootPath with forward slashes
func relativePath(rootPath, filePath string) (string, error) {
	rel, err := filepath.Rel(rootPath, filePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// toStorageIdentifier flattens an extracted identifier and its analysis
func toStorageIdentifier(id *types.Identifier, analyzed *analysis.AnalyzedIdentifier) *storage.Identifier {
	rec := storage.FromTypesIdentifier(*id, 0)
	rec.Tokens = strings.Join(analyzed.Tokens, " ")
	rec.NormalizedTokens = strings.Join(analyzed.Normalized, " ")
	rec.Acronym = analyzed.Acronym

	tn := analyzed.Type
	if rec.TypeDescriptor == "" {
		rec.TypeDescriptor = tn.String()
	}
	if !tn.IsNoType() {
		rec.TypeIdentifier = tn.IdentifierName()
		rec.TypePackage = tn.PackageName()
		rec.TypeAcronym = tn.TypeAcronym()
		rec.ArrayDimensions = tn.ArrayDimensions()
	}
	return rec
}

// storeFiles writes prepared files in batches, one transaction per batch
func (idx *Indexer) storeFiles(ctx context.Context, project *storage.Project, prepared []*preparedFile,
	batchSize int, stats *Statistics) error {

	for i := 0; i < len(prepared); i += batchSize {
		end := i + batchSize
		if end > len(prepared) {
			end = len(prepared)
		}
		if err := idx.storeBatch(ctx, project, prepared[i:end], stats); err != nil {
			return err
		}
	}
	return nil
}

// storeBatch stores a batch of files within a transaction
func (idx *Indexer) storeBatch(ctx context.Context, project *storage.Project, batch []*preparedFile, stats *Statistics) error {
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	indexed, extracted := 0, 0
	for _, pf := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := storeFile(ctx, tx, project, pf)
		if err != nil {
			return fmt.Errorf("%s: %w", pf.relPath, err)
		}
		indexed++
		extracted += n
		for _, pe := range pf.result.Errors {
			stats.ErrorMessages = append(stats.ErrorMessages,
				fmt.Sprintf("%s:%s", pf.relPath, pe.Error()))
		}
	}

	// Commit the batch
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	stats.FilesIndexed += indexed
	stats.IdentifiersExtracted += extracted
	return nil
}

// storeFile replaces the stored identifiers and imports of one file
func storeFile(ctx context.Context, store storage.Storage, project *storage.Project, pf *preparedFile) (int, error) {
	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    pf.relPath,
		PackageName: pf.result.PackageName,
		ContentHash: pf.hash,
		ModTime:     pf.modTime,
		SizeBytes:   pf.size,
	}

	// Only syntax errors mark the file; identifier errors are reported per run
	if msg, ok := pf.result.SyntaxError(); ok {
		file.ParseError = &msg
	}

	if err := store.UpsertFile(ctx, file); err != nil {
		return 0, err
	}

	// File changed - delete old rows before re-indexing
	if err := store.DeleteIdentifiersByFile(ctx, file.ID); err != nil {
		return 0, fmt.Errorf("failed to delete old identifiers: %w", err)
	}
	if err := store.DeleteImportsByFile(ctx, file.ID); err != nil {
		return 0, fmt.Errorf("failed to delete old imports: %w", err)
	}

	// Store imports
	for _, imp := range pf.result.Imports {
		impRecord := &storage.Import{
			FileID:     file.ID,
			ImportPath: imp.Path,
			Alias:      imp.Alias,
		}
		if err := store.UpsertImport(ctx, impRecord); err != nil {
			return 0, fmt.Errorf("failed to store import: %w", err)
		}
	}

	// Store identifiers
	for _, id := range pf.identifiers {
		id.FileID = file.ID
		if err := store.UpsertIdentifier(ctx, id); err != nil {
			return 0, fmt.Errorf("failed to store identifier %s: %w", id.Name, err)
		}
	}

	return len(pf.identifiers), nil
}

// removeMissing deletes files that were indexed before but are gone from disk
func (idx *Indexer) removeMissing(ctx context.Context, rootPath string, files []string,
	known map[string]*storage.File, stats *Statistics) error {

	onDisk := make(map[string]bool, len(files))
	for _, filePath := range files {
		if rel, err := relativePath(rootPath, filePath); err == nil {
			onDisk[rel] = true
		}
	}

	for relPath, f := range known {
		if onDisk[relPath] {
			continue
		}
		if err := idx.storage.DeleteFile(ctx, f.ID); err != nil {
			return err
		}
		stats.FilesRemoved++
	}
	return nil
}

// updateProjectStats updates the project's file and identifier counts
func (idx *Indexer) updateProjectStats(ctx context.Context, project *storage.Project, rootPath string) error {
	status, err := idx.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return err
	}

	// go.mod may have changed since the project was created
	if modInfo, err := parseGoMod(filepath.Join(rootPath, "go.mod")); err == nil {
		project.ModuleName = modInfo.Module
		project.GoVersion = modInfo.GoVersion
	}

	project.TotalFiles = status.FilesCount
	project.TotalIdentifiers = status.IdentifiersCount
	project.LastIndexedAt = time.Now()

	return idx.storage.UpdateProject(ctx, project)
}

// goModInfo contains parsed go.mod information
type goModInfo struct {
	Module    string
	GoVersion string
}

// parseGoMod extracts the module path and go directive from a go.mod file
func parseGoMod(goModPath string) (*goModInfo, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, err
	}

	f, err := modfile.ParseLax(goModPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}

	info := &goModInfo{}
	if f.Module != nil {
		info.Module = f.Module.Mod.Path
	}
	if f.Go != nil {
		info.GoVersion = f.Go.Version
	}
	return info, nil
}
