package storage

import (
	"context"
	"strings"
	"time"

	"github.com/dshills/idtk/pkg/types"
)

// Storage defines the interface for persisting and querying indexed identifiers
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	GetFileByID(ctx context.Context, fileID int64) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Identifier operations
	UpsertIdentifier(ctx context.Context, identifier *Identifier) error
	GetIdentifier(ctx context.Context, identifierID int64) (*Identifier, error)
	ListIdentifiersByFile(ctx context.Context, fileID int64) ([]*Identifier, error)
	DeleteIdentifiersByFile(ctx context.Context, fileID int64) error

	// Search operations
	SearchText(ctx context.Context, projectID int64, query string, limit int, filters *SearchFilters) ([]TextResult, error)

	// Import operations
	UpsertImport(ctx context.Context, imp *Import) error
	ListImportsByFile(ctx context.Context, fileID int64) ([]*Import, error)
	DeleteImportsByFile(ctx context.Context, fileID int64) error

	// Index run operations
	RecordIndexRun(ctx context.Context, run *IndexRun) error
	ListIndexRuns(ctx context.Context, projectID int64, limit int) ([]*IndexRun, error)

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Project represents an indexed Go codebase
type Project struct {
	ID               int64
	RootPath         string
	ModuleName       string
	GoVersion        string
	TotalFiles       int
	TotalIdentifiers int
	IndexVersion     string
	LastIndexedAt    time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// File represents a tracked Go source file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root
	PackageName   string
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	ParseError    *string // Nullable
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Identifier is a declared name together with its analysis
type Identifier struct {
	ID          int64
	FileID      int64
	Name        string
	Species     string
	Modifiers   string // Space separated descriptions
	PackageName string
	Container   string

	// Declared type
	TypeDescriptor  string
	TypeIdentifier  string
	TypePackage     string
	TypeAcronym     string
	ArrayDimensions int

	// Name analysis
	Tokens           string // Space separated
	NormalizedTokens string // Space separated
	Acronym          string

	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	CreatedAt time.Time
}

// Import represents an import statement in a Go file
type Import struct {
	ID         int64
	FileID     int64
	ImportPath string
	Alias      string
	CreatedAt  time.Time
}

// IndexRun records one indexing pass over a project
type IndexRun struct {
	ID                   string // UUID
	ProjectID            int64
	StartedAt            time.Time
	FinishedAt           time.Time
	FilesIndexed         int
	FilesSkipped         int
	IdentifiersExtracted int
	ErrorCount           int
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	Species      []string // Filter by species description
	Packages     []string // Filter by package names
	FilePattern  string   // Glob pattern for file paths
	MinRelevance float64  // Minimum relevance score
}

// TextResult represents a result from full-text search
type TextResult struct {
	IdentifierID int64
	BM25Score    float64
}

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project          *Project
	FilesCount       int
	IdentifiersCount int
	ImportsCount     int
	SpeciesCounts    map[string]int
	IndexSizeMB      float64
	LastIndexedAt    time.Time
	LastRun          *IndexRun
	Health           HealthStatus
}

// HealthStatus represents the health of the index
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}

// ToTypesIdentifier converts a stored identifier to types.Identifier.
// Unknown species or modifier text is dropped.
func (i *Identifier) ToTypesIdentifier() types.Identifier {
	id := types.Identifier{
		Name:           i.Name,
		Package:        i.PackageName,
		Container:      i.Container,
		TypeDescriptor: i.TypeDescriptor,
		Start: types.Position{
			Line:   i.StartLine,
			Column: i.StartCol,
		},
		End: types.Position{
			Line:   i.EndLine,
			Column: i.EndCol,
		},
	}

	if species, err := types.SpeciesFor(i.Species); err == nil {
		id.Species = species
	}

	for _, description := range strings.Fields(i.Modifiers) {
		if m, err := types.ModifierFor(description); err == nil {
			id.Modifiers = append(id.Modifiers, m)
		}
	}

	return id
}

// FromTypesIdentifier converts types.Identifier to a storage Identifier.
// Analysis columns are left for the caller to fill.
func FromTypesIdentifier(id types.Identifier, fileID int64) *Identifier {
	modifiers := make([]string, len(id.Modifiers))
	for i, m := range id.Modifiers {
		modifiers[i] = m.Description()
	}

	return &Identifier{
		FileID:         fileID,
		Name:           id.Name,
		Species:        id.Species.Description(),
		Modifiers:      strings.Join(modifiers, " "),
		PackageName:    id.Package,
		Container:      id.Container,
		TypeDescriptor: id.TypeDescriptor,
		StartLine:      id.Start.Line,
		StartCol:       id.Start.Column,
		EndLine:        id.End.Line,
		EndCol:         id.End.Column,
	}
}
