package types

// SearchResult represents a single identifier search hit
type SearchResult struct {
	// Identification
	IdentifierID int64
	Rank         int // Position in result set (1-based)

	// Scoring
	RelevanceScore float64 // Normalized name similarity to the query

	// Metadata
	Name           string
	Species        Species
	Tokens         []string
	TypeDescriptor string
	TypeAcronym    string
	File           *FileInfo
}

// FileInfo contains file metadata for a search result
type FileInfo struct {
	Path      string // Relative to project root
	Package   string
	StartLine int
	EndLine   int
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.IdentifierID == 0 {
		return ErrInvalidIdentifierID
	}

	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}

	if sr.File == nil {
		return ErrMissingFileInfo
	}

	return nil
}
