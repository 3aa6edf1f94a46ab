package types

import "errors"

// Domain errors shared by the idtk packages
var (
	// ErrInvalidArgument is returned for empty descriptors and unknown closed-set descriptions
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNestingTooDeep is returned when a type descriptor nests generics beyond the parser limit
	ErrNestingTooDeep = errors.New("generic nesting too deep")
	// ErrMalformedDictionary is returned when a contraction resource cannot be read or parsed
	ErrMalformedDictionary = errors.New("malformed contraction dictionary")

	// Search result errors
	ErrInvalidIdentifierID   = errors.New("invalid identifier ID")
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
	ErrMissingFileInfo       = errors.New("file info is required")
)
