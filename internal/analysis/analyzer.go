package analysis

import (
	"fmt"
	"strings"

	"github.com/dshills/idtk/pkg/contraction"
	"github.com/dshills/idtk/pkg/subtoken"
	"github.com/dshills/idtk/pkg/tokenizer"
	"github.com/dshills/idtk/pkg/typename"
	"github.com/dshills/idtk/pkg/types"
)

// Options configures an Analyzer
type Options struct {
	// Dictionary expands contractions when ExpandContractions is set. nil disables expansion.
	Dictionary         *contraction.Dictionary
	ExpandContractions bool
	SubPolicy          subtoken.Policy

	// MaxDepth caps generic nesting; <= 0 uses typename.DefaultMaxDepth
	MaxDepth int

	// CacheSize bounds the descriptor cache; 0 disables caching
	CacheSize int
}

// AnalyzedIdentifier is the analysis of one name and its declared type
type AnalyzedIdentifier struct {
	Name string

	// Tokens are the words of the name as written
	Tokens []string

	// Normalized are the tokens after sub particle handling and contraction expansion
	Normalized []string

	// Acronym is the lower case initials of Tokens
	Acronym string

	// Type is the parsed declared type
	Type *typename.TypeName
}

// Analyzer is safe for concurrent use
type Analyzer struct {
	parser typename.Parser
	dict   *contraction.Dictionary
	policy subtoken.Policy
	cache  *Cache
}

// New creates an analyzer
func New(opts Options) *Analyzer {
	a := &Analyzer{
		parser: typename.Parser{MaxDepth: opts.MaxDepth},
		policy: opts.SubPolicy,
	}
	if opts.ExpandContractions {
		a.dict = opts.Dictionary
	}
	if opts.CacheSize > 0 {
		a.cache = NewCache(opts.CacheSize)
	}
	return a
}

// Tokenize splits name and returns both the raw and the normalized tokens
func (a *Analyzer) Tokenize(name string) (tokens, normalized []string) {
	tokens = tokenizer.Tokenize(name)
	normalized = subtoken.Process(tokens, a.policy)
	if a.dict != nil {
		normalized = a.dict.Expand(normalized)
	}
	return tokens, normalized
}

// ParseType parses a descriptor, consulting the cache first
func (a *Analyzer) ParseType(descriptor string) (*typename.TypeName, error) {
	return a.parseType("", descriptor)
}

// ParseTypeInPackage parses a descriptor recording packageName as its package
func (a *Analyzer) ParseTypeInPackage(packageName, descriptor string) (*typename.TypeName, error) {
	if packageName == "" {
		return nil, fmt.Errorf("%w: empty package name", types.ErrInvalidArgument)
	}
	return a.parseType(packageName, descriptor)
}

func (a *Analyzer) parseType(packageHint, descriptor string) (*typename.TypeName, error) {
	key := cacheKey(packageHint, descriptor)
	if a.cache != nil {
		if tn, ok := a.cache.Get(key); ok {
			return tn, nil
		}
	}

	var (
		tn  *typename.TypeName
		err error
	)
	if packageHint != "" {
		tn, err = a.parser.ParseInPackage(packageHint, descriptor)
	} else {
		tn, err = a.parser.Parse(descriptor)
	}
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(key, tn)
	}
	return tn, nil
}

// Analyze tokenizes name and parses its type descriptor
func (a *Analyzer) Analyze(name, descriptor string) (*AnalyzedIdentifier, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty identifier name", types.ErrInvalidArgument)
	}

	tn, err := a.ParseType(descriptor)
	if err != nil {
		return nil, fmt.Errorf("failed to parse type of %s: %w", name, err)
	}

	tokens, normalized := a.Tokenize(name)
	return &AnalyzedIdentifier{
		Name:       name,
		Tokens:     tokens,
		Normalized: normalized,
		Acronym:    Acronym(tokens),
		Type:       tn,
	}, nil
}

// AnalyzeIdentifier analyzes an extracted identifier
func (a *Analyzer) AnalyzeIdentifier(id *types.Identifier) (*AnalyzedIdentifier, error) {
	descriptor := id.TypeDescriptor
	if descriptor == "" {
		descriptor = typename.NoType
	}
	return a.Analyze(id.Name, descriptor)
}

// CacheSize returns the number of cached descriptors
func (a *Analyzer) CacheSize() int {
	if a.cache == nil {
		return 0
	}
	return a.cache.Size()
}

// Acronym returns the lower case first letters of tokens
func Acronym(tokens []string) string {
	var b strings.Builder
	for _, token := range tokens {
		for _, r := range token {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToLower(b.String())
}
