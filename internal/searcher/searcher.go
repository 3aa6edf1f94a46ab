package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/idtk/internal/storage"
	"github.com/dshills/idtk/pkg/types"
)

// SearchMode defines how candidates are ranked
type SearchMode string

const (
	SearchModeHybrid  SearchMode = "hybrid"  // BM25 + name similarity with RRF
	SearchModeName    SearchMode = "name"    // Name similarity only
	SearchModeKeyword SearchMode = "keyword" // BM25 text search only
)

const (
	// DefaultLimit is used when a request has no limit
	DefaultLimit = 10
	// MaxLimit caps the number of results per request
	MaxLimit = 100

	// candidateFactor widens the FTS query so reranking has room to work
	candidateFactor = 5
	maxCandidates   = 500
)

// ErrEmptyQuery is returned for blank queries
var ErrEmptyQuery = errors.New("query cannot be empty")

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query       string
	Limit       int
	Mode        SearchMode
	Filters     *storage.SearchFilters
	ProjectID   int64
	UseCache    bool // Whether to use query cache
	CacheTTL    time.Duration
	RRFConstant float64 // k value for Reciprocal Rank Fusion (default 60)
}

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results      []types.SearchResult
	TotalResults int
	SearchMode   SearchMode
	Duration     time.Duration
	CacheHit     bool
	Candidates   int // Rows returned by the full-text query
}

// cacheEntry represents a cached search response with expiration time
type cacheEntry struct {
	response  *SearchResponse
	expiresAt time.Time
}

// Searcher finds indexed identifiers by the words of their names
type Searcher struct {
	storage storage.Storage
	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewSearcher creates a new Searcher instance
func NewSearcher(storage storage.Storage) *Searcher {
	// Create LRU cache with 1000 entry limit
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		storage: storage,
		cache:   cache,
	}
}

// Search performs a search based on the request parameters
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	// Validate request
	if err := validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	// Check cache if enabled
	if req.UseCache {
		if cached, ok := s.checkCache(req); ok {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	candidates, err := s.loadCandidates(ctx, req)
	if err != nil {
		return nil, err
	}

	ranked := rank(candidates, req.Mode, req.RRFConstant, req.Query)

	results, err := s.fetchResults(ctx, ranked, req)
	if err != nil {
		return nil, err
	}

	response := &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		SearchMode:   req.Mode,
		Duration:     time.Since(startTime),
		Candidates:   len(candidates),
	}

	// Store in cache if enabled
	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}

	return response, nil
}

// candidate is an FTS hit with its stored identifier
type candidate struct {
	identifier *storage.Identifier
	bm25       float64
	textRank   int // 1-based position in the FTS result
}

// loadCandidates runs the full-text query and loads every hit
func (s *Searcher) loadCandidates(ctx context.Context, req SearchRequest) ([]candidate, error) {
	limit := req.Limit * candidateFactor
	if limit > maxCandidates {
		limit = maxCandidates
	}

	// MinRelevance applies to the final score, not to BM25
	var filters *storage.SearchFilters
	if req.Filters != nil {
		f := *req.Filters
		f.MinRelevance = 0
		filters = &f
	}

	textResults, err := s.storage.SearchText(ctx, req.ProjectID, req.Query, limit, filters)
	if errors.Is(err, storage.ErrEmptyQuery) {
		return nil, fmt.Errorf("invalid search request: %w", ErrEmptyQuery)
	}
	if err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(textResults))
	for i, tr := range textResults {
		id, err := s.storage.GetIdentifier(ctx, tr.IdentifierID)
		if errors.Is(err, storage.ErrNotFound) {
			continue // Removed since the FTS query ran
		}
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{
			identifier: id,
			bm25:       tr.BM25Score,
			textRank:   i + 1,
		})
	}
	return candidates, nil
}

// rankedResult represents an identifier with its relevance score and rank
type rankedResult struct {
	identifier *storage.Identifier
	score      float64
	rank       int
}

// rank scores candidates for the requested mode and sorts them best first
func rank(candidates []candidate, mode SearchMode, k float64, query string) []rankedResult {
	similarity := make([]float64, len(candidates))
	for i, c := range candidates {
		similarity[i] = NameSimilarity(query, c.identifier)
	}

	results := make([]rankedResult, len(candidates))
	switch mode {
	case SearchModeKeyword:
		for i, c := range candidates {
			results[i] = rankedResult{identifier: c.identifier, score: c.bm25}
		}
	case SearchModeName:
		for i, c := range candidates {
			results[i] = rankedResult{identifier: c.identifier, score: similarity[i]}
		}
	default:
		results = applyRRF(candidates, similarity, k)
	}

	sortRankedResults(results)

	// Assign ranks
	for i := range results {
		results[i].rank = i + 1
	}
	return results
}

// applyRRF fuses the BM25 order and the name similarity order with
// Reciprocal Rank Fusion: RRF(d) = sum 1/(k + rank(d)). Scores are divided by
// the best possible sum so they fall in (0, 1].
func applyRRF(candidates []candidate, similarity []float64, k float64) []rankedResult {
	if k == 0 {
		k = 60 // Default RRF constant
	}

	// Similarity order, ties keep the text order
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return similarity[order[a]] > similarity[order[b]]
	})
	simRank := make([]int, len(candidates))
	for pos, i := range order {
		simRank[i] = pos + 1
	}

	best := 2.0 / (k + 1)
	results := make([]rankedResult, len(candidates))
	for i, c := range candidates {
		score := 1.0/(k+float64(c.textRank)) + 1.0/(k+float64(simRank[i]))
		results[i] = rankedResult{
			identifier: c.identifier,
			score:      score / best,
		}
	}
	return results
}

// NameSimilarity compares query with an identifier's name and with its
// normalized words, ignoring case and separators. It returns
// 1 - levenshtein/maxLen for the closer of the two, in [0, 1].
func NameSimilarity(query string, id *storage.Identifier) float64 {
	q := compact(query)
	best := similarity(q, compact(id.Name))
	if id.NormalizedTokens != "" {
		if s := similarity(q, compact(id.NormalizedTokens)); s > best {
			best = s
		}
	}
	return best
}

func similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	d := matchr.Levenshtein(a, b)
	return 1 - float64(d)/float64(maxLen)
}

// compact lower cases s and drops whitespace and identifier separators
func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\n', '_', '$':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// fetchResults converts ranked identifiers into search results with file metadata
func (s *Searcher) fetchResults(ctx context.Context, ranked []rankedResult, req SearchRequest) ([]types.SearchResult, error) {
	minRelevance := 0.0
	if req.Filters != nil {
		minRelevance = req.Filters.MinRelevance
	}

	files := make(map[int64]*storage.File)
	results := make([]types.SearchResult, 0, req.Limit)

	for _, rr := range ranked {
		if len(results) == req.Limit {
			break
		}
		if rr.score < minRelevance {
			continue
		}

		id := rr.identifier
		file, ok := files[id.FileID]
		if !ok {
			var err error
			file, err = s.storage.GetFileByID(ctx, id.FileID)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			files[id.FileID] = file
		}

		result := types.SearchResult{
			IdentifierID:   id.ID,
			Rank:           len(results) + 1,
			RelevanceScore: clamp(rr.score),
			Name:           id.Name,
			Tokens:         strings.Fields(id.Tokens),
			TypeDescriptor: id.TypeDescriptor,
			TypeAcronym:    id.TypeAcronym,
			File: &types.FileInfo{
				Path:      file.FilePath,
				Package:   file.PackageName,
				StartLine: id.StartLine,
				EndLine:   id.EndLine,
			},
		}
		if species, err := types.SpeciesFor(id.Species); err == nil {
			result.Species = species
		}

		results = append(results, result)
	}

	return results, nil
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	}
	return score
}

// validateRequest ensures search request is valid
func validateRequest(req *SearchRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}

	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}

	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	switch req.Mode {
	case "":
		req.Mode = SearchModeHybrid
	case SearchModeHybrid, SearchModeName, SearchModeKeyword:
	default:
		return fmt.Errorf("unsupported search mode: %s", req.Mode)
	}

	if req.RRFConstant == 0 {
		req.RRFConstant = 60 // Default k value
	}

	if req.CacheTTL == 0 {
		req.CacheTTL = 1 * time.Hour // Default TTL
	}

	return nil
}

// ParseMode validates a mode name; empty means hybrid
func ParseMode(s string) (SearchMode, error) {
	switch mode := SearchMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return SearchModeHybrid, nil
	case SearchModeHybrid, SearchModeName, SearchModeKeyword:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported search mode: %s", s)
	}
}

// checkCache looks up cached search results
func (s *Searcher) checkCache(req SearchRequest) (*SearchResponse, bool) {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)
	if !found {
		s.cacheMu.RUnlock()
		return nil, false
	}

	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		// Remove expired entry - need write lock
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil, false
	}

	// Copy while holding the read lock
	response := copySearchResponse(entry.response)
	s.cacheMu.RUnlock()

	return response, true
}

// storeInCache saves search results to cache
func (s *Searcher) storeInCache(req SearchRequest, response *SearchResponse) {
	entry := &cacheEntry{
		response:  copySearchResponse(response),
		expiresAt: time.Now().Add(req.CacheTTL),
	}

	s.cacheMu.Lock()
	s.cache.Add(computeQueryHash(req), entry)
	s.cacheMu.Unlock()
}

// copySearchResponse creates a deep copy of a SearchResponse
func copySearchResponse(src *SearchResponse) *SearchResponse {
	if src == nil {
		return nil
	}

	dst := *src
	dst.Results = make([]types.SearchResult, len(src.Results))

	for i, result := range src.Results {
		dst.Results[i] = result
		dst.Results[i].Tokens = append([]string(nil), result.Tokens...)

		if result.File != nil {
			fileCopy := *result.File
			dst.Results[i].File = &fileCopy
		}
	}

	return &dst
}

// computeQueryHash computes a unique hash for a search request
func computeQueryHash(req SearchRequest) [32]byte {
	// Build deterministic string representation
	var data strings.Builder
	fmt.Fprintf(&data, "%s|%s|%d|%d|%.2f", req.Query, req.Mode, req.ProjectID, req.Limit, req.RRFConstant)

	// Add filters with stable serialization
	if req.Filters != nil {
		data.WriteString("|filters:")
		data.WriteString(strings.Join(req.Filters.Species, ","))
		data.WriteString("|")
		data.WriteString(req.Filters.FilePattern)
		data.WriteString("|")
		data.WriteString(strings.Join(req.Filters.Packages, ","))
		data.WriteString("|")
		data.WriteString(strconv.FormatFloat(req.Filters.MinRelevance, 'g', -1, 64))
	}

	return sha256.Sum256([]byte(data.String()))
}

// sortRankedResults sorts by score descending, then by name and ID
func sortRankedResults(results []rankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		if results[i].identifier.Name != results[j].identifier.Name {
			return results[i].identifier.Name < results[j].identifier.Name
		}
		return results[i].identifier.ID < results[j].identifier.ID
	})
}

// InvalidateCache drops cached responses. The LRU cannot filter by project,
// so every entry is purged; this runs after reindexing.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// CacheLen returns the number of cached responses
func (s *Searcher) CacheLen() int {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache.Len()
}
