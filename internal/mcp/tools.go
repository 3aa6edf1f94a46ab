package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/idtk/internal/analysis"
	"github.com/dshills/idtk/internal/indexer"
	"github.com/dshills/idtk/internal/searcher"
	"github.com/dshills/idtk/internal/storage"
	"github.com/dshills/idtk/pkg/subtoken"
	"github.com/dshills/idtk/pkg/typename"
	"github.com/dshills/idtk/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound    = -32001 // Specified path does not contain a Go project
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeInvalidDescriptor  = -32005 // Type descriptor could not be parsed
)

// maxReportedErrors caps the error messages returned by index_identifiers
const maxReportedErrors = 5

// handleParseType handles the parse_type tool invocation
func (s *Server) handleParseType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	descriptor, ok := args["descriptor"].(string)
	if !ok || descriptor == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "descriptor parameter is required", map[string]interface{}{
			"param":  "descriptor",
			"reason": "missing or empty",
		})
	}

	var (
		tn  *typename.TypeName
		err error
	)
	if pkg := getStringDefault(args, "package", ""); pkg != "" {
		tn, err = s.analyzer.ParseTypeInPackage(pkg, descriptor)
	} else {
		tn, err = s.analyzer.ParseType(descriptor)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidDescriptor, "failed to parse descriptor", map[string]interface{}{
			"descriptor": descriptor,
			"error":      err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(analysis.NewTypeView(tn))), nil
}

// handleTokenizeName handles the tokenize_name tool invocation
func (s *Server) handleTokenizeName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	policy := s.cfg.Policy()
	if raw := getStringDefault(args, "sub_policy", ""); raw != "" {
		p, err := subtoken.ParsePolicy(raw)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid sub_policy", map[string]interface{}{
				"param":   "sub_policy",
				"value":   raw,
				"allowed": []string{subtoken.Concatenate.String(), subtoken.Expand.String()},
			})
		}
		policy = p
	}

	// Tokenizing does not touch the descriptor cache, so a throwaway analyzer is fine
	a := analysis.New(analysis.Options{
		Dictionary:         s.dict,
		ExpandContractions: getBoolDefault(args, "expand_contractions", s.cfg.ExpandContractions),
		SubPolicy:          policy,
	})

	return mcp.NewToolResultText(formatJSON(a.AnalyzeName(name))), nil
}

// handleIndexIdentifiers handles the index_identifiers tool invocation
func (s *Server) handleIndexIdentifiers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	if !s.indexLock.TryAcquire() {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "another indexing operation is already running", nil)
	}
	defer s.indexLock.Release()

	config := &indexer.Config{
		Workers:       s.cfg.Workers,
		BatchSize:     s.cfg.BatchSize,
		IncludeTests:  getBoolDefault(args, "include_tests", true),
		IncludeVendor: getBoolDefault(args, "include_vendor", false),
	}

	stats, err := s.indexer.IndexProject(ctx, path, config)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cached searches may reference removed identifiers
	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"indexed":               true,
		"run_id":                stats.RunID,
		"files_indexed":         stats.FilesIndexed,
		"files_skipped":         stats.FilesSkipped,
		"files_failed":          stats.FilesFailed,
		"files_removed":         stats.FilesRemoved,
		"identifiers_extracted": stats.IdentifiersExtracted,
		"duration_ms":           stats.Duration.Milliseconds(),
	}

	if errorCount := len(stats.ErrorMessages); errorCount > 0 {
		// Include first few errors
		if errorCount > maxReportedErrors {
			response["errors"] = stats.ErrorMessages[:maxReportedErrors]
		} else {
			response["errors"] = stats.ErrorMessages
		}
		response["error_count"] = errorCount
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchIdentifiers handles the search_identifiers tool invocation
func (s *Server) handleSearchIdentifiers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", searcher.MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	mode, err := searcher.ParseMode(getStringDefault(args, "search_mode", ""))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"allowed": []searcher.SearchMode{searcher.SearchModeHybrid, searcher.SearchModeName, searcher.SearchModeKeyword},
		})
	}

	filters, err := parseFilters(args)
	if err != nil {
		return nil, err
	}

	project, err := s.storage.GetProject(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotIndexed, "project not indexed", map[string]interface{}{
			"path": path,
			"hint": "run index_identifiers first",
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load project", map[string]interface{}{
			"error": err.Error(),
		})
	}

	resp, err := s.searcher.Search(ctx, searcher.SearchRequest{
		Query:     query,
		Limit:     limit,
		Mode:      mode,
		Filters:   filters,
		ProjectID: project.ID,
		UseCache:  true,
	})
	if errors.Is(err, searcher.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query has no searchable terms", map[string]interface{}{
			"param": "query",
			"value": query,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]interface{}{
			"rank":            r.Rank,
			"relevance_score": r.RelevanceScore,
			"name":            r.Name,
			"species":         r.Species.Description(),
			"tokens":          r.Tokens,
			"type":            r.TypeDescriptor,
			"type_acronym":    r.TypeAcronym,
			"file":            r.File.Path,
			"package":         r.File.Package,
			"start_line":      r.File.StartLine,
			"end_line":        r.File.EndLine,
		})
	}

	response := map[string]interface{}{
		"results":       results,
		"total_results": resp.TotalResults,
		"search_mode":   resp.SearchMode,
		"cache_hit":     resp.CacheHit,
		"duration_ms":   resp.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	// Try to get project
	project, err := s.storage.GetProject(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		// Project not indexed
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Project not indexed. Use index_identifiers tool to index this project.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Get detailed status
	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"project": map[string]interface{}{
			"path":            project.RootPath,
			"module_name":     project.ModuleName,
			"go_version":      project.GoVersion,
			"last_indexed_at": project.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"files_count":       status.FilesCount,
			"identifiers_count": status.IdentifiersCount,
			"imports_count":     status.ImportsCount,
			"species":           status.SpeciesCounts,
			"index_size_mb":     fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_indexes_built":   status.Health.FTSIndexesBuilt,
		},
	}

	if status.LastRun != nil {
		response["last_run"] = map[string]interface{}{
			"run_id":                status.LastRun.ID,
			"files_indexed":         status.LastRun.FilesIndexed,
			"files_skipped":         status.LastRun.FilesSkipped,
			"identifiers_extracted": status.LastRun.IdentifiersExtracted,
			"error_count":           status.LastRun.ErrorCount,
			"duration_ms":           status.LastRun.FinishedAt.Sub(status.LastRun.StartedAt).Milliseconds(),
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// requirePath extracts and validates the path argument. The returned path is cleaned.
func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNoGoFiles) {
			code = ErrorCodeProjectNotFound
		}
		return "", newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	return filepath.Clean(path), nil
}

// parseFilters reads the optional filters object
func parseFilters(args map[string]interface{}) (*storage.SearchFilters, error) {
	raw, ok := args["filters"].(map[string]interface{})
	if !ok {
		return nil, nil
	}

	filters := &storage.SearchFilters{
		Species:      getStringSlice(raw, "species"),
		Packages:     getStringSlice(raw, "packages"),
		FilePattern:  getStringDefault(raw, "file_pattern", ""),
		MinRelevance: getFloatDefault(raw, "min_relevance", 0),
	}

	for _, description := range filters.Species {
		if _, err := types.SpeciesFor(description); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid species filter", map[string]interface{}{
				"param": "filters.species",
				"value": description,
			})
		}
	}

	if filters.MinRelevance < 0 || filters.MinRelevance > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "min_relevance must be between 0 and 1", map[string]interface{}{
			"param": "filters.min_relevance",
			"value": filters.MinRelevance,
		})
	}

	return filters, nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is accessible
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path is absolute
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	// Check if it's a directory
	if !info.IsDir() {
		return ErrNotDirectory
	}

	// Check if directory is readable
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	// Stop at the first Go file
	hasGoFiles := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(p, ".go") {
			hasGoFiles = true
			return fs.SkipAll
		}
		return nil
	})

	if !hasGoFiles {
		return ErrNoGoFiles
	}

	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter, dropping non-strings
func getStringSlice(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, v := range val {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoGoFiles       = errors.New("directory does not contain Go files")
)
