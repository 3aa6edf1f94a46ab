package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/idtk/pkg/types"
)

// speciesEnum lists the accepted species filter values
func speciesEnum() []string {
	all := types.AllSpecies()
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.Description())
	}
	return out
}

// parseTypeTool returns the tool definition for parse_type
func parseTypeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "parse_type",
		Description: "Parse a type descriptor such as java.util.Map<String,int[]>[] into its parts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"descriptor": map[string]interface{}{
					"type":        "string",
					"description": "Type descriptor text",
				},
				"package": map[string]interface{}{
					"type":        "string",
					"description": "Package the descriptor is declared in. Overrides any package in the descriptor.",
				},
			},
			Required: []string{"descriptor"},
		},
	}
}

// tokenizeNameTool returns the tool definition for tokenize_name
func tokenizeNameTool() mcp.Tool {
	return mcp.Tool{
		Name:        "tokenize_name",
		Description: "Split an identifier name into words, normalize them and compute its acronym",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Identifier name, e.g. getHTTPResponseCode or max_value",
				},
				"expand_contractions": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, expand contractions such as isnt into is not",
				},
				"sub_policy": map[string]interface{}{
					"type":        "string",
					"description": "Handling of the sub particle: concatenate (subTotal stays whole) or expand (subtotal becomes sub total)",
					"enum":        []string{"concatenate", "expand"},
				},
			},
			Required: []string{"name"},
		},
	}
}

// indexIdentifiersTool returns the tool definition for index_identifiers
func indexIdentifiersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_identifiers",
		Description: "Extract and analyze the declared identifiers of a Go project so they can be searched",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to Go project root (must contain .go files)",
				},
				"include_tests": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index *_test.go files",
					"default":     true,
				},
				"include_vendor": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index vendor/ directory",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchIdentifiersTool returns the tool definition for search_identifiers
func searchIdentifiersTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_identifiers",
		Description: "Search indexed identifiers by the words of their names",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to indexed Go project",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Words or a name to look for, e.g. user count or userCount",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Optional filters to narrow search",
					"properties": map[string]interface{}{
						"species": map[string]interface{}{
							"type":        "array",
							"description": "Filter by species",
							"items": map[string]interface{}{
								"type": "string",
								"enum": speciesEnum(),
							},
						},
						"packages": map[string]interface{}{
							"type":        "array",
							"description": "Filter by package names",
							"items": map[string]interface{}{
								"type": "string",
							},
						},
						"file_pattern": map[string]interface{}{
							"type":        "string",
							"description": "Glob pattern for file paths (e.g., 'internal/*')",
						},
						"min_relevance": map[string]interface{}{
							"type":        "number",
							"description": "Minimum relevance score threshold (0.0-1.0)",
							"minimum":     0.0,
							"maximum":     1.0,
						},
					},
				},
				"search_mode": map[string]interface{}{
					"type":        "string",
					"description": "Ranking strategy: hybrid (name similarity + BM25), name (similarity only), or keyword (BM25 only)",
					"enum":        []string{"hybrid", "name", "keyword"},
					"default":     "hybrid",
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a Go project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to Go project",
				},
			},
			Required: []string{"path"},
		},
	}
}
