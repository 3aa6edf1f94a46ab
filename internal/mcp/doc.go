// Package mcp implements the Model Context Protocol (MCP) server for idtk.
//
// The server exposes five tools to MCP clients:
//   - parse_type: Parse a type descriptor into its parts
//   - tokenize_name: Split an identifier name into normalized words
//   - index_identifiers: Extract and analyze the identifiers of a Go project
//   - search_identifiers: Search indexed identifiers by name words
//   - get_status: Check indexing status and statistics
//
// The server talks JSON-RPC 2.0 over stdio. Logs go to stderr since stdout
// carries the protocol.
//
//	idtk serve
//
// # Tool: parse_type
//
//	Request:
//	{
//	  "name": "parse_type",
//	  "arguments": {"descriptor": "java.util.List<String>[]"}
//	}
//
//	Response:
//	{
//	  "descriptor": "java.util.List<String>[]",
//	  "identifier": "List",
//	  "package": "java.util",
//	  "fqn": "java.util.List",
//	  "array_dimensions": 1,
//	  "no_type": false,
//	  "parameters": [{"identifier": "String", ...}]
//	}
//
// # Tool: tokenize_name
//
//	Request:
//	{
//	  "name": "tokenize_name",
//	  "arguments": {"name": "isntSubTotal", "sub_policy": "expand"}
//	}
//
//	Response:
//	{
//	  "name": "isntSubTotal",
//	  "tokens": ["isnt", "Sub", "Total"],
//	  "normalized": ["is", "not", "Sub", "Total"],
//	  "acronym": "ist"
//	}
//
// # Tool: index_identifiers
//
// Files whose content hash is unchanged since the last run are skipped.
// Only one indexing operation runs at a time; a concurrent call fails with
// -32002.
//
//	Response:
//	{
//	  "indexed": true,
//	  "run_id": "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
//	  "files_indexed": 42,
//	  "files_skipped": 3,
//	  "identifiers_extracted": 1180,
//	  "duration_ms": 310
//	}
//
// # Tool: search_identifiers
//
// Candidates come from the FTS5 index over name tokens and are reranked by
// search_mode: name (edit distance similarity), keyword (BM25) or hybrid
// (both fused with Reciprocal Rank Fusion).
//
//	Request:
//	{
//	  "name": "search_identifiers",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "query": "user count",
//	    "filters": {"species": ["field", "local"]}
//	  }
//	}
//
// # Error Handling
//
// Handlers return *MCPError values. Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Project not found
//   - -32002: Indexing in progress
//   - -32003: Project not indexed
//   - -32004: Empty query
//   - -32005: Invalid type descriptor
package mcp
