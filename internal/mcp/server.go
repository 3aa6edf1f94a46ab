package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/idtk/internal/analysis"
	"github.com/dshills/idtk/internal/config"
	"github.com/dshills/idtk/internal/indexer"
	"github.com/dshills/idtk/internal/searcher"
	"github.com/dshills/idtk/internal/storage"
	"github.com/dshills/idtk/pkg/contraction"
)

const (
	// ServerName is the MCP server name
	ServerName = "idtk"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	dict     *contraction.Dictionary
	storage  storage.Storage
	analyzer *analysis.Analyzer
	indexer  *indexer.Indexer
	searcher *searcher.Searcher

	// indexLock rejects a second index_identifiers call while one runs
	indexLock indexer.IndexLock
}

// NewServer opens the database named by cfg and creates a server around it
func NewServer(cfg *config.Config, dict *contraction.Dictionary) (*Server, error) {
	dbFile, err := cfg.DBFile()
	if err != nil {
		return nil, err
	}

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return NewServerWithStorage(cfg, dict, store), nil
}

// NewServerWithStorage creates a server over an already opened store. The
// server takes ownership of store and closes it when Serve returns.
func NewServerWithStorage(cfg *config.Config, dict *contraction.Dictionary, store storage.Storage) *Server {
	// Shared by the indexer and parse_type, so both use one descriptor cache
	analyzer := analysis.New(analysis.Options{
		Dictionary:         dict,
		ExpandContractions: cfg.ExpandContractions,
		SubPolicy:          cfg.Policy(),
		MaxDepth:           cfg.MaxDepth,
		CacheSize:          cfg.CacheSize,
	})

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		cfg:      cfg,
		dict:     dict,
		storage:  store,
		analyzer: analyzer,
		indexer:  indexer.New(store, analyzer),
		searcher: searcher.NewSearcher(store),
	}

	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the storage without serving
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(parseTypeTool(), s.handleParseType)
	s.mcp.AddTool(tokenizeNameTool(), s.handleTokenizeName)
	s.mcp.AddTool(indexIdentifiersTool(), s.handleIndexIdentifiers)
	s.mcp.AddTool(searchIdentifiersTool(), s.handleSearchIdentifiers)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
