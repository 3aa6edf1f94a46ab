package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"sigs.k8s.io/yaml"

	"github.com/dshills/idtk/internal/analysis"
	"github.com/dshills/idtk/internal/config"
	"github.com/dshills/idtk/internal/indexer"
	"github.com/dshills/idtk/internal/mcp"
	"github.com/dshills/idtk/internal/searcher"
	"github.com/dshills/idtk/internal/storage"
	"github.com/dshills/idtk/pkg/typename"
	"github.com/dshills/idtk/pkg/types"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			log.Printf("idtk MCP server v%s starting...", version)
			log.Printf("Build Mode: %s, Driver: %s", storage.BuildMode, storage.DriverName)

			server, err := mcp.NewServer(cfg, loadDictionary())
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			// Set up graceful shutdown
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				log.Println("MCP server ready, listening on stdio...")
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				log.Printf("Received signal %v, shutting down gracefully...", sig)
				cancel()
			case err := <-errChan:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			log.Println("Server stopped")
			return nil
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a type descriptor",
		ArgsUsage: "<descriptor>",
		Flags: []cli.Flag{
			formatOption,
			&cli.StringFlag{
				Name:    packageFlag,
				Aliases: []string{"p"},
				Usage:   "Package the descriptor is declared in",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit("parse expects exactly one descriptor", 2)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			a := newAnalyzer(cfg)

			var tn *typename.TypeName
			if pkg := c.String(packageFlag); pkg != "" {
				tn, err = a.ParseTypeInPackage(pkg, c.Args().First())
			} else {
				tn, err = a.ParseType(c.Args().First())
			}
			if err != nil {
				return err
			}
			return printOutput(c, analysis.NewTypeView(tn))
		},
	}
}

func tokenizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokenize",
		Usage:     "Split identifier names into words",
		ArgsUsage: "<name>...",
		Flags:     []cli.Flag{formatOption},
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				return cli.Exit("tokenize expects at least one name", 2)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			a := newAnalyzer(cfg)

			views := make([]analysis.NameView, 0, c.Args().Len())
			for _, name := range c.Args().Slice() {
				views = append(views, a.AnalyzeName(name))
			}
			if len(views) == 1 {
				return printOutput(c, views[0])
			}
			return printOutput(c, views)
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Index the identifiers of a Go project",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			formatOption,
			&cli.BoolFlag{
				Name:  includeTestsFlag,
				Value: true,
				Usage: "Index *_test.go files",
			},
			&cli.BoolFlag{
				Name:  includeVendorFlag,
				Usage: "Index the vendor/ directory",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			root, err := projectPath(c)
			if err != nil {
				return err
			}

			store, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			idx := indexer.New(store, newAnalyzer(cfg))
			stats, err := idx.IndexProject(c.Context, root, &indexer.Config{
				Workers:       cfg.Workers,
				BatchSize:     cfg.BatchSize,
				IncludeTests:  c.Bool(includeTestsFlag),
				IncludeVendor: c.Bool(includeVendorFlag),
			})
			if err != nil {
				return err
			}

			for _, msg := range stats.ErrorMessages {
				log.Printf("warning: %s", msg)
			}

			return printOutput(c, indexOutput{
				RunID:                stats.RunID,
				FilesIndexed:         stats.FilesIndexed,
				FilesSkipped:         stats.FilesSkipped,
				FilesFailed:          stats.FilesFailed,
				FilesRemoved:         stats.FilesRemoved,
				IdentifiersExtracted: stats.IdentifiersExtracted,
				Duration:             stats.Duration.Round(time.Millisecond).String(),
			})
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search indexed identifiers by name words",
		ArgsUsage: "<path> <query>...",
		Flags: []cli.Flag{
			formatOption,
			&cli.IntFlag{
				Name:    limitFlag,
				Aliases: []string{"n"},
				Value:   searcher.DefaultLimit,
				Usage:   "Maximum number of results",
			},
			&cli.StringFlag{
				Name:  modeFlag,
				Value: string(searcher.SearchModeHybrid),
				Usage: "Ranking strategy: hybrid, name or keyword",
			},
			&cli.StringSliceFlag{
				Name:  speciesFlag,
				Usage: "Only return identifiers of this species, e.g. method or \"formal argument\"",
			},
			&cli.StringSliceFlag{
				Name:  packageFlag,
				Usage: "Only return identifiers declared in this package",
			},
			&cli.StringFlag{
				Name:  filePatternFlag,
				Usage: "Glob pattern for file paths relative to the project root",
			},
			&cli.Float64Flag{
				Name:  minRelevanceFlag,
				Usage: "Minimum relevance score (0.0-1.0)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 2 {
				return cli.Exit("search expects a project path and a query", 2)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			root, err := projectPath(c)
			if err != nil {
				return err
			}
			mode, err := searcher.ParseMode(c.String(modeFlag))
			if err != nil {
				return err
			}
			for _, description := range c.StringSlice(speciesFlag) {
				if _, err := types.SpeciesFor(description); err != nil {
					return err
				}
			}

			store, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			project, err := store.GetProject(c.Context, root)
			if err != nil {
				return fmt.Errorf("project %s is not indexed: %w", root, err)
			}

			resp, err := searcher.NewSearcher(store).Search(c.Context, searcher.SearchRequest{
				Query:     strings.Join(c.Args().Tail(), " "),
				Limit:     c.Int(limitFlag),
				Mode:      mode,
				ProjectID: project.ID,
				Filters: &storage.SearchFilters{
					Species:      c.StringSlice(speciesFlag),
					Packages:     c.StringSlice(packageFlag),
					FilePattern:  c.String(filePatternFlag),
					MinRelevance: c.Float64(minRelevanceFlag),
				},
			})
			if err != nil {
				return err
			}

			out := make([]searchResultOutput, 0, len(resp.Results))
			for _, r := range resp.Results {
				out = append(out, searchResultOutput{
					Rank:           r.Rank,
					RelevanceScore: r.RelevanceScore,
					Name:           r.Name,
					Species:        r.Species.Description(),
					Tokens:         r.Tokens,
					Type:           r.TypeDescriptor,
					File:           r.File.Path,
					Package:        r.File.Package,
					StartLine:      r.File.StartLine,
				})
			}
			return printOutput(c, out)
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show indexing statistics for a project",
		ArgsUsage: "<path>",
		Flags:     []cli.Flag{formatOption},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			root, err := projectPath(c)
			if err != nil {
				return err
			}

			store, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			project, err := store.GetProject(c.Context, root)
			if err != nil {
				return fmt.Errorf("project %s is not indexed: %w", root, err)
			}
			status, err := store.GetStatus(c.Context, project.ID)
			if err != nil {
				return err
			}

			out := statusOutput{
				Path:             project.RootPath,
				ModuleName:       project.ModuleName,
				GoVersion:        project.GoVersion,
				LastIndexedAt:    project.LastIndexedAt.Format(time.RFC3339),
				FilesCount:       status.FilesCount,
				IdentifiersCount: status.IdentifiersCount,
				ImportsCount:     status.ImportsCount,
				Species:          status.SpeciesCounts,
				IndexSizeMB:      status.IndexSizeMB,
			}
			if status.LastRun != nil {
				out.LastRunID = status.LastRun.ID
			}
			return printOutput(c, out)
		},
	}
}

type indexOutput struct {
	RunID                string `json:"run_id"`
	FilesIndexed         int    `json:"files_indexed"`
	FilesSkipped         int    `json:"files_skipped"`
	FilesFailed          int    `json:"files_failed"`
	FilesRemoved         int    `json:"files_removed"`
	IdentifiersExtracted int    `json:"identifiers_extracted"`
	Duration             string `json:"duration"`
}

type searchResultOutput struct {
	Rank           int      `json:"rank"`
	RelevanceScore float64  `json:"relevance_score"`
	Name           string   `json:"name"`
	Species        string   `json:"species"`
	Tokens         []string `json:"tokens"`
	Type           string   `json:"type,omitempty"`
	File           string   `json:"file"`
	Package        string   `json:"package"`
	StartLine      int      `json:"start_line"`
}

type statusOutput struct {
	Path             string         `json:"path"`
	ModuleName       string         `json:"module_name,omitempty"`
	GoVersion        string         `json:"go_version,omitempty"`
	LastIndexedAt    string         `json:"last_indexed_at"`
	LastRunID        string         `json:"last_run_id,omitempty"`
	FilesCount       int            `json:"files_count"`
	IdentifiersCount int            `json:"identifiers_count"`
	ImportsCount     int            `json:"imports_count"`
	Species          map[string]int `json:"species"`
	IndexSizeMB      float64        `json:"index_size_mb"`
}

func newAnalyzer(cfg *config.Config) *analysis.Analyzer {
	return analysis.New(analysis.Options{
		Dictionary:         loadDictionary(),
		ExpandContractions: cfg.ExpandContractions,
		SubPolicy:          cfg.Policy(),
		MaxDepth:           cfg.MaxDepth,
		CacheSize:          cfg.CacheSize,
	})
}

func openStorage(cfg *config.Config) (*storage.SQLiteStorage, error) {
	dbFile, err := cfg.DBFile()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

// projectPath resolves the first argument to an absolute project root
func projectPath(c *cli.Context) (string, error) {
	if c.Args().Len() == 0 {
		return "", cli.Exit("missing project path", 2)
	}
	return filepath.Abs(c.Args().First())
}

// printOutput writes v to stdout as indented JSON, or as YAML converted from that JSON
func printOutput(c *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	switch c.String(formatFlag) {
	case "json":
	case "yaml":
		data, err = yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("cannot convert json to yaml: %w", err)
		}
	default:
		return cli.Exit(fmt.Sprintf("unsupported format %q", c.String(formatFlag)), 2)
	}

	_, err = fmt.Fprintln(os.Stdout, strings.TrimRight(string(data), "\n"))
	return err
}
