package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dshills/idtk/internal/config"
	"github.com/dshills/idtk/internal/storage"
	"github.com/dshills/idtk/pkg/contraction"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const (
	dbPathFlag             = "db-path"
	maxDepthFlag           = "max-depth"
	cacheSizeFlag          = "cache-size"
	workersFlag            = "workers"
	batchSizeFlag          = "batch-size"
	expandContractionsFlag = "expand-contractions"
	subPolicyFlag          = "sub-policy"
	formatFlag             = "format"
	packageFlag            = "package"
	includeTestsFlag       = "include-tests"
	includeVendorFlag      = "include-vendor"
	limitFlag              = "limit"
	modeFlag               = "mode"
	speciesFlag            = "species"
	filePatternFlag        = "file-pattern"
	minRelevanceFlag       = "min-relevance"
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  dbPathFlag,
		Usage: "Directory holding the index database",
	},
	&cli.IntFlag{
		Name:  maxDepthFlag,
		Usage: "Maximum generic nesting depth when parsing type descriptors",
	},
	&cli.IntFlag{
		Name:  cacheSizeFlag,
		Usage: "Number of parsed type descriptors kept in memory, 0 disables caching",
	},
	&cli.IntFlag{
		Name:  workersFlag,
		Usage: "Number of files analyzed concurrently, 0 means one per CPU",
	},
	&cli.IntFlag{
		Name:  batchSizeFlag,
		Usage: "Number of files written per transaction while indexing",
	},
	&cli.BoolFlag{
		Name:  expandContractionsFlag,
		Usage: "Expand contractions such as isnt into is not",
	},
	&cli.StringFlag{
		Name:  subPolicyFlag,
		Usage: "Handling of the sub particle: concatenate or expand",
	},
}

var formatOption = &cli.StringFlag{
	Name:    formatFlag,
	Aliases: []string{"f"},
	Value:   "json",
	Usage:   "Output format: json or yaml",
}

func main() {
	// stdout carries command output and the MCP protocol
	log.SetOutput(os.Stderr)

	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Printf("idtk\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
	}

	app := &cli.App{
		Name:    "idtk",
		Usage:   "Identifier analysis toolkit: parse type descriptors, tokenize names and search Go identifiers",
		Version: version,
		Flags:   globalFlags,
		Commands: []*cli.Command{
			serveCommand(),
			parseCommand(),
			tokenizeCommand(),
			indexCommand(),
			searchCommand(),
			statusCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the environment and applies any global flags that were set
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if c.IsSet(dbPathFlag) {
		cfg.DBPath = c.String(dbPathFlag)
	}
	if c.IsSet(maxDepthFlag) {
		cfg.MaxDepth = c.Int(maxDepthFlag)
	}
	if c.IsSet(cacheSizeFlag) {
		cfg.CacheSize = c.Int(cacheSizeFlag)
	}
	if c.IsSet(workersFlag) {
		cfg.Workers = c.Int(workersFlag)
	}
	if c.IsSet(batchSizeFlag) {
		cfg.BatchSize = c.Int(batchSizeFlag)
	}
	if c.IsSet(expandContractionsFlag) {
		cfg.ExpandContractions = c.Bool(expandContractionsFlag)
	}
	if c.IsSet(subPolicyFlag) {
		cfg.SubPolicy = c.String(subPolicyFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDictionary returns the embedded contraction dictionary. A malformed
// dictionary is a build defect, so it stops the program.
func loadDictionary() *contraction.Dictionary {
	dict, err := contraction.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load contraction dictionary: %v", err)
	}
	return dict
}
