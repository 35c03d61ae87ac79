// -----------------------------------------------------------------------
// sovereign - sovereign credit ratings and bond spread analysis
// -----------------------------------------------------------------------

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/common"
	"github.com/ternarybob/sovereign/internal/storage"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: sovereign [flags] <command>

Commands:
  scrape     Scrape spreads and ratings, merge, write CSVs
  chart      Render the scatter charts from the merged dataset
  grades     Write and print the ratings-by-grade summary
  wgi        Download WGI data and run the correlation analysis
  run        Full pipeline: scrape, chart, grades
  schedule   Run the pipeline on the configured cron schedule

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Sovereign version %s\n", common.GetVersion())
		os.Exit(0)
	}

	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(2)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Initialize logger
	// 3. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("sovereign.toml"); err == nil {
			configFiles = append(configFiles, "sovereign.toml")
		} else if _, err := os.Stat("deployments/local/sovereign.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/sovereign.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		if len(configFiles) == 0 {
			tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		} else {
			tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		}
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("data_dir", config.DataDir).
		Str("command", command).
		Msg("Application configuration loaded")

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	p := newPipeline(config, storageManager, logger)
	defer p.Close()

	if err := p.Dispatch(command); err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}
