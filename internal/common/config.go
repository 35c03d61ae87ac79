package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	DataDir     string          `toml:"data_dir" validate:"required"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Scraper     ScraperConfig   `toml:"scraper"`
	WorldBank   WorldBankConfig `toml:"worldbank"`
	Chart       ChartConfig     `toml:"chart"`
	Schedule    ScheduleConfig  `toml:"schedule"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
	SnapshotsKept  int    `toml:"snapshots_kept" validate:"min=1"` // snapshots retained per kind after pruning
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

type ScraperConfig struct {
	SpreadsURL  string `toml:"spreads_url" validate:"required,url"`
	RatingsURL  string `toml:"ratings_url" validate:"required,url"`
	UserAgent   string `toml:"user_agent"`
	Headless    bool   `toml:"headless"`
	PageTimeout string `toml:"page_timeout" validate:"required"` // e.g. "60s"
	RenderWait  string `toml:"render_wait" validate:"required"`  // settle time for JS-rendered tables, e.g. "5s"
}

type WorldBankConfig struct {
	BaseURL     string  `toml:"base_url" validate:"required,url"`
	StartYear   int     `toml:"start_year" validate:"min=1996"`
	EndYear     int     `toml:"end_year" validate:"max=2100"`
	PerPage     int     `toml:"per_page" validate:"min=1"`
	RatePerSec  float64 `toml:"rate_per_sec" validate:"gt=0"` // request rate toward the API
	HTTPTimeout string  `toml:"http_timeout" validate:"required"`
}

type ChartConfig struct {
	OutputDir    string  `toml:"output_dir" validate:"required"`
	IconDir      string  `toml:"icon_dir"`
	IconBaseURL  string  `toml:"icon_base_url"` // PNG flag source, {code} placeholder
	CountryFile  string  `toml:"country_file"`  // optional YAML country-code overrides
	LabelOffsetX float64 `toml:"label_offset_x"`
}

type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"` // standard 5-field cron expression
}

// PageTimeoutDuration returns the parsed scraper page timeout.
func (c *ScraperConfig) PageTimeoutDuration() time.Duration {
	return parseDurationOr(c.PageTimeout, 60*time.Second)
}

// RenderWaitDuration returns the parsed JS settle time.
func (c *ScraperConfig) RenderWaitDuration() time.Duration {
	return parseDurationOr(c.RenderWait, 5*time.Second)
}

// HTTPTimeoutDuration returns the parsed World Bank client timeout.
func (c *WorldBankConfig) HTTPTimeoutDuration() time.Duration {
	return parseDurationOr(c.HTTPTimeout, 30*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the assembled configuration. Anything malformed is
// rejected here, before any pipeline stage runs.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.WorldBank.EndYear < c.WorldBank.StartYear {
		return fmt.Errorf("invalid configuration: worldbank end_year %d before start_year %d",
			c.WorldBank.EndYear, c.WorldBank.StartYear)
	}

	if c.Schedule.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid configuration: bad cron expression %q: %w", c.Schedule.Cron, err)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SOVEREIGN_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if dir := os.Getenv("SOVEREIGN_DATA_DIR"); dir != "" {
		config.DataDir = dir
	}

	if path := os.Getenv("SOVEREIGN_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if level := os.Getenv("SOVEREIGN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if url := os.Getenv("SOVEREIGN_SPREADS_URL"); url != "" {
		config.Scraper.SpreadsURL = url
	}

	if url := os.Getenv("SOVEREIGN_RATINGS_URL"); url != "" {
		config.Scraper.RatingsURL = url
	}

	if headless := os.Getenv("SOVEREIGN_HEADLESS"); headless != "" {
		if v, err := strconv.ParseBool(headless); err == nil {
			config.Scraper.Headless = v
		}
	}

	if year := os.Getenv("SOVEREIGN_WGI_START_YEAR"); year != "" {
		if v, err := strconv.Atoi(year); err == nil {
			config.WorldBank.StartYear = v
		}
	}

	if year := os.Getenv("SOVEREIGN_WGI_END_YEAR"); year != "" {
		if v, err := strconv.Atoi(year); err == nil {
			config.WorldBank.EndYear = v
		}
	}

	if dir := os.Getenv("SOVEREIGN_CHART_OUTPUT_DIR"); dir != "" {
		config.Chart.OutputDir = dir
	}
}
