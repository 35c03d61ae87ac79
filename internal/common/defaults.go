// Package common provides shared configuration, logging and utilities.
package common

// NewDefaultConfig returns the default configuration. Config files, env
// vars and CLI flags override these in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		DataDir:     "./data",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/sovereign.db",
				ResetOnStartup: false,
				SnapshotsKept:  10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Scraper: ScraperConfig{
			SpreadsURL:  "https://www.worldgovernmentbonds.com/spread-historical-data/",
			RatingsURL:  "https://www.worldgovernmentbonds.com/world-credit-ratings/",
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headless:    true,
			PageTimeout: "60s",
			RenderWait:  "5s",
		},
		WorldBank: WorldBankConfig{
			BaseURL:     "https://api.worldbank.org/v2",
			StartYear:   2010,
			EndYear:     2023,
			PerPage:     20000,
			RatePerSec:  2,
			HTTPTimeout: "30s",
		},
		Chart: ChartConfig{
			OutputDir:    "./data",
			IconDir:      "./data/flag_icons",
			IconBaseURL:  "https://flagcdn.com/w80/{code}.png",
			LabelOffsetX: 8,
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Cron:    "0 6 * * *",
		},
	}
}
