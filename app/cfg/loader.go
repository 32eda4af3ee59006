package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Gist configuration
	GistID    string `long:"gist-id" env:"GIST_ID" description:"GitHub Gist ID holding the calendar document (required)" required:"true"`
	GistFile  string `long:"gist-file" env:"GIST_FILE" default:"studyhub_cloud.json" description:"File name inside the gist that holds the calendar payload"`
	GistToken string `long:"gist-token" env:"GIST_TOKEN" description:"GitHub API token for gist access (required)" required:"true"`
	APIBase   string `long:"api-base" env:"API_BASE" default:"https://api.github.com" description:"GitHub API base URL"`

	// Application configuration
	DBPath              string `long:"db-path" env:"DB_PATH" default:"./studyhub.db" description:"Path to the sqlite database file"`
	SinksDir            string `long:"sinks-dir" env:"SINKS_DIR" default:"./sinks" description:"Directory containing notification sink configuration files"`
	Port                string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	PollInterval        int    `long:"poll-interval" env:"POLL_INTERVAL" default:"900" description:"Calendar poll interval in seconds"`
	UpdateCheckInterval int    `long:"update-check-interval" env:"UPDATE_CHECK_INTERVAL" default:"21600" description:"App update check interval in seconds"`
	FetchTimeout        int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Gist fetch timeout in seconds"`
	RetentionDays       int    `long:"retention-days" env:"RETENTION_DAYS" default:"7" description:"Days to keep delivered notification ids in the ledger"`
	BuildNumber         int    `long:"build-number" env:"BUILD_NUMBER" default:"1" description:"Running build number, compared against the published appVersion"`
	APIAccessKey        string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"StudyHub Agent/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for day calculations (e.g., UTC, Asia/Jerusalem)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		GistID:              raw.GistID,
		GistFile:            raw.GistFile,
		GistToken:           raw.GistToken,
		APIBase:             raw.APIBase,
		DBPath:              raw.DBPath,
		SinksDir:            raw.SinksDir,
		Port:                raw.Port,
		PollInterval:        raw.PollInterval,
		UpdateCheckInterval: raw.UpdateCheckInterval,
		FetchTimeout:        raw.FetchTimeout,
		RetentionDays:       raw.RetentionDays,
		BuildNumber:         raw.BuildNumber,
		APIAccessKey:        raw.APIAccessKey,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
