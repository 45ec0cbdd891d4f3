package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// CMS configuration
	CMSUsername string `long:"wp-username" env:"WP_USERNAME" description:"CMS user the events are created as (required)" required:"true"`
	CMSPassword string `long:"wp-password" env:"WP_PASSWORD" description:"CMS application password (required)" required:"true"`
	CMSEndpoint string `long:"cms-endpoint" env:"CMS_ENDPOINT" default:"https://lifeoc.org/wp-json/tribe/events/v1/events" description:"Event creation endpoint of the CMS"`
	CMSTimeout  int    `long:"cms-timeout" env:"CMS_TIMEOUT" default:"30" description:"Timeout for a single CMS request in seconds"`

	// Publishing configuration
	PublishAttempts       int `long:"publish-attempts" env:"PUBLISH_ATTEMPTS" default:"1" description:"Attempts per event before a publish counts as failed"`
	PublishMaxConcurrency int `long:"publish-max-concurrency" env:"PUBLISH_MAX_CONCURRENCY" default:"0" description:"Maximum concurrent publishes per email (0 = unlimited)"`

	// Server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"Shared secret required on inbound requests (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Event Relay/1.0" description:"User agent string for CMS requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone used to find the next Sunday (e.g., UTC, America/Los_Angeles)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses command-line arguments and the environment. It returns nil
// without an error when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		CMSUsername:           raw.CMSUsername,
		CMSPassword:           raw.CMSPassword,
		CMSEndpoint:           raw.CMSEndpoint,
		CMSTimeout:            time.Duration(raw.CMSTimeout) * time.Second,
		PublishAttempts:       raw.PublishAttempts,
		PublishMaxConcurrency: raw.PublishMaxConcurrency,
		Port:                  raw.Port,
		APIAccessKey:          raw.APIAccessKey,
		UserAgent:             raw.UserAgent,
		Timezone:              raw.Timezone,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
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

func validate(cfg *Cfg) error {
	if cfg.CMSUsername == "" {
		return fmt.Errorf("WP_USERNAME not set")
	}
	if cfg.CMSPassword == "" {
		return fmt.Errorf("WP_PASSWORD not set")
	}
	if cfg.CMSTimeout <= 0 {
		return fmt.Errorf("CMS timeout must be positive")
	}
	if cfg.PublishAttempts < 1 {
		return fmt.Errorf("publish attempts must be at least 1")
	}
	if cfg.PublishMaxConcurrency < 0 {
		return fmt.Errorf("publish max concurrency must be non-negative")
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
