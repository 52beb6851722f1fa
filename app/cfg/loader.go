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
	// Storage configuration
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./blog.db" description:"SQLite database path"`
	MediaDir string `long:"media-dir" env:"MEDIA_DIR" default:"./media" description:"Directory imported media files are written to"`

	// Media fetching
	BaseURL      string `long:"base-url" env:"BASE_URL" description:"Base URL for resolving relative media references"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of workers for media processing"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Media fetch timeout in seconds"`
	SkipMedia    bool   `long:"skip-media" env:"SKIP_MEDIA" description:"Skip media resolution during import"`

	// Application configuration
	OptionsFile string `long:"options" env:"IMPORT_OPTIONS" description:"Optional YAML import options file"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"wp-migrate/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses flags and environment variables. The returned slice holds the
// remaining positional arguments. A nil Cfg with a nil error means help was
// requested.
func Load() (*Cfg, []string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	args, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil, nil
			}
		}
		return nil, nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:       raw.DBPath,
		MediaDir:     raw.MediaDir,
		BaseURL:      raw.BaseURL,
		WorkerCount:  raw.WorkerCount,
		FetchTimeout: raw.FetchTimeout,
		SkipMedia:    raw.SkipMedia,
		OptionsFile:  raw.OptionsFile,
		UserAgent:    raw.UserAgent,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	globalCfg = cfg

	return cfg, args, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// GetFetchTimeout returns the media fetch timeout as a duration.
func (c *Cfg) GetFetchTimeout() time.Duration {
	if c.FetchTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.FetchTimeout) * time.Second
}
