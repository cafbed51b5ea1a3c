package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	// Timezone names must resolve on hosts without a system zoneinfo.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	appLog "wxcal/internal/log"
	"wxcal/internal/schedule"
)

// ErrEmptyPath is returned by Load and Save without a path.
var ErrEmptyPath = errors.New("config: path is empty")

// ICSConfig describes a single ICS subscription source whose events are
// imported into the calendar view.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// SourceID returns ID, falling back to Name and then URL.
func (c ICSConfig) SourceID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return c.URL
	}
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP host.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// TypeKeywords maps lowercase title keywords to event types for imported
// events that carry no CATEGORIES.
type TypeKeywords struct {
	Task     []string `yaml:"task" json:"task"`
	Reminder []string `yaml:"reminder" json:"reminder"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the web host.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used to group events by day. Empty
	// means the local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls the first column of the month grid. Supported
	// values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SeedSampleEvents adds the illustrative events on mount. A pointer so
	// an explicit false survives Normalize.
	SeedSampleEvents *bool `yaml:"seed_sample_events" json:"seed_sample_events"`

	// Rollover is the cron schedule on which "today" is re-evaluated.
	Rollover string `yaml:"rollover" json:"rollover"`

	// RefreshCron re-imports the ICS sources. Empty disables refreshing.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// SnapshotCron captures /calendar to cache_dir/preview.png while the
	// HTTP host runs. Empty disables it.
	SnapshotCron string `yaml:"snapshot" json:"snapshot"`

	// HorizonDays bounds ICS recurrence expansion to today +/- this many days.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// TypeKeywords classifies imported events by title.
	TypeKeywords TypeKeywords `yaml:"type_keywords" json:"type_keywords"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// CacheDir holds the ICS fetch cache and the rendered preview.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultRollover = "0 0 * * *"
	defaultHorizon  = 90
	defaultCacheDir = "./cache"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	seed := true
	return &Config{
		Listen:           defaultListen,
		Timezone:         "",
		WeekStart:        "sunday",
		LogLevel:         "info",
		SeedSampleEvents: &seed,
		Rollover:         defaultRollover,
		RefreshCron:      "",
		SnapshotCron:     "",
		HorizonDays:      defaultHorizon,
		TypeKeywords:     defaultTypeKeywords(),
		ICS:              []ICSConfig{},
		CacheDir:         defaultCacheDir,
		BasicAuth:        nil,
	}
}

func defaultTypeKeywords() TypeKeywords {
	return TypeKeywords{
		Task:     []string{"analysis", "review", "todo"},
		Reminder: []string{"deadline", "due", "report"},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	switch strings.ToLower(c.WeekStart) {
	case "monday":
		c.WeekStart = "monday"
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = "sunday"
	}
	if _, ok := appLog.ParseLevel(c.LogLevel); !ok || c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.SeedSampleEvents == nil {
		seed := true
		c.SeedSampleEvents = &seed
	}
	if c.Rollover == "" {
		c.Rollover = defaultRollover
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizon
	}
	if c.TypeKeywords.Task == nil && c.TypeKeywords.Reminder == nil {
		c.TypeKeywords = defaultTypeKeywords()
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
}

// Weekday returns WeekStart as a time.Weekday.
func (c *Config) Weekday() time.Weekday {
	if strings.EqualFold(c.WeekStart, "monday") {
		return time.Monday
	}
	return time.Sunday
}

// Location resolves Timezone, falling back to time.Local when it is empty
// or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", c.Timezone)
		return time.Local
	}
	return loc
}

// Seed reports whether sample events should be seeded.
func (c *Config) Seed() bool {
	return c.SeedSampleEvents == nil || *c.SeedSampleEvents
}

// Load reads the YAML config at path. On first run (no file) the defaults
// are written there with 0600 permissions and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			// The defaults are still usable; the caller decides.
			return cfg, err
		}
		appLog.Info("wrote default config", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the cron schedules so a typo fails at load time rather
// than when the host starts its jobs.
func (c *Config) Validate() error {
	for _, f := range []struct{ key, spec string }{
		{"rollover", c.Rollover},
		{"refresh", c.RefreshCron},
		{"snapshot", c.SnapshotCron},
	} {
		if f.spec == "" {
			continue
		}
		if err := schedule.ValidSpec(f.spec); err != nil {
			return fmt.Errorf("%s: invalid cron spec %q: %w", f.key, f.spec, err)
		}
	}
	return nil
}

// Save normalizes cfg and writes it to path atomically (temp file in the
// same directory, chmod 0600, rename). The parent directory is created
// with 0700 if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return ErrEmptyPath
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".wxcal-config-*.tmp")
	if err != nil {
		return fmt.Errorf("config: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("config: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("config: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("config: rename: %w", err)
	}
	return nil
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
