package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Nomadcxx/jellyname/internal/logging"
	"github.com/Nomadcxx/jellyname/internal/paths"
	"github.com/Nomadcxx/jellyname/internal/quality"
)

type Config struct {
	Keywords quality.Keywords `mapstructure:"keywords"`
	Ranking  RankingConfig    `mapstructure:"ranking"`
	Scan     ScanConfig       `mapstructure:"scan"`
	Probe    ProbeConfig      `mapstructure:"probe"`
	API      APIConfig        `mapstructure:"api"`
	Database DatabaseConfig   `mapstructure:"database"`
	Logging  LoggingConfig    `mapstructure:"logging"`
}

// RankingConfig overrides the encoder tier order, lowest first. Empty keeps
// the built-in order.
type RankingConfig struct {
	Order []string `mapstructure:"order"`
}

// ScanConfig contains the library roots and scan fan-out
type ScanConfig struct {
	Roots   []string `mapstructure:"roots"`
	Workers int      `mapstructure:"workers"`

	// RescanInterval makes watch mode re-check every file periodically;
	// zero disables it.
	RescanInterval time.Duration `mapstructure:"rescan_interval"`
}

// ProbeConfig locates ffprobe for the definition audit
type ProbeConfig struct {
	FFprobe string        `mapstructure:"ffprobe"`
	Timeout time.Duration `mapstructure:"timeout"`
	Workers int           `mapstructure:"workers"`
}

type APIConfig struct {
	Addr        string   `mapstructure:"addr"`
	Token       string   `mapstructure:"token"` // empty disables authentication
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"` // empty means ~/.config/jellyname/audit.db
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Keywords: quality.DefaultKeywords(),
		Ranking:  RankingConfig{Order: []string{}},
		Scan: ScanConfig{
			Roots:   []string{},
			Workers: runtime.NumCPU(),
		},
		Probe: ProbeConfig{
			FFprobe: "ffprobe",
			Timeout: 30 * time.Second,
			Workers: 2,
		},
		API: APIConfig{
			Addr: "127.0.0.1:8687",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load loads configuration from the default location or returns defaults
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from path. A missing file yields defaults.
// JELLYNAME_* environment variables override file values.
func LoadFrom(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("jellyname")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about
	for _, key := range []string{
		"keywords.top_english", "keywords.top_foreign", "keywords.preferred_old",
		"keywords.preferred_new", "keywords.contrast", "keywords.korean_premium",
		"api.addr", "api.token", "database.path", "logging.level", "probe.ffprobe",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

// Validate checks the settings that classification depends on.
func (c *Config) Validate() error {
	if err := c.Keywords.Validate(); err != nil {
		return err
	}
	if _, err := c.TierRanking(); err != nil {
		return fmt.Errorf("ranking.order: %w", err)
	}
	if c.Scan.Workers < 0 || c.Probe.Workers < 0 {
		return fmt.Errorf("worker counts must not be negative")
	}
	if c.Probe.Timeout < 0 {
		return fmt.Errorf("probe.timeout must not be negative")
	}
	if c.Scan.RescanInterval < 0 {
		return fmt.Errorf("scan.rescan_interval must not be negative")
	}
	return nil
}

// TierRanking returns the configured tier order.
func (c *Config) TierRanking() (quality.Ranking, error) {
	return quality.ParseRanking(c.Ranking.Order)
}

// DatabasePath resolves the audit database location.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return paths.DatabasePath()
}

// LoggerConfig converts the logging section for logging.New.
func (c *Config) LoggerConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Logging.Level)
	lc.File = c.Logging.File
	if c.Logging.MaxSizeMB > 0 {
		lc.MaxSizeMB = c.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups > 0 {
		lc.MaxBackups = c.Logging.MaxBackups
	}
	return lc
}

// Save saves configuration to the default location
func (c *Config) Save() error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configFile)
}

// SaveTo writes the configuration as TOML to path.
func (c *Config) SaveTo(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	// the file may hold the API token
	return os.WriteFile(configFile, []byte(c.ToTOML()), 0600)
}

func ConfigPath() (string, error) {
	return paths.ConfigPath()
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# jellyname configuration
# Generated by: jellyname config init

# ============================================================================
# TIER KEYWORDS
# Release-group tags that identify the named encoder tiers. Version tokens are
# compared exactly; preferred_new is matched as a prefix of the version.
# ============================================================================
[keywords]
top_english = %q
top_foreign = %q
preferred_old = %q
preferred_new = %q
contrast = %q
korean_premium = %q

# ============================================================================
# TIER RANKING
# Lowest first. Leave empty for the built-in order; an override must list
# every tier exactly once and keep each BluRay variant above its base tier.
# ============================================================================
[ranking]
order = %s

# ============================================================================
# LIBRARY SCAN
# ============================================================================
[scan]
# Library roots; every folder directly below a root is a title folder
roots = %s
workers = %d
# Re-check every file while watching ("6h"); "0s" disables it
rescan_interval = %q

# ============================================================================
# DEFINITION AUDIT
# ============================================================================
[probe]
ffprobe = %q
timeout = %q
workers = %d

# ============================================================================
# HTTP API (jellyname serve)
# ============================================================================
[api]
addr = %q
token = %q
# Browser origins allowed to call the API; empty disables CORS
cors_origins = %s

[database]
path = %q

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d
`,
		c.Keywords.TopEnglish,
		c.Keywords.TopForeign,
		c.Keywords.PreferredOld,
		c.Keywords.PreferredNew,
		c.Keywords.Contrast,
		c.Keywords.KoreanPremium,
		formatStringSlice(c.Ranking.Order),
		formatStringSlice(c.Scan.Roots),
		c.Scan.Workers,
		c.Scan.RescanInterval.String(),
		c.Probe.FFprobe,
		c.Probe.Timeout.String(),
		c.Probe.Workers,
		c.API.Addr,
		c.API.Token,
		formatStringSlice(c.API.CORSOrigins),
		c.Database.Path,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
