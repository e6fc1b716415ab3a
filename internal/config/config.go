package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	ProviderNone   = "none"
	ProviderGoogle = "google"
	ProviderICS    = "ics"
)

// ICSConfig describes a single ICS subscription.
type ICSConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

type GoogleConfig struct {
	// CredentialsFile is the OAuth client JSON downloaded from the Cloud
	// console.
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
	TokenFile       string `yaml:"token_file" json:"token_file"`
	CalendarID      string `yaml:"calendar_id" json:"calendar_id"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web surface.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

type Config struct {
	// Listen is the HTTP listen address of `cleancal serve`.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone "today" and event times are shown in.
	// "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is a standard five-field cron spec for re-fetching events.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	FetchMonthsBack  int `yaml:"fetch_months_back" json:"fetch_months_back"`
	FetchMonthsAhead int `yaml:"fetch_months_ahead" json:"fetch_months_ahead"`

	// SwitchPolicy is "reanchor" or "preserve".
	SwitchPolicy string `yaml:"switch_policy" json:"switch_policy"`

	// PrefsPath is the sqlite database holding user preferences.
	PrefsPath string `yaml:"prefs_path" json:"prefs_path"`

	// Provider selects the event source: none, google or ics.
	Provider string       `yaml:"provider" json:"provider"`
	Google   GoogleConfig `yaml:"google" json:"google"`

	ICS         []ICSConfig `yaml:"ics" json:"ics"`
	ICSCacheDir string      `yaml:"ics_cache_dir" json:"ics_cache_dir"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills missing values with defaults so that partial or older
// files still load.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.FetchMonthsBack <= 0 {
		c.FetchMonthsBack = 2
	}
	if c.FetchMonthsAhead <= 0 {
		c.FetchMonthsAhead = 2
	}
	c.SwitchPolicy = strings.ToLower(strings.TrimSpace(c.SwitchPolicy))
	if c.SwitchPolicy == "" {
		c.SwitchPolicy = "reanchor"
	}
	if c.PrefsPath == "" {
		c.PrefsPath = "./var/prefs.db"
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderNone
	}
	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = "./credentials.json"
	}
	if c.Google.TokenFile == "" {
		c.Google.TokenFile = "./var/google-token.json"
	}
	if c.Google.CalendarID == "" {
		c.Google.CalendarID = "primary"
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			c.ICS[i].ID = fmt.Sprintf("ics-%d", i+1)
		}
	}
	if c.ICSCacheDir == "" {
		c.ICSCacheDir = "./var/ics-cache"
	}
}

// Validate reports the first setting that cannot be used as given.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("refresh %q: %w", c.RefreshCron, err)
	}
	switch c.SwitchPolicy {
	case "reanchor", "preserve":
	default:
		return fmt.Errorf("switch_policy %q: want reanchor or preserve", c.SwitchPolicy)
	}
	switch c.Provider {
	case ProviderNone, ProviderGoogle:
	case ProviderICS:
		if len(c.ICS) == 0 {
			return errors.New("provider ics needs at least one ics entry")
		}
		for _, s := range c.ICS {
			if s.URL == "" {
				return fmt.Errorf("ics %q: url is empty", s.ID)
			}
		}
	default:
		return fmt.Errorf("provider %q: want none, google or ics", c.Provider)
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" {
		return errors.New("basic_auth: username is empty")
	}
	return nil
}

// ExpandPaths resolves a leading "~" in the file and directory settings.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{
		&c.PrefsPath,
		&c.ICSCacheDir,
		&c.Google.CredentialsFile,
		&c.Google.TokenFile,
	} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads the YAML file at path. On first run the file does not exist
// yet: defaults are written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg atomically (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".cleancal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
