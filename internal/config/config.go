package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Token is the Teamup API token. The token grants whatever access
	// level it was created with; it is sent as a request header and is
	// never logged.
	Token string `yaml:"token"`

	// CalendarKey identifies the calendar all operations run against.
	CalendarKey string `yaml:"calendar_key"`

	// APIEndpoint overrides the API base URL, mainly for tests.
	APIEndpoint string `yaml:"api_endpoint,omitempty"`

	// Timezone is an optional IANA zone name (e.g. "Europe/Berlin"). When
	// set, day-first and free-form date inputs are sent with that zone's
	// UTC offset instead of as naive datetimes.
	Timezone string `yaml:"timezone,omitempty"`
}

// Load reads the YAML config at path, then applies environment overrides
// (TUCAL_TOKEN, TUCAL_CALENDAR_KEY, TUCAL_API_ENDPOINT, TUCAL_TIMEZONE). A
// missing file is not an error: the environment alone may carry everything.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// fall through to env
	default:
		return nil, fmt.Errorf("unable to read config %s: %w", path, err)
	}

	if v := os.Getenv("TUCAL_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("TUCAL_CALENDAR_KEY"); v != "" {
		cfg.CalendarKey = v
	}
	if v := os.Getenv("TUCAL_API_ENDPOINT"); v != "" {
		cfg.APIEndpoint = v
	}
	if v := os.Getenv("TUCAL_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}

	return &cfg, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("no API token configured (set token in config.yaml or TUCAL_TOKEN)")
	}
	if c.CalendarKey == "" {
		return errors.New("no calendar key configured (set calendar_key in config.yaml or TUCAL_CALENDAR_KEY)")
	}
	return nil
}

// Save writes the configuration to path with 0600 permissions; the file
// holds the API token.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
