package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr       string `json:"addr" yaml:"addr" toml:"addr"`
	Production bool   `json:"production" yaml:"production" toml:"production"`

	AutoUpdate      bool   `json:"auto_update" yaml:"auto_update" toml:"auto_update"`
	CriticalUpdates bool   `json:"critical_updates" yaml:"critical_updates" toml:"critical_updates"`
	AutoUpdateGrace string `json:"auto_update_grace" yaml:"auto_update_grace" toml:"auto_update_grace"`
	// How long a postponed update prompt stays quiet, e.g. "4h".
	PostponeInterval string `json:"postpone_interval" yaml:"postpone_interval" toml:"postpone_interval"`
	// Named postponement reset policy; "session" is the only implemented value.
	PostponeReset     string `json:"postpone_reset" yaml:"postpone_reset" toml:"postpone_reset"`
	ActivationTimeout string `json:"activation_timeout" yaml:"activation_timeout" toml:"activation_timeout"`
	PermissionDelay   string `json:"permission_delay" yaml:"permission_delay" toml:"permission_delay"`

	SignInTarget  string `json:"signin_target" yaml:"signin_target" toml:"signin_target"`
	LandingTarget string `json:"landing_target" yaml:"landing_target" toml:"landing_target"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Duration parses a duration field, returning zero (use package defaults)
// when unset and an error when present but malformed.
func Duration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
