package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/masmgr/gitpace/internal/model"
)

// Config is the root configuration structure.
type Config struct {
	Database              string         `json:"database" yaml:"database"`                           // Default: ~/.gitpace/gitpace.db
	Remote                string         `json:"remote" yaml:"remote"`                               // Default: "origin"
	CommandTimeoutSeconds int            `json:"commandTimeoutSeconds" yaml:"commandTimeoutSeconds"` // Default: 60
	UpstreamWindowDays    int            `json:"upstreamWindowDays" yaml:"upstreamWindowDays"`       // Default: 30
	PeakWindowDays        int            `json:"peakWindowDays" yaml:"peakWindowDays"`               // Default: 7
	HorizonYears          int            `json:"horizonYears" yaml:"horizonYears"`                   // Default: 5
	Defaults              DefaultsConfig `json:"defaults" yaml:"defaults"`
	Filters               FilterConfig   `json:"filters" yaml:"filters"`
}

// DefaultsConfig holds the settings given to newly added repositories.
type DefaultsConfig struct {
	IdealPace  float64 `json:"idealPace" yaml:"idealPace"`
	PacePeriod string  `json:"pacePeriod" yaml:"pacePeriod"`
}

// FilterConfig holds file path filtering options for preview file lists.
type FilterConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// CandidateNames are the file names searched in the working directory and
// then the home directory.
var CandidateNames = []string{".gitpace.json", ".gitpace.yaml", ".gitpace.yml"}

// DefaultDatabasePath returns ~/.gitpace/gitpace.db, or gitpace.db in the
// working directory when no home directory is known.
func DefaultDatabasePath() string {
	home := homeDir()
	if home == "" {
		return "gitpace.db"
	}
	return filepath.Join(home, ".gitpace", "gitpace.db")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return os.Getenv("HOME")
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Database:              DefaultDatabasePath(),
		Remote:                "origin",
		CommandTimeoutSeconds: 60,
		UpstreamWindowDays:    30,
		PeakWindowDays:        7,
		HorizonYears:          5,
		Defaults: DefaultsConfig{
			IdealPace:  model.DefaultIdealPace,
			PacePeriod: string(model.DefaultPacePeriod),
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
	}
}

// CommandTimeout returns the per-invocation git timeout. Zero disables it.
func (c *Config) CommandTimeout() time.Duration {
	if c.CommandTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// InitialProgress returns the progress of a newly added repository.
func (c *Config) InitialProgress() model.Progress {
	p := model.DefaultProgress()
	p.IdealPace = c.Defaults.IdealPace
	p.PacePeriod = model.PacePeriod(c.Defaults.PacePeriod)
	return p
}

// Validate checks values that would otherwise fail much later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Defaults.IdealPace <= 0 {
		return fmt.Errorf("defaults.idealPace must be positive, got %v", c.Defaults.IdealPace)
	}
	if _, err := model.ParsePacePeriod(c.Defaults.PacePeriod); err != nil {
		return fmt.Errorf("defaults.pacePeriod: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults. With
// an empty path the candidate names are tried in the working directory and
// then in the home directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func findConfig() string {
	dirs := []string{"."}
	if home := homeDir(); home != "" {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		for _, name := range CandidateNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}
