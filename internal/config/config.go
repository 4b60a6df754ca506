package config

import (
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// FileName is the configuration file looked up in the working directory and $HOME.
const FileName = ".tablespectre.yml"

// Config holds all tablespectre configuration.
type Config struct {
	DBURL      string   `yaml:"db_url"`
	TablesFile string   `yaml:"tables_file"`
	Server     Server   `yaml:"server"`
	Scan       Scan     `yaml:"scan"`
	Exclude    Exclude  `yaml:"exclude"`
	Defaults   Defaults `yaml:"defaults"`
}

// Server holds HTTP transport settings.
type Server struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`  // parsed as time.Duration
	WriteTimeout string `yaml:"write_timeout"` // parsed as time.Duration
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Scan holds engine and repo-walk settings.
type Scan struct {
	Workers    int      `yaml:"workers"`    // 0 = NumCPU
	Extensions []string `yaml:"extensions"` // extra file extensions for --repo
}

// Exclude lists obsolete tables and programs whose findings are dropped.
type Exclude struct {
	Tables   []string `yaml:"tables"`
	Programs []string `yaml:"programs"`
}

// Defaults holds default CLI flag values.
type Defaults struct {
	Format  string `yaml:"format"`
	Timeout string `yaml:"timeout"` // parsed as time.Duration
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  "30s",
			WriteTimeout: "60s",
			MaxBodyBytes: 10 << 20, // 10 MiB
		},
		Defaults: Defaults{
			Format:  "text",
			Timeout: "30s",
		},
	}
}

// Load reads configuration from .tablespectre.yml in the given directory,
// falling back to ~/.tablespectre.yml. Returns DefaultConfig if no file found.
func Load(dir string) (Config, error) {
	paths := []string{filepath.Join(dir, FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return Parse(data)
	}

	return DefaultConfig(), nil
}

// LoadFile reads configuration from an explicit path. A missing file is an error.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), err
	}
	return Parse(data)
}

// Parse decodes YAML over DefaultConfig.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from TABLESPECTRE_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TABLESPECTRE_DB_URL"); v != "" {
		c.DBURL = v
	}
	if v := os.Getenv("TABLESPECTRE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TABLESPECTRE_TABLES_FILE"); v != "" {
		c.TablesFile = v
	}
}

// TimeoutDuration parses the Defaults.Timeout string as a time.Duration.
// Returns 30s if parsing fails.
func (c *Config) TimeoutDuration() time.Duration {
	return parseDuration(c.Defaults.Timeout, 30*time.Second)
}

// ReadTimeout returns the server read timeout, 30s if unset or invalid.
func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 30*time.Second)
}

// WriteTimeout returns the server write timeout, 60s if unset or invalid.
func (c *Config) WriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 60*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
