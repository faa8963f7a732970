// Package config loads lsqtable settings from defaults, a YAML file, a .env
// file, LSQTABLE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix = "LSQTABLE_"

	DefaultAPIURL         = "http://127.0.0.1:12315"
	DefaultStatePath      = ".lsqtable/state.db"
	DefaultRefreshDelay   = 500 * time.Millisecond
	DefaultRequestTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultOutput         = "text"
	DefaultListen         = "127.0.0.1:8765"
)

var configNames = []string{"lsqtable.yaml", "lsqtable.yml"}

type Config struct {
	APIURL         string        `koanf:"api_url"`
	APIToken       string        `koanf:"api_token"`
	StatePath      string        `koanf:"state_path"`
	RefreshDelay   time.Duration `koanf:"refresh_delay"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// WatchDir is the graph directory holding pages/ and journals/. Empty
	// disables file watching.
	WatchDir  string `koanf:"watch_dir"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	LogFile   string `koanf:"log_file"`
	Output    string `koanf:"output"`
	Listen    string `koanf:"listen"`
	// Block is the uuid of the block owning the table. View state is keyed
	// by it.
	Block string `koanf:"block"`
}

var (
	k              = koanf.New(".")
	configFileUsed string
)

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// FileUsed returns the YAML file the last Load read, if any.
func FileUsed() string {
	return configFileUsed
}

func Defaults() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		StatePath:      DefaultStatePath,
		RefreshDelay:   DefaultRefreshDelay,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Output:         DefaultOutput,
		Listen:         DefaultListen,
	}
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > .env > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	def := Defaults()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"api_url":         def.APIURL,
		"state_path":      def.StatePath,
		"refresh_delay":   def.RefreshDelay.String(),
		"request_timeout": def.RequestTimeout.String(),
		"log_level":       def.LogLevel,
		"log_format":      def.LogFormat,
		"output":          def.Output,
		"listen":          def.Listen,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// godotenv never overwrites variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// LSQTABLE_API_TOKEN -> api_token
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that would otherwise fail late and obscurely.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return errors.New("config: api_url is required")
	}
	if c.Block != "" {
		id, err := uuid.Parse(strings.TrimSpace(c.Block))
		if err != nil {
			return fmt.Errorf("config: block %q is not a uuid: %w", c.Block, err)
		}
		c.Block = id.String()
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	switch strings.ToLower(c.Output) {
	case "", "text", "markdown", "json", "csv":
	default:
		return fmt.Errorf("config: unknown output %q", c.Output)
	}
	if c.RefreshDelay < 0 || c.RequestTimeout < 0 {
		return errors.New("config: durations must not be negative")
	}
	return nil
}
