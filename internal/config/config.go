package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
	IgnorePatterns []string      `yaml:"ignore_patterns"`
	WatchHidden    bool          `yaml:"watch_hidden"`
}

type RewriteConfig struct {
	Root      string      `yaml:"root"`
	Suffix    string      `yaml:"suffix"`
	Exclude   []string    `yaml:"exclude"`
	RulesFile string      `yaml:"rules_file"`
	Formatter []string    `yaml:"formatter"`
	Watch     WatchConfig `yaml:"watch"`
}

type SmokeConfig struct {
	Command         string        `yaml:"command"`
	Args            []string      `yaml:"args"`
	ProtocolVersion string        `yaml:"protocol_version"`
	ClientName      string        `yaml:"client_name"`
	ClientVersion   string        `yaml:"client_version"`
	Timeout         time.Duration `yaml:"timeout"`
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Rewrite RewriteConfig `yaml:"rewrite"`
	Smoke   SmokeConfig   `yaml:"smoke"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Rewrite: RewriteConfig{
			Root:      "crates/mcp-proxy-server/src",
			Suffix:    ".rs",
			Formatter: []string{"cargo", "fmt", "--all"},
			Watch: WatchConfig{
				DebounceWindow: 300 * time.Millisecond,
				MaxBatchSize:   100,
				IgnorePatterns: []string{
					"**/.git/**",
					"**/target/**",
					"**/*.orig",
					"**/*.rej",
				},
				WatchHidden: false,
			},
		},
		Smoke: SmokeConfig{
			Command:         "/nix/store/blkyfy6pa9xkfzvqkpkhvhgk59wzbmrs-mcp-server-time-2025.7.1/bin/mcp-server-time",
			Args:            []string{},
			ProtocolVersion: "0.1.0",
			ClientName:      "test-client",
			ClientVersion:   "0.1.0",
		},
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) ValidateRewrite() error {
	r := c.Rewrite
	if r.Root == "" {
		return fmt.Errorf("%w: rewrite.root is required", ErrInvalid)
	}
	if r.Suffix == "" {
		return fmt.Errorf("%w: rewrite.suffix is required", ErrInvalid)
	}
	if strings.ContainsRune(r.Suffix, '/') {
		return fmt.Errorf("%w: rewrite.suffix %q must not contain a path separator", ErrInvalid, r.Suffix)
	}
	for _, p := range r.Exclude {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: rewrite.exclude pattern %q", ErrInvalid, p)
		}
	}
	for _, p := range r.Watch.IgnorePatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: rewrite.watch.ignore_patterns pattern %q", ErrInvalid, p)
		}
	}
	if r.Watch.MaxBatchSize < 1 {
		return fmt.Errorf("%w: rewrite.watch.max_batch_size must be positive", ErrInvalid)
	}
	if r.Watch.DebounceWindow <= 0 {
		return fmt.Errorf("%w: rewrite.watch.debounce_window must be positive", ErrInvalid)
	}
	return nil
}

func (c *Config) ValidateSmoke() error {
	s := c.Smoke
	if s.Command == "" {
		return fmt.Errorf("%w: smoke.command is required", ErrInvalid)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: smoke.timeout must not be negative", ErrInvalid)
	}
	return nil
}
