// Package cli builds the cobra commands behind the fix-imports and
// mcp-smoke binaries.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alucardeht/mcp-proxy-devtools/internal/config"
	"github.com/alucardeht/mcp-proxy-devtools/internal/logger"
)

type commonFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.configPath, "config", "", "YAML config file")
	flags.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
}

// load reads the config file, applies the logging flags and initializes the
// default logger.
func (f *commonFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cmd.ErrOrStderr()
	logger.Init(logCfg)

	return cfg, nil
}
