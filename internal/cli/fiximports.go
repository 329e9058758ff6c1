package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alucardeht/mcp-proxy-devtools/internal/config"
	"github.com/alucardeht/mcp-proxy-devtools/internal/logger"
	"github.com/alucardeht/mcp-proxy-devtools/internal/rewrite"
	"github.com/alucardeht/mcp-proxy-devtools/internal/watcher"
)

type fixImportsFlags struct {
	commonFlags
	root      string
	suffix    string
	rules     string
	exclude   []string
	formatter string
	noFormat  bool
	watch     bool
}

func NewFixImportsCommand() *cobra.Command {
	f := &fixImportsFlags{}

	cmd := &cobra.Command{
		Use:   "fix-imports",
		Short: "Rewrite crate imports after the mcp_proxy_core split",
		Long: `Walks the scan root, applies the substitution rules in order to every file
ending in the configured suffix, and rewrites files whose text changed.
The formatter runs afterwards; its failure does not fail the command.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd)
		},
	}

	f.register(cmd)
	flags := cmd.Flags()
	flags.StringVar(&f.root, "root", "", "directory to scan (default crates/mcp-proxy-server/src)")
	flags.StringVar(&f.suffix, "suffix", "", "file name suffix to rewrite (default .rs)")
	flags.StringVar(&f.rules, "rules", "", "YAML rules file replacing the built-in rules")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "doublestar pattern relative to the root to skip (repeatable)")
	flags.StringVar(&f.formatter, "formatter", "", `formatter command (default "cargo fmt --all")`)
	flags.BoolVar(&f.noFormat, "no-format", false, "skip the formatter")
	flags.BoolVar(&f.watch, "watch", false, "keep watching the root and rewrite files as they change")

	return cmd
}

func (f *fixImportsFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Rewrite.Root = f.root
	}
	if flags.Changed("suffix") {
		cfg.Rewrite.Suffix = f.suffix
	}
	if flags.Changed("rules") {
		cfg.Rewrite.RulesFile = f.rules
	}
	if flags.Changed("exclude") {
		cfg.Rewrite.Exclude = f.exclude
	}
	if flags.Changed("formatter") {
		cfg.Rewrite.Formatter = strings.Fields(f.formatter)
	}
	if f.noFormat {
		cfg.Rewrite.Formatter = nil
	}
}

func (f *fixImportsFlags) run(cmd *cobra.Command) error {
	cfg, err := f.load(cmd)
	if err != nil {
		return err
	}
	f.apply(cmd, cfg)

	if err := cfg.ValidateRewrite(); err != nil {
		return err
	}

	rw, err := newRewriter(cfg.Rewrite)
	if err != nil {
		return err
	}
	rw.Out = cmd.OutOrStdout()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := rw.Run(ctx); err != nil {
		return err
	}

	if !f.watch {
		return nil
	}

	w, err := watcher.New(rw.Root, watcher.WatcherConfig{
		DebounceWindow: cfg.Rewrite.Watch.DebounceWindow,
		MaxBatchSize:   cfg.Rewrite.Watch.MaxBatchSize,
		IgnorePatterns: cfg.Rewrite.Watch.IgnorePatterns,
		WatchHidden:    cfg.Rewrite.Watch.WatchHidden,
	}, rw.Matches)
	if err != nil {
		return err
	}

	return w.Run(ctx, func(ctx context.Context, paths []string) {
		rw.RewriteFiles(ctx, paths)
	})
}

func newRewriter(cfg config.RewriteConfig) (*rewrite.Rewriter, error) {
	rules := rewrite.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := rewrite.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded

		log := logger.ForComponent("cli")
		for i, r := range rules.Rules() {
			log.Debug("loaded rule", "file", cfg.RulesFile, "index", i, "rule", r.String())
		}
	}

	rw := &rewrite.Rewriter{
		Root:    cfg.Root,
		Suffix:  cfg.Suffix,
		Exclude: cfg.Exclude,
		Rules:   rules,
	}
	if len(cfg.Formatter) > 0 {
		rw.Formatter = rewrite.NewCommandFormatter(cfg.Formatter...)
	}

	return rw, nil
}
