package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/alucardeht/mcp-proxy-devtools/internal/config"
	"github.com/alucardeht/mcp-proxy-devtools/internal/smoke"
)

type smokeFlags struct {
	commonFlags
	protocolVersion string
	clientName      string
	clientVersion   string
	timeout         time.Duration
}

func NewSmokeCommand() *cobra.Command {
	cmd, _ := newSmokeCommand()
	return cmd
}

func newSmokeCommand() (*cobra.Command, *smokeFlags) {
	f := &smokeFlags{}

	cmd := &cobra.Command{
		Use:   "mcp-smoke [flags] [server-command [args...]]",
		Short: "Send initialize, initialized and ping to an MCP server over stdio",
		Long: `Starts the server, writes one JSON-RPC message per line to its stdin and
prints the raw line it answers with after each request. Responses are not
parsed. Without arguments the configured server command is used.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, args)
		},
	}

	f.register(cmd)
	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVar(&f.protocolVersion, "protocol-version", "", `protocolVersion sent in initialize (default "0.1.0")`)
	flags.StringVar(&f.clientName, "client-name", "", `clientInfo.name (default "test-client")`)
	flags.StringVar(&f.clientVersion, "client-version", "", `clientInfo.version (default "0.1.0")`)
	flags.DurationVar(&f.timeout, "timeout", 0, "give up after this long, e.g. 10s (0 waits forever)")

	return cmd, f
}

func (f *smokeFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) {
	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Smoke.Command = args[0]
		cfg.Smoke.Args = args[1:]
	}
	if flags.Changed("protocol-version") {
		cfg.Smoke.ProtocolVersion = f.protocolVersion
	}
	if flags.Changed("client-name") {
		cfg.Smoke.ClientName = f.clientName
	}
	if flags.Changed("client-version") {
		cfg.Smoke.ClientVersion = f.clientVersion
	}
	if flags.Changed("timeout") {
		cfg.Smoke.Timeout = f.timeout
	}
}

func (f *smokeFlags) run(cmd *cobra.Command, args []string) error {
	cfg, err := f.load(cmd)
	if err != nil {
		return err
	}
	f.apply(cmd, cfg, args)
	if err := cfg.ValidateSmoke(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, err = smoke.Run(ctx, smoke.Config{
		Command:         cfg.Smoke.Command,
		Args:            cfg.Smoke.Args,
		ProtocolVersion: cfg.Smoke.ProtocolVersion,
		ClientName:      cfg.Smoke.ClientName,
		ClientVersion:   cfg.Smoke.ClientVersion,
		Timeout:         cfg.Smoke.Timeout,
	}, cmd.OutOrStdout())
	return err
}
