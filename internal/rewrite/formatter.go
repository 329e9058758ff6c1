package rewrite

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/alucardeht/mcp-proxy-devtools/internal/logger"
)

// Formatter runs after a rewrite pass. Its result is logged and otherwise
// ignored.
type Formatter interface {
	Format(ctx context.Context) error
	String() string
}

// CommandFormatter runs an external command such as `cargo fmt --all`.
type CommandFormatter struct {
	Args []string
	Dir  string
}

func NewCommandFormatter(args ...string) CommandFormatter {
	return CommandFormatter{Args: args}
}

// String names the command by its leading words up to the first flag, so
// `cargo fmt --all` reads as "cargo fmt".
func (f CommandFormatter) String() string {
	name := f.Args
	for i, arg := range f.Args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			name = f.Args[:i]
			break
		}
	}
	return strings.Join(name, " ")
}

func (f CommandFormatter) Format(ctx context.Context) error {
	if len(f.Args) == 0 {
		return nil
	}

	path, err := exec.LookPath(f.Args[0])
	if err != nil {
		return fmt.Errorf("formatter %s not found: %w", f.Args[0], err)
	}

	cmd := exec.CommandContext(ctx, path, f.Args[1:]...)
	cmd.Dir = f.Dir

	out, err := cmd.CombinedOutput()
	log := logger.ForComponent("formatter")
	if len(out) > 0 {
		log.Debug("formatter output", "command", strings.Join(f.Args, " "), "output", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("formatter %s failed: %w", strings.Join(f.Args, " "), err)
	}

	return nil
}
