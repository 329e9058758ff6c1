package smoke

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sourcegraph/jsonrpc2"
)

type Config struct {
	Command         string
	Args            []string
	ProtocolVersion string
	ClientName      string
	ClientVersion   string

	// Timeout bounds the whole exchange. Zero waits forever.
	Timeout time.Duration
}

// Result holds the raw response lines, unparsed.
type Result struct {
	InitializeResponse string
	PingResponse       string
}

// Run performs the fixed exchange: initialize, the initialized notification,
// then ping. Responses are read after the two requests only and printed to
// out verbatim. The server is terminated on every return path.
func Run(ctx context.Context, cfg Config, out io.Writer) (result *Result, err error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	initialize, err := InitializeRequest(cfg.ProtocolVersion, cfg.ClientName, cfg.ClientVersion)
	if err != nil {
		return nil, err
	}
	initialized, err := InitializedNotification()
	if err != nil {
		return nil, err
	}
	ping, err := PingRequest(PingID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Testing MCP server: %s\n", cfg.Command)

	session, err := Start(ctx, cfg.Command, cfg.Args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	result = &Result{}

	fmt.Fprintln(out, "Sending initialize...")
	if result.InitializeResponse, err = exchange(ctx, session, initialize, true); err != nil {
		return result, err
	}
	fmt.Fprintf(out, "Initialize response: %s\n", result.InitializeResponse)

	fmt.Fprintln(out, "Sending initialized notification...")
	if _, err = exchange(ctx, session, initialized, false); err != nil {
		return result, err
	}

	fmt.Fprintln(out, "Sending ping...")
	if result.PingResponse, err = exchange(ctx, session, ping, true); err != nil {
		return result, err
	}
	fmt.Fprintf(out, "Ping response: %s\n", result.PingResponse)

	return result, nil
}

func exchange(ctx context.Context, session *Session, msg *jsonrpc2.Request, read bool) (string, error) {
	if err := session.Send(msg); err != nil {
		return "", withContext(ctx, err)
	}
	if !read {
		return "", nil
	}

	line, err := session.ReadLine()
	if err != nil {
		return "", withContext(ctx, fmt.Errorf("%s: %w", msg.Method, err))
	}
	return line, nil
}

// withContext attributes a failure to cancellation when the context ended
// first, since killing the server is what broke the pipes.
func withContext(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
