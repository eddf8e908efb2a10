package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Run executes argv with its stdout and stderr both routed through
// `output` and returns the process's exit code. A process that could
// not be started at all is an error, a non-zero exit is not.
func Run(ctx context.Context, argv []string, output io.Writer) (int, error) {
	if len(argv) == 0 {
		return -1, fmt.Errorf("no command given")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	// handing both streams the identical writer makes os/exec serialize
	// their writes, which the tee log depends on
	cmd.Stdout = output
	cmd.Stderr = output

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("start %s: %w", argv[0], err)
	}
	return 0, nil
}

// IdleWait blocks until the context is cancelled. Used after a
// passed-through command completes so an orchestrator-managed
// container stays alive.
func IdleWait(ctx context.Context) {
	slog.Info("entering idle wait, send SIGINT/SIGTERM to stop")
	<-ctx.Done()
}
