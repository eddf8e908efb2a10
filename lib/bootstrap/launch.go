package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type Config struct {
	// server binary launched when no command is given, defaults to
	// "trends-server"
	ServerBin string
	// combined output log for server mode, defaults to "server.log"
	LogPath string
	// abort before launching anything if no browser binary is on PATH
	RequireBrowser bool
	// defaults to os.Stdout
	Terminal io.Writer
}

// Launch is the container entry point contract: print diagnostics,
// then either supervise the server (no args, output tee'd to the log
// file, exit code passed through) or execute the given command
// verbatim and idle afterwards so the container stays alive.
func Launch(ctx context.Context, cfg Config, args []string) (int, error) {
	terminal := cfg.Terminal
	if terminal == nil {
		terminal = os.Stdout
	}
	serverBin := cfg.ServerBin
	if serverBin == "" {
		serverBin = "trends-server"
	}
	logPath := cfg.LogPath
	if logPath == "" {
		logPath = "server.log"
	}

	PrintDiagnostics(terminal)

	if cfg.RequireBrowser {
		path, err := CheckBrowser()
		if err != nil {
			return -1, err
		}
		slog.Info("browser check passed", "path", path)
	}

	if len(args) == 0 {
		tee, err := NewTee(terminal, logPath)
		if err != nil {
			return -1, err
		}
		defer tee.Close()

		slog.Info("starting server", "bin", serverBin, "log", logPath)
		code, err := Run(ctx, []string{serverBin}, tee)
		if err != nil {
			return -1, err
		}
		slog.Info("server exited", "code", code)
		return code, nil
	}

	slog.Info("running command", "argv", args)
	code, err := Run(ctx, args, terminal)
	if err != nil {
		return -1, err
	}
	slog.Info("command exited", "code", code)

	IdleWait(ctx)
	return 0, nil
}
