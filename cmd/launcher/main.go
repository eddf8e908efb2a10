package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/bootstrap"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/serviceutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/telemetry"
)

func main() {
	serverBin := flag.String("server", "trends-server", "Server binary to launch when no command is given.")
	logPath := flag.String("log", "server.log", "File the server's combined output is mirrored to.")
	requireBrowser := flag.Bool("require-browser", false, "Fail fast unless a chromium binary is on PATH.")
	flag.Parse()

	telemetry.InitSlog(false)
	ctx := serviceutil.SignalContext()

	code, err := bootstrap.Launch(ctx, bootstrap.Config{
		ServerBin:      *serverBin,
		LogPath:        *logPath,
		RequireBrowser: *requireBrowser,
	}, flag.Args())
	if err != nil {
		slog.Error("launch failed", "err", err)
		os.Exit(1)
	}
	os.Exit(code)
}
