package main

import (
	"github.com/Noureddine-Aitelhaj/pytrends-cli/cmd/trends-cli/commands"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/serviceutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "trends-cli")
	telemetry.InitSlog(false)
	commands.ExecuteContext(ctx)
}
