package main

import (
	"context"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/gsearch"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/restyutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/serviceutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/suggest"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/telemetry"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/trends"
)

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	err := telemetry.SetupFromEnv(ctx, "trends-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}
	trends.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/trends"))
	suggest.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/suggest"))
	gsearch.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/gsearch"))
}
