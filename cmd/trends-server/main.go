package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/configutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/lib/serviceutil"
	"github.com/Noureddine-Aitelhaj/pytrends-cli/services/trendsapi"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      int              `json:"port"`
	TrendsApi trendsapi.Config `json:"trends_api"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	initTelemetry(ctx, *verbose)

	// the container entrypoint only sets PORT, .env and config.json5
	// are optional conveniences for local runs
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		slog.Warn("no config.json5 found, using defaults", "err", err)
	}

	port := cfg.Port
	if port == 0 {
		if env := os.Getenv("PORT"); env != "" {
			port, err = strconv.Atoi(env)
			if err != nil {
				serviceutil.Fatal("parse PORT", err)
			}
		}
	}
	if port == 0 {
		port = 8080
	}

	service, err := trendsapi.NewService(ctx, cfg.TrendsApi, trendsapi.Clients{})
	if err != nil {
		serviceutil.Fatal("init trends api", err)
	}

	serviceutil.StartHttpServer(ctx, port, service.Router())
}
