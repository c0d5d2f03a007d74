package main

import (
	"context"
	"flag"
	"os"

	"github.com/misdekor/pohoda-bridge/internal/config"
	"github.com/misdekor/pohoda-bridge/internal/eshop"
	"github.com/misdekor/pohoda-bridge/internal/logging"
	"github.com/misdekor/pohoda-bridge/internal/state"
	"github.com/misdekor/pohoda-bridge/internal/syncer"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		replay     = flag.Bool("replay", false, "Treat every fetched order as new and leave state untouched")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg := config.LoadOrEnv(*configFile)
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger := logging.NewStepLogger(cfg.Logging, "fetch-orders")

	// Fail fast before any network I/O.
	if cfg.API.Password == "" {
		logger.Error("missing ESHOP_API_PASSWORD secret")
		os.Exit(1)
	}

	doReplay := *replay || config.RunMode() == config.ModeReplay
	mode := "live"
	if doReplay {
		mode = "replay"
	}
	logger.Info("starting order sync", "mode", mode, "endpoint", cfg.API.BaseURL)

	client := eshop.NewClient(cfg.API, logger)
	store := state.NewStore(cfg.State.Path, logger)

	summary, err := syncer.New(client, store, cfg.Output, logger).Run(context.Background(), doReplay)
	if err != nil {
		logger.Error("order sync failed", "error", err)
		os.Exit(1)
	}

	logger.Info("order sync finished",
		"fetched", summary.Fetched,
		"new", summary.New,
		"last_id_order", summary.Watermark,
	)
}
