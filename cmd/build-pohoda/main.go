package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/misdekor/pohoda-bridge/internal/config"
	"github.com/misdekor/pohoda-bridge/internal/eshop"
	"github.com/misdekor/pohoda-bridge/internal/logging"
	"github.com/misdekor/pohoda-bridge/internal/pohoda"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg := config.LoadOrEnv(*configFile)
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger := logging.NewStepLogger(cfg.Logging, "build-pohoda")

	input := cfg.Output.NewOrdersPath()
	data, err := os.ReadFile(input)
	if err != nil {
		if os.IsNotExist(err) {
			// Not an error: the sync step may not have run yet. The
			// previous document, if any, is left alone.
			logger.Info("new orders file not found, nothing to build", "path", input)
			return
		}
		logger.Error("failed to read new orders file", "path", input, "error", err)
		os.Exit(1)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Error("new orders file is not valid JSON", "path", input, "error", err)
		os.Exit(1)
	}

	orders, dropped, err := eshop.NormalizeOrders(raw)
	if err != nil {
		logger.Error("new orders file has unexpected structure", "path", input, "error", err)
		os.Exit(1)
	}
	if dropped > 0 {
		logger.Warn("dropped non-record order entries", "dropped", dropped)
	}

	if len(orders) == 0 {
		logger.Info("no new orders to export")
		return
	}

	builder := pohoda.NewBuilder(pohoda.Options{
		FirmICO:           cfg.Pohoda.FirmICO,
		Application:       cfg.Pohoda.Application,
		IncludeStockItems: cfg.Pohoda.IncludeStockItems,
		DefaultStore:      cfg.Pohoda.DefaultStore,
	}, logger)

	pack, stats := builder.Build(orders)
	if pack == nil {
		logger.Info("no exportable orders after filtering", "total", stats.Total, "skipped", stats.Skipped)
		return
	}

	doc, err := pack.Marshal()
	if err != nil {
		logger.Error("failed to render import document", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		logger.Error("failed to create output dir", "dir", cfg.Output.Dir, "error", err)
		os.Exit(1)
	}
	output := cfg.Output.DocumentPath()
	if err := os.WriteFile(output, doc, 0o644); err != nil {
		logger.Error("failed to write import document", "path", output, "error", err)
		os.Exit(1)
	}

	logger.Info("saved import document",
		"path", output,
		"orders", stats.Exported,
		"skipped", stats.Skipped,
	)
}
