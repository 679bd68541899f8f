package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/vn6295337/intelligent-model-selector/internal/config"
	"github.com/vn6295337/intelligent-model-selector/internal/jobs"
	"github.com/vn6295337/intelligent-model-selector/internal/utils"
)

func main() {
	logger := utils.NewLogger("refresh-metrics")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}

	if err := run(logger); err != nil {
		os.Exit(1)
	}
}

func run(logger *utils.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		return err
	}
	logger.SetLogLevel(utils.ParseLogLevel(cfg.LogLevel))

	if err := cfg.RequireAPIKey(); err != nil {
		logger.Error("Failed to load config", "error", err)
		return err
	}

	// runs are not cancellable
	ctx := context.Background()

	logger.Info("=== Artificial Analysis performance metrics refresh ===")

	deps, err := jobs.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	refresher, err := deps.NewMetricsRefresher(ctx)
	if err != nil {
		return err
	}

	if _, err := refresher.Run(ctx); err != nil {
		return err
	}

	logger.Info("=== Refresh complete ===")
	return nil
}
