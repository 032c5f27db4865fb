// Runs one scripted interview round against the configured model backend.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/kyn-317/qna/internal/genai"
	"github.com/kyn-317/qna/internal/infrastructure/config"
	"github.com/kyn-317/qna/internal/simulation"
	"github.com/kyn-317/qna/internal/store"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gen := genai.NewClient(cfg.GenAIURL, cfg.GenAIModel)

	if err := simulation.Run(context.Background(), db, gen, logger); err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}
