package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kyn-317/qna/internal/api"
	"github.com/kyn-317/qna/internal/genai"
	"github.com/kyn-317/qna/internal/infrastructure/config"
	"github.com/kyn-317/qna/internal/service"
	"github.com/kyn-317/qna/internal/session"
	"github.com/kyn-317/qna/internal/store"
	"github.com/kyn-317/qna/internal/tools"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gen := genai.NewClient(cfg.GenAIURL, cfg.GenAIModel)
	sessions := session.NewStore(logger)

	questions := service.NewQuestionWorkflow(db, gen, logger, cfg.SummaryWorkers, cfg.SummaryBuffer)
	evaluations := service.NewEvaluationWorkflow(sessions, db, gen, logger)
	generator := service.NewSessionGenerator(sessions, db, gen, logger)
	categories := service.NewCategoryWorkflow(db, gen, logger)
	registry := tools.NewStoreRegistry(db)

	handler := api.NewHandler(db, sessions, questions, evaluations, generator, categories, registry, logger)

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           handler.Routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress, "model", gen.Model())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
