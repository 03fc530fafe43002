// Package main provides the web chat server for the legal advisor.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/legal-advisor/internal/advisor"
	"github.com/raphaelgruber/legal-advisor/internal/config"
	"github.com/raphaelgruber/legal-advisor/internal/document"
	"github.com/raphaelgruber/legal-advisor/internal/glossary"
	"github.com/raphaelgruber/legal-advisor/internal/llm"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
	"github.com/raphaelgruber/legal-advisor/internal/session"
	"github.com/raphaelgruber/legal-advisor/internal/web"
)

func main() {
	// Parse flags
	portFlag := flag.String("port", "", "listen port (overrides SERVER_PORT)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *portFlag != "" {
		cfg.ServerPort = *portFlag
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("starting legal-advisor-server",
		"version", config.AppVersion,
		"port", cfg.ServerPort,
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
		"api_key", cfg.RedactedKey(),
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Create the model client shared by all sessions
	collector := metrics.NewCollector()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	model, err := llm.NewModel(ctx, cfg, llm.WithMetrics(collector), llm.WithLogger(logger))
	cancel()
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}

	extractor := document.NewPDFExtractor(logger)
	sessions := session.NewManager(func() (*advisor.Advisor, error) {
		return advisor.New(advisor.ConfigFrom(cfg), model,
			advisor.WithExtractor(extractor),
			advisor.WithMetrics(collector),
			advisor.WithLogger(logger),
		)
	}, logger)

	srv := web.NewServer(sessions, glossary.Default(), collector, logger, cfg.MaxPDFSizeMB)

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s/api/sessions", cfg.ServerPort))
		logger.Info("chat websocket available", "url", fmt.Sprintf("ws://localhost:%s/ws/{id}", cfg.ServerPort))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
