// Package main provides the entry point for the legal advisor MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/legal-advisor/internal/advisor"
	"github.com/raphaelgruber/legal-advisor/internal/config"
	"github.com/raphaelgruber/legal-advisor/internal/document"
	"github.com/raphaelgruber/legal-advisor/internal/glossary"
	"github.com/raphaelgruber/legal-advisor/internal/llm"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
	"github.com/raphaelgruber/legal-advisor/internal/server"
	"github.com/raphaelgruber/legal-advisor/internal/session"
	"github.com/raphaelgruber/legal-advisor/internal/tools"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger (dual output: stderr text + file JSON); stdout carries the protocol
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("legal-advisor-mcp starting",
		"version", config.AppVersion,
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.NewCollector()
	model, err := llm.NewModel(ctx, cfg, llm.WithMetrics(collector), llm.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}
	logger.Info("model initialized", "model", model.Model())

	// One conversation per MCP connection
	sessions := session.NewManager(func() (*advisor.Advisor, error) {
		return advisor.New(advisor.ConfigFrom(cfg), model,
			advisor.WithExtractor(document.NewPDFExtractor(logger)),
			advisor.WithMetrics(collector),
			advisor.WithLogger(logger),
		)
	}, logger)
	sess, err := sessions.Create()
	if err != nil {
		logger.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	// Create and setup server
	srv := server.New(config.AppVersion, logger)
	srv.Setup(&tools.Dependencies{
		Session:  sess,
		Glossary: glossary.Default(),
		Metrics:  collector,
		Logger:   logger,
	})

	logger.Info("server ready, awaiting connections", "session", sess.ID())

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
