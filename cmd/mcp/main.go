// Command mcp serves the RAGBot chat and retrieval tools to MCP clients over
// stdio.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TCC-RagBot/RagBot-Back/internal/app"
	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/mcpServer"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logger_i.InitTo(os.Stderr, "INFO", false)
		logger_i.NewLogger("mcp").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	// stdout is the protocol stream
	logger_i.InitTo(os.Stderr, settings.LogLevel, settings.Debug)
	logger := logger_i.NewLogger("mcp")

	if err := settings.RequireProviderKeys(); err != nil {
		logger.Error("Missing provider credentials", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	chatService, err := services.ChatService(ctx, services.Conversations(ctx))
	if err != nil {
		logger.Error("Could not start the chat service", "error", err)
		return
	}
	documents, err := services.IngestService()
	if err != nil {
		logger.Error("Could not start the ingestion service", "error", err)
		return
	}

	srv, err := mcpServer.NewServer(mcpServer.Ports{Chat: chatService, Documents: documents})
	if err != nil {
		logger.Error("Could not build the MCP server", "error", err)
		return
	}
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("MCP server stopped", "error", err)
	}
}
