// @title           RAGBot API
// @version         1.0.0
// @description     Backend do RAGBot: ingestão de PDFs e chat com recuperação aumentada.

// @contact.name    TCC RagBot

// @license.name    MIT

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/TCC-RagBot/RagBot-Back/internal/app"
	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/handlers"
	"github.com/TCC-RagBot/RagBot-Back/internal/middleware"
	"github.com/TCC-RagBot/RagBot-Back/internal/server"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"golang.org/x/time/rate"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logger_i.Init("INFO", false)
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger_i.Init(settings.LogLevel, settings.Debug)
	var logger = logger_i.NewLogger("main")

	//config
	listenAddr := settings.ListenAddr
	flag.StringVar(&listenAddr, "listen-addr", listenAddr, "server listen address")
	flag.Parse()

	if err := settings.RequireProviderKeys(); err != nil {
		logger.Error("Missing provider credentials", "error", err)
		os.Exit(1)
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	services, err := app.Build(serviceContext, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}

	conversations := services.Conversations(serviceContext)
	chatService, err := services.ChatService(serviceContext, conversations)
	if err != nil {
		logger.Error("Could not start the chat service", "error", err)
		services.Close()
		os.Exit(1)
	}
	ingestService, err := services.IngestService()
	if err != nil {
		logger.Error("Could not start the ingestion service", "error", err)
		services.Close()
		os.Exit(1)
	}

	// leftovers from a previous crash
	if report, err := ingestService.Reconcile(serviceContext, config.StalePendingAfter); err != nil {
		logger.Warn("Startup reconcile incomplete", "error", err, "failures", report.Failures)
	} else if report.Removed > 0 {
		logger.Info("Startup reconcile", "removed", report.Removed, "chunksRemoved", report.ChunksRemoved)
	}

	handler := handlers.New(handlers.Services{
		Chat:          chatService,
		Documents:     ingestService,
		Conversations: conversations,
		Database:      services.Database,
		VectorIndex:   services.Index,
		MaxUploadSize: settings.MaxFileSizeBytes(),
		Debug:         settings.Debug,
	})
	limiter := middleware.NewIPRateLimiter(rate.Limit(settings.RateLimitPerSecond), settings.RateLimitBurst)
	srv := server.New(listenAddr, server.NewRouter(handler, middleware.New(limiter)))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices: func() {
			closeExternalServices()
			if err := services.Close(); err != nil {
				logger.Error("Error closing services", "error", err)
			}
		},
	}
	go srv.ShutDownHandler(shutdownParams)
	go func() {
		if err := srv.CreateServer(); err != nil {
			gracefulShutdown <- syscall.SIGTERM
		}
	}()

	<-stopExecution
	logger.Info("Server stopped")
}
