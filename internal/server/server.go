package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/TCC-RagBot/RagBot-Back/internal/adapter/utils"
	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/handlers"
	"github.com/TCC-RagBot/RagBot-Back/internal/middleware"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	httpServer *http.Server
	logger     *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	CloseServices    func()
}

// NewRouter mounts every API route behind the recoverer, the request
// deadline and the trace/rate-limit pipeline.
func NewRouter(h *handlers.Handler, mw *middleware.Middleware) http.Handler {
	r := utils.NewRouter(chimw.Recoverer, mw.Wrap)

	r.Get("/", h.GetHandler)
	r.Get("/health", h.HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(config.RequestTimeout))
		r.Post("/chat", h.ChatHandler)
		r.Post("/upload", h.UploadHandler)
		r.Get("/documents", h.ListDocumentsHandler)
		r.Get("/documents/{id}", h.GetDocumentHandler)
		r.Delete("/documents/{id}", h.DeleteDocumentHandler)
		r.Get("/conversations/{id}/messages", h.ConversationMessagesHandler)
	})

	r.NotFound(h.NotFoundHandler)
	return r
}

func New(listenAddr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

// CreateServer blocks until the server stops. A clean shutdown returns nil.
func (s *Server) CreateServer() error {
	s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err.Error(), "addr", s.httpServer.Addr)
		return err
	}
	return nil
}

func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.httpServer.SetKeepAlivesEnabled(false)

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "error", err)
		}

		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
	case <-ctx.Done():
		s.logger.Error("Force shut down")
		os.Exit(1)
	}
}
