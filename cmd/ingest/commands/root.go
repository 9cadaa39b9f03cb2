package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TCC-RagBot/RagBot-Back/internal/app"
	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/ingest"
	"github.com/TCC-RagBot/RagBot-Back/pkg/logger_i"
	"github.com/spf13/cobra"
)

var verbose bool

// serviceFactory builds the ingestion service and a cleanup func. Tests
// replace it with a fake.
var serviceFactory = func(ctx context.Context) (ingest.Service, func(), error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	level := settings.LogLevel
	if verbose {
		level = "DEBUG"
	}
	logger_i.Init(level, verbose)

	if err := settings.RequireProviderKeys(); err != nil {
		return nil, nil, err
	}
	services, err := app.Build(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	if !services.Database.TestConnection(ctx) {
		services.Close()
		return nil, nil, fmt.Errorf("failed to connect to database, check your DATABASE_URL")
	}
	svc, err := services.IngestService()
	if err != nil {
		services.Close()
		return nil, nil, err
	}
	return svc, func() { _ = services.Close() }, nil
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest PDF documents into the RAGBot index",
		Long: `Ingest PDF documents into the RAGBot index.

Each PDF is split into chunks, embedded and stored in the vector index.
Files already ingested under the same name are skipped.`,
		Example: `  ingest --pdf-path docs/regulamento.pdf
  ingest --pdf-folder docs/ --verbose
  ingest reconcile --older-than 1h`,
		SilenceUsage: true,
		RunE:         runIngest,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.Flags().StringVar(&pdfPath, "pdf-path", "", "Path to a single PDF file to process")
	cmd.Flags().StringVar(&pdfFolder, "pdf-folder", "", "Path to folder containing PDF files to process")
	cmd.MarkFlagsMutuallyExclusive("pdf-path", "pdf-folder")
	cmd.MarkFlagsOneRequired("pdf-path", "pdf-folder")

	cmd.AddCommand(NewReconcileCmd())
	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
