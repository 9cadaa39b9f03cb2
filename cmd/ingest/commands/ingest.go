package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/TCC-RagBot/RagBot-Back/internal/rag/ingest"
	"github.com/TCC-RagBot/RagBot-Back/internal/worker"
	"github.com/spf13/cobra"
)

var (
	pdfPath   string
	pdfFolder string
)

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, cleanup, err := serviceFactory(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	if pdfPath != "" {
		res, err := ingestFile(ctx, svc, pdfPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Document created with ID: %s (%d chunks, %.2fs)\n", res.DocumentId, res.ChunksCreated, res.ProcessingTime.Seconds())
		return nil
	}
	return ingestFolder(ctx, svc, pdfFolder, out)
}

func ingestFile(ctx context.Context, svc ingest.Service, path string) (ingest.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ingest.Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return svc.Ingest(ctx, raw, filepath.Base(path), config.CLISource)
}

// ingestFolder runs every PDF directly inside dir on the worker pool. One
// file failing does not stop the others.
func ingestFolder(ctx context.Context, svc ingest.Service, dir string, out io.Writer) error {
	files, err := listPDFs(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No PDF files found in %s\n", dir)
		return nil
	}
	fmt.Fprintf(out, "Found %d PDF files to process\n", len(files))

	pool := worker.NewPool(ctx)
	var mu sync.Mutex
	created := map[string]string{}
	collected := make(chan []worker.Outcome, 1)
	go func() {
		var outcomes []worker.Outcome
		for o := range pool.Results() {
			outcomes = append(outcomes, o)
		}
		collected <- outcomes
	}()

	var failed []string
	reported := map[string]bool{}
	for _, path := range files {
		name := filepath.Base(path)
		queued := pool.Submit(worker.Task{Name: name, Run: func(ctx context.Context) error {
			res, err := ingestFile(ctx, svc, path)
			if err != nil {
				return err
			}
			mu.Lock()
			created[res.Filename] = res.DocumentId
			mu.Unlock()
			return nil
		}})
		if !queued {
			failed = append(failed, fmt.Sprintf("%s: not queued: %v", name, stopReason(ctx)))
			reported[name] = true
		}
	}
	pool.Wait()
	pool.Close()

	for _, o := range <-collected {
		if o.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", o.Name, o.Err))
			reported[o.Name] = true
		}
	}
	// an outcome can be dropped when the run is cancelled
	for _, path := range files {
		name := filepath.Base(path)
		if _, ok := created[name]; !ok && !reported[name] {
			failed = append(failed, fmt.Sprintf("%s: not processed: %v", name, stopReason(ctx)))
		}
	}
	sort.Strings(failed)

	fmt.Fprintf(out, "Successfully processed %d out of %d PDFs\n", len(created), len(files))
	names := make([]string, 0, len(created))
	for name := range created {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  - %s %s\n", created[name], name)
	}
	for _, f := range failed {
		fmt.Fprintf(out, "  ! %s\n", f)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d PDFs failed", len(failed), len(files))
	}
	return nil
}

func stopReason(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.New("worker pool closed")
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("folder not found or not a directory: %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
