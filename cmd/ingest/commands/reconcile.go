package commands

import (
	"fmt"
	"time"

	"github.com/TCC-RagBot/RagBot-Back/internal/config"
	"github.com/spf13/cobra"
)

var olderThan time.Duration

func NewReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Remove failed and stuck ingestions",
		Long: `Remove documents whose ingestion failed, and pending documents older than
--older-than, together with any chunks they left in the vector index.`,
		Args: cobra.NoArgs,
		RunE: runReconcile,
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", config.StalePendingAfter, "Age after which a pending document counts as stuck")
	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := serviceFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := svc.Reconcile(cmd.Context(), olderThan)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Examined %d documents, removed %d (%d chunks)\n", report.Examined, report.Removed, report.ChunksRemoved)
	for _, f := range report.Failures {
		fmt.Fprintf(out, "  ! %s\n", f)
	}
	return err
}
