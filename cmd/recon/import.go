package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/importer"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <fixture.yaml>...",
		Short: "Import reconciliations from YAML fixtures",
		Long: `Create reconciliations, their expense records and line items from YAML
fixture documents. Each file is imported in its own transaction; imported
reconciliations start in draft.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	progress := cmd.ErrOrStderr()
	if noProgress {
		progress = nil
	}

	for _, path := range args {
		fx, err := importer.LoadFile(path)
		if err != nil {
			return err
		}
		summary, err := importer.Import(ctx, store, fx, progress)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
			"Imported %s: %d expense(s), %d line item(s)",
			summary.ReconciliationID, summary.Expenses, summary.LineItems)))
	}
	return nil
}
