package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/money"
	"github.com/ingoatl/propertycentral/internal/report"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/ingoatl/propertycentral/internal/settlement"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reconciliations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			recs, err := store.ListReconciliations(ctx)
			if err != nil {
				return fmt.Errorf("failed to list reconciliations: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No reconciliations found. Use 'recon import' to add one."))
				return nil
			}

			fmt.Fprintln(out, cli.TableHeaderStyle.Render(fmt.Sprintf("%-24s %-8s %-13s %-15s %14s",
				"ID", "PERIOD", "SERVICE", "STATUS", "NET TO OWNER")))
			for _, rec := range recs {
				fmt.Fprintf(out, "%-24s %-8s %-13s %-15s %14s\n",
					rec.ID, rec.Period, rec.ServiceType, rec.Status, money.FormatCurrency(rec.NetToOwner))
			}
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <reconciliation-id>",
		Short: "Show the settlement summary card",
		Long: `Calculate the settlement for a reconciliation from its approved line items
and render the summary card. With --save the visit fees, expense total and net
amount to the owner are stored on the reconciliation.`,
		Args: cobra.ExactArgs(1),
		RunE: runSummary,
	}

	cmd.Flags().Bool("save", false, "Persist the calculated totals on the reconciliation")
	cmd.Flags().Bool("json", false, "Print the calculation result as JSON")

	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	view, err := loadReconciliation(ctx, store, args[0])
	if err != nil {
		return err
	}
	rec, result := view.Reconciliation, view.Result

	if save {
		if result.Degraded() {
			return fmt.Errorf("refusing to save totals: %s", result.Error)
		}
		totals := service.Totals{
			VisitFees:     result.VisitFees,
			TotalExpenses: result.TotalExpenses,
			NetToOwner:    settlement.NetToOwner(result, rec.ServiceType),
		}
		if err := store.SaveTotals(ctx, rec.ID, totals); err != nil {
			return fmt.Errorf("failed to save totals: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, result)
	}

	fmt.Fprintln(out, report.NewFormatter().SummaryCard(rec, result))
	if save {
		fmt.Fprintln(out, cli.FormatSuccess("Totals saved"))
	}
	return nil
}
