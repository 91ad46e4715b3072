package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/money"
	"github.com/ingoatl/propertycentral/internal/payout"
	"github.com/spf13/cobra"
)

func payoutCmd() *cobra.Command {
	var (
		reference string
		actor     string
	)

	cmd := &cobra.Command{
		Use:   "payout <reconciliation-id>",
		Short: "Commit the owner payout for a full-service reconciliation",
		Long: `Recompute the payout for an approved full-service reconciliation and commit
it. A reconciliation is paid out at most once; repeating the command reports
that the payout already happened.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := currentConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			p := payout.NewProcessor(store,
				payout.WithFormula(cfg.PayoutFormula),
				payout.WithReferencePrefix(cfg.ReferencePrefix))

			result, err := p.Process(ctx, payout.Request{
				ReconciliationID: args[0],
				Reference:        reference,
				Actor:            actor,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Paid %s to owner (reference %s)",
				money.FormatCurrency(result.Amount), result.Reference)))
			return nil
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Payout reference (generated when empty)")
	cmd.Flags().StringVar(&actor, "actor", "", "Who is paying out (recorded in the audit log)")

	return cmd
}
