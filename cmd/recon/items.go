package main

import (
	"fmt"

	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/lifecycle"
	"github.com/ingoatl/propertycentral/internal/report"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/spf13/cobra"
)

func itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Review reconciliation line items",
		Long: `List line items and record review decisions. Only verified, non-excluded
items count toward the settlement figure.`,
	}

	cmd.AddCommand(itemsListCmd())
	cmd.AddCommand(reviewCmd("verify", "Mark line items as verified", service.LineItemReview{Verified: boolPtr(true)}))
	cmd.AddCommand(reviewCmd("unverify", "Clear the verified flag on line items", service.LineItemReview{Verified: boolPtr(false)}))
	cmd.AddCommand(reviewCmd("exclude", "Exclude line items from the settlement", service.LineItemReview{Excluded: boolPtr(true)}))
	cmd.AddCommand(reviewCmd("include", "Include previously excluded line items", service.LineItemReview{Excluded: boolPtr(false)}))

	return cmd
}

func itemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <reconciliation-id>",
		Short: "List line items in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := store.GetReconciliation(ctx, args[0]); err != nil {
				return err
			}
			items, err := store.GetLineItems(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get line items: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.NewFormatter().FormatLineItems(items))
			return nil
		},
	}
}

func reviewCmd(use, short string, review service.LineItemReview) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <line-item-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager := lifecycle.NewManager(store, false)
			if err := manager.Review(ctx, lifecycle.ReviewRequest{ItemIDs: args, Review: review}); err != nil {
				return fmt.Errorf("failed to %s line items: %w", use, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%d line item(s) updated", len(args))))
			return nil
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
