package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/schollz/progressbar/v3"
)

// Summary counts what an import created.
type Summary struct {
	ReconciliationID string
	Expenses         int
	LineItems        int
}

// Import writes fx to store in a single transaction. Progress is drawn to
// progress; pass nil to disable it.
func Import(ctx context.Context, store service.Storage, fx *Fixture, progress io.Writer) (*Summary, error) {
	rec, err := fx.Reconciliation.ToReconciliation()
	if err != nil {
		return nil, err
	}

	expenses := make([]*model.Expense, 0, len(fx.Expenses))
	for _, doc := range fx.Expenses {
		exp, err := doc.ToExpense(rec.PropertyName)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, exp)
	}

	items := make([]model.LineItem, 0, len(fx.LineItems))
	for _, doc := range fx.LineItems {
		item, err := doc.ToLineItem(rec.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.CreateReconciliation(ctx, rec); err != nil {
		return nil, err
	}
	for _, exp := range expenses {
		if err := tx.CreateExpense(ctx, exp); err != nil {
			return nil, err
		}
	}

	bar := newProgressBar(progress, len(items))
	for i := range items {
		if err := tx.AddLineItems(ctx, items[i:i+1]); err != nil {
			return nil, err
		}
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("Imported reconciliation",
		"reconciliation", rec.ID,
		"expenses", len(expenses),
		"line_items", len(items))

	return &Summary{
		ReconciliationID: rec.ID,
		Expenses:         len(expenses),
		LineItems:        len(items),
	}, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	if w == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing line items...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
