package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ingoatl/propertycentral/internal/cli"
	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/config"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/ingoatl/propertycentral/internal/settlement"
	"github.com/ingoatl/propertycentral/internal/storage"
	"github.com/spf13/viper"
)

// appConfig is populated by initConfig. Commands run without the root
// command (as in tests) load it lazily from viper.
var appConfig *config.Config

func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return config.Load(viper.GetViper())
}

// initStorage opens the configured database and applies pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// reconciliationView is a reconciliation together with its line items and
// the calculation every display and the payout share.
type reconciliationView struct {
	Reconciliation *model.Reconciliation
	Items          []model.LineItem
	Result         settlement.CalculationResult
}

func loadReconciliation(ctx context.Context, store service.Storage, id string) (*reconciliationView, error) {
	rec, err := store.GetReconciliation(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := store.GetLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &reconciliationView{
		Reconciliation: rec,
		Items:          items,
		Result:         settlement.Calculate(items, rec.ManagementFee, rec.TotalRevenue, rec.ServiceType),
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatCommandError prefers the user-facing message of a UserError.
func formatCommandError(err error) string {
	return cli.FormatError(common.UserMessage(err))
}
