package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial reconciliation schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS reconciliations (
					id TEXT PRIMARY KEY,
					property_name TEXT NOT NULL DEFAULT '',
					period TEXT NOT NULL DEFAULT '',
					service_type TEXT NOT NULL CHECK (service_type IN ('cohosting', 'full_service')),
					status TEXT NOT NULL DEFAULT 'draft',
					total_revenue TEXT NOT NULL DEFAULT '0',
					management_fee TEXT NOT NULL DEFAULT '0',
					visit_fees TEXT NOT NULL DEFAULT '0',
					total_expenses TEXT NOT NULL DEFAULT '0',
					net_to_owner TEXT NOT NULL DEFAULT '0',
					payout_status TEXT NOT NULL DEFAULT '',
					payout_to_owner TEXT,
					payout_reference TEXT NOT NULL DEFAULT '',
					payout_at DATETIME,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_reconciliations_status ON reconciliations(status)`,

				`CREATE TABLE IF NOT EXISTS line_items (
					seq INTEGER PRIMARY KEY AUTOINCREMENT,
					id TEXT UNIQUE NOT NULL,
					reconciliation_id TEXT NOT NULL,
					item_type TEXT NOT NULL,
					item_id TEXT,
					amount TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					fee_type TEXT NOT NULL DEFAULT '',
					verified BOOLEAN NOT NULL DEFAULT 0,
					excluded BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (reconciliation_id) REFERENCES reconciliations(id)
				)`,
				`CREATE INDEX idx_line_items_reconciliation ON line_items(reconciliation_id, seq)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					property_name TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL,
					vendor TEXT NOT NULL DEFAULT '',
					amount TEXT NOT NULL,
					incurred_on DATETIME,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add reconciliation audit log",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS audit_log (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					reconciliation_id TEXT NOT NULL,
					action TEXT NOT NULL,
					actor TEXT NOT NULL DEFAULT '',
					reason TEXT NOT NULL DEFAULT '',
					previous_values TEXT,
					new_values TEXT,
					created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_audit_log_reconciliation ON audit_log(reconciliation_id, id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index line items by source record",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_line_items_source ON line_items(item_type, item_id)`)
			return err
		},
	},
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
