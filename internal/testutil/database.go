// Package testutil provides test utilities shared by packages that need a
// migrated database seeded with reconciliations.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/ingoatl/propertycentral/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with the schema applied.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	rec := db.Seed(testutil.NewReconciliation("rec-1").FullService().Approved())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// Seed builds the reconciliation described by b or fails the test.
func (db *TestDB) Seed(b *ReconciliationBuilder) *model.Reconciliation {
	db.t.Helper()
	rec, err := b.Build(context.Background(), db.Storage)
	if err != nil {
		db.t.Fatalf("failed to seed reconciliation: %v", err)
	}
	return rec
}

// MustGetReconciliation reloads a reconciliation or fails the test.
func (db *TestDB) MustGetReconciliation(id string) *model.Reconciliation {
	db.t.Helper()
	rec, err := db.Storage.GetReconciliation(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get reconciliation %s: %v", id, err)
	}
	return rec
}

// MustGetAuditEntries returns the audit trail of a reconciliation or fails the test.
func (db *TestDB) MustGetAuditEntries(id string) []model.AuditEntry {
	db.t.Helper()
	entries, err := db.Storage.GetAuditEntries(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get audit entries for %s: %v", id, err)
	}
	return entries
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	tx, err := db.Storage.BeginTx(context.Background())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
