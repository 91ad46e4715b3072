package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
)

const lineItemColumns = `seq, id, reconciliation_id, item_type, item_id, amount,
	description, fee_type, verified, excluded, created_at`

func scanLineItem(row rowScanner) (*model.LineItem, error) {
	var item model.LineItem
	var sourceID sql.NullString
	if err := row.Scan(
		&item.Sequence, &item.ID, &item.ReconciliationID, &item.Type, &sourceID, &item.Amount,
		&item.Description, &item.FeeType, &item.Verified, &item.Excluded, &item.CreatedAt,
	); err != nil {
		return nil, err
	}
	item.SourceID = sourceID.String
	return &item, nil
}

// AddLineItems appends items to their reconciliations. Insertion order is
// preserved and becomes the order GetLineItems returns.
func (s *SQLiteStorage) AddLineItems(ctx context.Context, items []model.LineItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: line items", ErrEmptySlice)
	}

	for i := range items {
		item := &items[i]
		if err := item.Validate(); err != nil {
			return fmt.Errorf("line item at index %d: %w", i, err)
		}
		if err := validateString(item.ReconciliationID, "reconciliationID"); err != nil {
			return fmt.Errorf("line item at index %d: %w", i, err)
		}

		var sourceID sql.NullString
		if item.SourceID != "" {
			sourceID = sql.NullString{String: item.SourceID, Valid: true}
		}

		now := time.Now().UTC()
		result, err := s.conn.ExecContext(ctx, `
			INSERT INTO line_items (
				id, reconciliation_id, item_type, item_id, amount,
				description, fee_type, verified, excluded, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.ReconciliationID, item.Type, sourceID, item.Amount,
			item.Description, item.FeeType, item.Verified, item.Excluded, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("line item %s: %w", item.ID, common.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to insert line item %s: %w", item.ID, err)
		}

		seq, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		item.Sequence = seq
		item.CreatedAt = now
	}
	return nil
}

// GetLineItems returns a reconciliation's line items in insertion order.
func (s *SQLiteStorage) GetLineItems(ctx context.Context, reconciliationID string) ([]model.LineItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(reconciliationID, "reconciliationID"); err != nil {
		return nil, err
	}

	return s.queryLineItems(ctx,
		`SELECT `+lineItemColumns+` FROM line_items WHERE reconciliation_id = ? ORDER BY seq`,
		reconciliationID)
}

// GetLineItem retrieves a single line item.
func (s *SQLiteStorage) GetLineItem(ctx context.Context, id string) (*model.LineItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.conn.QueryRowContext(ctx, `SELECT `+lineItemColumns+` FROM line_items WHERE id = ?`, id)
	item, err := scanLineItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("line item %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query line item: %w", err)
	}
	return item, nil
}

// ReviewLineItem records reviewer decisions on a line item. Only items of a
// draft reconciliation can be reviewed; approved and later reconciliations
// are locked and return ErrReconciliationLocked.
func (s *SQLiteStorage) ReviewLineItem(ctx context.Context, id string, review service.LineItemReview) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var sets []string
	var args []any
	if review.Verified != nil {
		sets = append(sets, "verified = ?")
		args = append(args, *review.Verified)
	}
	if review.Excluded != nil {
		sets = append(sets, "excluded = ?")
		args = append(args, *review.Excluded)
	}
	if len(sets) == 0 {
		return fmt.Errorf("%w: review has no changes", common.ErrInvalidInput)
	}
	args = append(args, id, model.StatusDraft)

	result, err := s.conn.ExecContext(ctx,
		`UPDATE line_items SET `+strings.Join(sets, ", ")+`
		 WHERE id = ?
			AND reconciliation_id IN (SELECT id FROM reconciliations WHERE status = ?)`, args...)
	if err != nil {
		return fmt.Errorf("failed to review line item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var status model.ReconciliationStatus
	err = s.conn.QueryRowContext(ctx, `
		SELECT r.status FROM line_items li
		JOIN reconciliations r ON r.id = li.reconciliation_id
		WHERE li.id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("line item %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check line item: %w", err)
	}
	return fmt.Errorf("line item %s on %s reconciliation: %w", id, status, ErrReconciliationLocked)
}

// GetLineItemsBySource returns every line item, across reconciliations, that
// references the given source record.
func (s *SQLiteStorage) GetLineItemsBySource(ctx context.Context, itemType model.ItemType, sourceID string) ([]model.LineItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sourceID, "sourceID"); err != nil {
		return nil, err
	}

	return s.queryLineItems(ctx,
		`SELECT `+lineItemColumns+` FROM line_items WHERE item_type = ? AND item_id = ? ORDER BY seq`,
		itemType, sourceID)
}

// DeleteLineItemsBySource removes every line item referencing the source record.
func (s *SQLiteStorage) DeleteLineItemsBySource(ctx context.Context, itemType model.ItemType, sourceID string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(sourceID, "sourceID"); err != nil {
		return 0, err
	}

	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM line_items WHERE item_type = ? AND item_id = ?`, itemType, sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete line items: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStorage) queryLineItems(ctx context.Context, query string, args ...any) ([]model.LineItem, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []model.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
