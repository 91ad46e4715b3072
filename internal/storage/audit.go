package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ingoatl/propertycentral/internal/model"
)

// WriteAuditEntry appends an entry to the audit log.
func (s *SQLiteStorage) WriteAuditEntry(ctx context.Context, entry *model.AuditEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: audit entry", ErrNilParameter)
	}
	if err := validateString(entry.ReconciliationID, "reconciliationID"); err != nil {
		return err
	}
	if err := validateString(string(entry.Action), "action"); err != nil {
		return err
	}

	previous, err := marshalValues(entry.PreviousValues)
	if err != nil {
		return fmt.Errorf("failed to marshal previous values: %w", err)
	}
	next, err := marshalValues(entry.NewValues)
	if err != nil {
		return fmt.Errorf("failed to marshal new values: %w", err)
	}

	now := time.Now().UTC()
	result, err := s.conn.ExecContext(ctx, `
		INSERT INTO audit_log (reconciliation_id, action, actor, reason, previous_values, new_values, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ReconciliationID, entry.Action, entry.Actor, entry.Reason, previous, next, now,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = now
	return nil
}

// GetAuditEntries returns a reconciliation's audit trail, oldest first.
func (s *SQLiteStorage) GetAuditEntries(ctx context.Context, reconciliationID string) ([]model.AuditEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, reconciliation_id, action, actor, reason, previous_values, new_values, created_at
		FROM audit_log WHERE reconciliation_id = ? ORDER BY id`, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		var previous, next sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ReconciliationID, &entry.Action, &entry.Actor,
			&entry.Reason, &previous, &next, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if entry.PreviousValues, err = unmarshalValues(previous); err != nil {
			return nil, fmt.Errorf("failed to unmarshal previous values: %w", err)
		}
		if entry.NewValues, err = unmarshalValues(next); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new values: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func marshalValues(values map[string]any) (sql.NullString, error) {
	if values == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalValues(raw sql.NullString) (map[string]any, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil, err
	}
	return values, nil
}
