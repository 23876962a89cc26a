package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// AuditEntry is one row of the patient change audit trail.
type AuditEntry struct {
	EventID    string
	EventType  string
	RecordID   string
	Payload    json.RawMessage
	OccurredAt time.Time
}

// AuditLog appends patient change events to the patient_audit_log table.
type AuditLog struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewAuditLog creates an audit log writer.
func NewAuditLog(pool *pgxpool.Pool, logger *zap.Logger) *AuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLog{pool: pool, logger: logger}
}

// Append inserts an entry. Replays of an already-recorded event ID are
// no-ops, so the relay can safely reprocess.
func (a *AuditLog) Append(ctx context.Context, e AuditEntry) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO patient_audit_log (event_id, event_type, record_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`, e.EventID, e.EventType, e.RecordID, e.Payload, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT event_id, event_type, record_id, payload, occurred_at
		FROM patient_audit_log
		ORDER BY occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.EventID, &e.EventType, &e.RecordID, &e.Payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
