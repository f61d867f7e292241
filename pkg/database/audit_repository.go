// Copyright 2025 Certen Protocol
//
// Operational audit log for accepted update_trixel calls. This is forensic
// bookkeeping only -- not the per-trixel historical time series the core
// model explicitly excludes, since it records individual call events rather
// than a queryable spatial history and is entirely optional (the pipeline
// never reads it back).

package database

import (
	"context"
	"time"
)

// AuditEntry is one accepted update_trixel call.
type AuditEntry struct {
	WorldAddress  [32]byte
	TrixelID      uint64
	Caller        string
	Value         int64
	ResultingHash [32]byte
	AcceptedAt    time.Time
}

// AuditRepository persists AuditEntry rows to the update_audit_log table.
type AuditRepository struct {
	client *Client
}

// NewAuditRepository builds a repository bound to an open Client.
func NewAuditRepository(client *Client) *AuditRepository {
	return &AuditRepository{client: client}
}

// Record inserts one audit entry.
func (r *AuditRepository) Record(ctx context.Context, e AuditEntry) error {
	_, err := r.client.ExecContext(ctx, `
		INSERT INTO update_audit_log (world_address, trixel_id, caller, value, resulting_hash, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.WorldAddress[:], int64(e.TrixelID), e.Caller, e.Value, e.ResultingHash[:], e.AcceptedAt,
	)
	return err
}

// RecentForTrixel returns the most recent audit entries for a given world/trixel pair.
func (r *AuditRepository) RecentForTrixel(ctx context.Context, worldAddr [32]byte, trixelID uint64, limit int) ([]AuditEntry, error) {
	rows, err := r.client.QueryContext(ctx, `
		SELECT caller, value, resulting_hash, accepted_at
		FROM update_audit_log
		WHERE world_address = $1 AND trixel_id = $2
		ORDER BY accepted_at DESC
		LIMIT $3`,
		worldAddr[:], int64(trixelID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var hash []byte
		if err := rows.Scan(&e.Caller, &e.Value, &hash, &e.AcceptedAt); err != nil {
			return nil, err
		}
		e.WorldAddress = worldAddr
		e.TrixelID = trixelID
		copy(e.ResultingHash[:], hash)
		out = append(out, e)
	}
	return out, rows.Err()
}
