package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendUsage inserts one usage record. Records are append-only; an empty ID
// is replaced with a fresh UUID and a zero CreatedAt with the current time.
func (s *Store) AppendUsage(ctx context.Context, rec UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (id, user_id, status, latency_ms, input_tokens, output_tokens, model, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Status, rec.LatencyMs, rec.InputTokens,
		rec.OutputTokens, rec.Model, rec.Error, createdAt.Format(time.RFC3339Nano),
	)
	return err
}

// CountUsageSince returns the number of usage records for userID created at
// or after since. This backs the sliding-window rate limit.
func (s *Store) CountUsageSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM usage_records WHERE user_id = ? AND created_at >= ?`,
		userID, since.UTC().Format(time.RFC3339Nano),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting usage records: %w", err)
	}
	return count, nil
}

// RecentUsage returns up to limit of the newest usage records for userID.
func (s *Store) RecentUsage(ctx context.Context, userID string, limit int) ([]UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, status, latency_ms, input_tokens, output_tokens, model, error, created_at
		FROM usage_records WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []UsageRecord
	for rows.Next() {
		var r UsageRecord
		var createdAt string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Status, &r.LatencyMs, &r.InputTokens, &r.OutputTokens, &r.Model, &r.Error, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		r.CreatedAt = t
		results = append(results, r)
	}
	return results, rows.Err()
}
