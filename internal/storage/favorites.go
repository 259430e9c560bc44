package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveFavorite inserts or replaces a named command payload for a user.
func (s *Store) SaveFavorite(ctx context.Context, f Favorite) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, name, payload_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET payload_json = excluded.payload_json, updated_at = excluded.updated_at`,
		f.UserID, f.Name, f.PayloadJSON, now, now,
	)
	return err
}

// GetFavorite looks up a favorite by display name.
func (s *Store) GetFavorite(ctx context.Context, userID, name string) (Favorite, error) {
	var f Favorite
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, payload_json, created_at, updated_at
		FROM favorites WHERE user_id = ? AND name = ?`,
		userID, name,
	).Scan(&f.UserID, &f.Name, &f.PayloadJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Favorite{}, ErrNotFound
	}
	if err != nil {
		return Favorite{}, err
	}
	if f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Favorite{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if f.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Favorite{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return f, nil
}

// ListFavorites returns all favorites for a user ordered by name.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, name, payload_json, created_at, updated_at
		FROM favorites WHERE user_id = ? ORDER BY name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Favorite
	for rows.Next() {
		var f Favorite
		var createdAt, updatedAt string
		if err := rows.Scan(&f.UserID, &f.Name, &f.PayloadJSON, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if f.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if f.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

// DeleteFavorite removes a favorite by display name.
func (s *Store) DeleteFavorite(ctx context.Context, userID, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
