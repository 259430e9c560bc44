package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsApplyOnce(t *testing.T) {
	s := openTestStore(t)

	// Re-running migrations against the same database must be a no-op.
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("querying schema_version: %v", err)
	}
	if count != 1 {
		t.Errorf("applied versions = %d, want 1", count)
	}
}

func TestAppendAndCountUsage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	records := []UsageRecord{
		{UserID: "alice", Status: "success", LatencyMs: 120, InputTokens: 500, OutputTokens: 80, Model: "claude-3-5-haiku-20241022", CreatedAt: base.Add(-2 * time.Minute)},
		{UserID: "alice", Status: "failed", Error: "overloaded", CreatedAt: base.Add(-30 * time.Second)},
		{UserID: "bob", Status: "success", CreatedAt: base.Add(-10 * time.Second)},
	}
	for _, r := range records {
		if err := s.AppendUsage(ctx, r); err != nil {
			t.Fatalf("appending usage: %v", err)
		}
	}

	count, err := s.CountUsageSince(ctx, "alice", base.Add(-time.Minute))
	if err != nil {
		t.Fatalf("counting usage: %v", err)
	}
	if count != 1 {
		t.Errorf("count within window = %d, want 1", count)
	}

	count, err = s.CountUsageSince(ctx, "alice", base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("counting usage: %v", err)
	}
	if count != 2 {
		t.Errorf("count over an hour = %d, want 2", count)
	}
}

func TestRecentUsageOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec := UsageRecord{
			UserID:    "alice",
			Status:    "success",
			Model:     "claude-3-5-haiku-20241022",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.AppendUsage(ctx, rec); err != nil {
			t.Fatalf("appending usage: %v", err)
		}
	}

	got, err := s.RecentUsage(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("listing usage: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("records = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Errorf("records not newest-first at index %d", i)
		}
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fav := Favorite{UserID: "alice", Name: "movie night", PayloadJSON: `{"effect":2,"brightness":60}`}
	if err := s.SaveFavorite(ctx, fav); err != nil {
		t.Fatalf("saving favorite: %v", err)
	}

	got, err := s.GetFavorite(ctx, "alice", "movie night")
	if err != nil {
		t.Fatalf("getting favorite: %v", err)
	}
	if got.PayloadJSON != fav.PayloadJSON {
		t.Errorf("payload = %q, want %q", got.PayloadJSON, fav.PayloadJSON)
	}

	// Upsert replaces the payload.
	fav.PayloadJSON = `{"effect":12}`
	if err := s.SaveFavorite(ctx, fav); err != nil {
		t.Fatalf("updating favorite: %v", err)
	}
	got, err = s.GetFavorite(ctx, "alice", "movie night")
	if err != nil {
		t.Fatalf("getting favorite: %v", err)
	}
	if got.PayloadJSON != `{"effect":12}` {
		t.Errorf("payload after upsert = %q", got.PayloadJSON)
	}

	list, err := s.ListFavorites(ctx, "alice")
	if err != nil {
		t.Fatalf("listing favorites: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("favorites = %d, want 1", len(list))
	}

	if err := s.DeleteFavorite(ctx, "alice", "movie night"); err != nil {
		t.Fatalf("deleting favorite: %v", err)
	}
	if _, err := s.GetFavorite(ctx, "alice", "movie night"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete, err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteFavorite(ctx, "alice", "movie night"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete, err = %v, want ErrNotFound", err)
	}
}

func TestFavoritesScopedPerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveFavorite(ctx, Favorite{UserID: "alice", Name: "sunset", PayloadJSON: `{}`}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetFavorite(ctx, "bob", "sunset"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob sees alice's favorite: err = %v", err)
	}
}
