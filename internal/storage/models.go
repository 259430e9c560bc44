package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UsageRecord is one append-only entry written per processed command,
// success or failure. Records are never updated after insertion.
type UsageRecord struct {
	ID           string
	UserID       string
	Status       string // "success" or "failed"
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
	Model        string
	Error        string
	CreatedAt    time.Time
}

// Favorite is a named command payload saved by a user, used as a lookup
// table by the variety and scheduling layers.
type Favorite struct {
	UserID      string
	Name        string
	PayloadJSON string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
