package model

import (
	"context"
	"time"
)

// Record is one completed submission row.
type Record struct {
	Time   time.Time
	UserID int64
	Handle string
	Fields map[string]string
}

type RecordStore interface {
	// Append writes the record locally and mirrors the file remotely.
	Append(ctx context.Context, rec Record) error

	// FindLast returns the most recent record for the user, or nil.
	FindLast(ctx context.Context, userID int64) (*Record, error)
}
