// Package store persists consultation records. Records are append-only:
// there are no update or delete operations, and insertion order matches
// call-arrival order for sequentially processed calls.
package store

import (
	"context"
	"strings"
	"time"
)

// Consultation is one processed call. Everything the caller session held
// except the local audio path, plus a UTC timestamp.
type Consultation struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Caller        string    `json:"caller"`
	Timestamp     time.Time `json:"timestamp"`
	RecordingURL  string    `json:"recording_url" gorm:"column:recording_url"`
	Transcript    string    `json:"transcript"`
	Condition     string    `json:"condition" gorm:"column:condition"`
	Advice        string    `json:"advice"`
	ClinicName    string    `json:"clinic_name"`
	ClinicAddress string    `json:"clinic_address"`
}

// TableName pins the gorm table name to the historical schema.
func (Consultation) TableName() string { return "consultations" }

// Store appends and lists consultation records.
type Store interface {
	// Save appends one record, assigning ID and stamping Timestamp with UTC
	// now when zero. It commits synchronously.
	Save(ctx context.Context, c *Consultation) error
	// Recent returns up to limit records in descending id order.
	Recent(ctx context.Context, limit int) ([]Consultation, error)
	Close() error
}

// New creates a postgres-backed store when a database URL is configured,
// otherwise a local sqlite file store.
func New(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewSQLiteStore(sqlitePath)
}
