package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists consultations in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS consultations (
			id BIGSERIAL PRIMARY KEY,
			caller TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
			recording_url TEXT NOT NULL DEFAULT '',
			transcript TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL DEFAULT '',
			advice TEXT NOT NULL DEFAULT '',
			clinic_name TEXT NOT NULL DEFAULT '',
			clinic_address TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_consultations_id_desc ON consultations (id DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, c *Consultation) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO consultations (caller, timestamp, recording_url, transcript, condition, advice, clinic_name, clinic_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		c.Caller,
		c.Timestamp,
		c.RecordingURL,
		c.Transcript,
		c.Condition,
		c.Advice,
		c.ClinicName,
		c.ClinicAddress,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("save consultation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Consultation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, caller, timestamp, recording_url, transcript, condition, advice, clinic_name, clinic_address
		 FROM consultations ORDER BY id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	defer rows.Close()

	items := make([]Consultation, 0, limit)
	for rows.Next() {
		var c Consultation
		if err := rows.Scan(&c.ID, &c.Caller, &c.Timestamp, &c.RecordingURL, &c.Transcript, &c.Condition, &c.Advice, &c.ClinicName, &c.ClinicAddress); err != nil {
			return nil, fmt.Errorf("scan consultation row: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consultation rows: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
