package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "consultations.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &Consultation{
		Caller:        "+15550001111",
		RecordingURL:  "https://example.com/RE1.wav",
		Transcript:    "I have a fever and cough",
		Condition:     "fever",
		Advice:        "Stay hydrated.",
		ClinicName:    "Apollo Clinic",
		ClinicAddress: "Apollo Clinic, Hyderabad",
	}
	if err := s.Save(ctx, c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if c.ID == 0 {
		t.Fatalf("ID = 0 after save, want assigned")
	}
	if c.Timestamp.IsZero() {
		t.Fatalf("Timestamp not stamped")
	}
	if time.Since(c.Timestamp) > time.Minute {
		t.Fatalf("Timestamp = %v, want roughly now in UTC", c.Timestamp)
	}
}

func TestSQLiteRecentDescendingOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, caller := range []string{"first", "second", "third"} {
		if err := s.Save(ctx, &Consultation{Caller: caller, Condition: "fever"}); err != nil {
			t.Fatalf("Save(%s) error = %v", caller, err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d rows, want 3", len(got))
	}
	if got[0].Caller != "third" || got[2].Caller != "first" {
		t.Fatalf("Recent() order = [%s %s %s], want descending id", got[0].Caller, got[1].Caller, got[2].Caller)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID <= got[i].ID {
			t.Fatalf("ids not strictly descending: %d then %d", got[i-1].ID, got[i].ID)
		}
	}
}

func TestSQLiteRecentIsIdempotentUnderNoWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &Consultation{Caller: "only", Condition: "cold"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	second, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() second call error = %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Caller != second[i].Caller {
			t.Fatalf("row %d differs between identical reads", i)
		}
	}
}

func TestSQLiteRecentLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Save(ctx, &Consultation{Caller: "c", Condition: "pain"}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d rows", len(got))
	}
}

func TestFactoryDefaultsToSQLite(t *testing.T) {
	s, err := New(context.Background(), "", filepath.Join(t.TempDir(), "c.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Fatalf("New() = %T, want *SQLiteStore when no database URL", s)
	}
}
