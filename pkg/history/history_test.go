package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleObs(entryID string, n int) Observation {
	return Observation{
		EntryID:    entryID,
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		Status:     "AVAILABLE",
		LatencyMs:  int64(100 + n),
		Source:     SourceDiscovery,
		ObservedAt: time.Date(2026, 7, 1, 12, 0, n, 0, time.UTC),
	}
}

func TestMemoryStoreNewestFirst(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := store.Record(ctx, sampleObs("openai_0", i)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].LatencyMs != 102 || got[2].LatencyMs != 100 {
		t.Errorf("not newest first: %v", got)
	}
}

func TestMemoryStoreBounded(t *testing.T) {
	store := NewMemoryStore(5)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		store.Record(ctx, sampleObs("openai_0", i))
	}
	got, _ := store.Recent(ctx, 0)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0].LatencyMs != 119 {
		t.Errorf("newest latency = %d, want 119", got[0].LatencyMs)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	obs := sampleObs("gemini_0", 1)
	obs.Detail = "quota exceeded"
	obs.Source = SourceRoute
	if err := store.Record(ctx, obs); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].EntryID != "gemini_0" || got[0].Detail != "quota exceeded" || got[0].Source != SourceRoute {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	store.Record(context.Background(), sampleObs("openai_0", 1))
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}
