package scrobbler

import (
	"context"
	"os"
	"testing"
	"time"
)

// createTestHistory creates an in-memory SQLite history for testing
func createTestHistory(t *testing.T) *History {
	t.Helper()

	history, err := NewHistory(":memory:")
	if err != nil {
		t.Fatalf("failed to create test history: %v", err)
	}

	t.Cleanup(func() {
		_ = history.Close()
	})

	return history
}

func TestNewHistory(t *testing.T) {
	t.Run("in-memory database", func(t *testing.T) {
		history, err := NewHistory(":memory:")
		if err != nil {
			t.Fatalf("failed to create in-memory history: %v", err)
		}
		defer func() { _ = history.Close() }()

		if history.db == nil {
			t.Error("history database is nil")
		}
	})

	t.Run("file-based database", func(t *testing.T) {
		tmpfile, err := os.CreateTemp("", "needledrop-test-*.db")
		if err != nil {
			t.Fatalf("failed to create temp file: %v", err)
		}
		_ = tmpfile.Close()
		defer func() { _ = os.Remove(tmpfile.Name()) }()

		history, err := NewHistory(tmpfile.Name())
		if err != nil {
			t.Fatalf("failed to create file-based history: %v", err)
		}
		defer func() { _ = history.Close() }()

		if history.db == nil {
			t.Error("history database is nil")
		}
	})
}

func TestHistoryAdd(t *testing.T) {
	history := createTestHistory(t)
	ctx := context.Background()

	play := Play{
		Artist:    "Pink Floyd",
		Title:     "Money",
		PlayedAt:  time.Now(),
		Scrobbled: true,
	}

	id, err := history.Add(ctx, play)
	if err != nil {
		t.Fatalf("failed to add play: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive id, got %d", id)
	}

	count, err := history.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count plays: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 play, got %d", count)
	}
}

func TestHistoryRecent(t *testing.T) {
	history := createTestHistory(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	titles := []string{"Speak to Me", "Breathe", "Time"}
	for i, title := range titles {
		play := Play{
			Artist:   "Pink Floyd",
			Title:    title,
			PlayedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if _, err := history.Add(ctx, play); err != nil {
			t.Fatalf("failed to add play: %v", err)
		}
	}

	recent, err := history.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("failed to get recent plays: %v", err)
	}

	if len(recent) != 2 {
		t.Fatalf("expected 2 plays, got %d", len(recent))
	}
	if recent[0].Title != "Time" || recent[1].Title != "Breathe" {
		t.Errorf("plays are not ordered newest first: %q, %q", recent[0].Title, recent[1].Title)
	}
}

func TestHistoryLast(t *testing.T) {
	history := createTestHistory(t)
	ctx := context.Background()

	last, err := history.Last(ctx)
	if err != nil {
		t.Fatalf("failed to get last play: %v", err)
	}
	if last != nil {
		t.Errorf("expected nil for empty history, got %+v", last)
	}

	play := Play{
		Artist:   "Pink Floyd",
		Title:    "Money",
		PlayedAt: time.Now(),
	}
	if _, err := history.Add(ctx, play); err != nil {
		t.Fatalf("failed to add play: %v", err)
	}

	last, err = history.Last(ctx)
	if err != nil {
		t.Fatalf("failed to get last play: %v", err)
	}
	if last == nil {
		t.Fatal("expected a play")
	}
	if last.Artist != "Pink Floyd" || last.Title != "Money" {
		t.Errorf("unexpected last play: %+v", last)
	}
}

func TestHistoryCleanup(t *testing.T) {
	history := createTestHistory(t)
	ctx := context.Background()

	old := Play{
		Artist:   "Old Artist",
		Title:    "Old Track",
		PlayedAt: time.Now().Add(-10 * 24 * time.Hour),
	}
	if _, err := history.Add(ctx, old); err != nil {
		t.Fatalf("failed to add old play: %v", err)
	}

	recent := Play{
		Artist:   "Recent Artist",
		Title:    "Recent Track",
		PlayedAt: time.Now().Add(-time.Hour),
	}
	if _, err := history.Add(ctx, recent); err != nil {
		t.Fatalf("failed to add recent play: %v", err)
	}

	deleted, err := history.Cleanup(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("failed to cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted play, got %d", deleted)
	}

	count, err := history.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining play, got %d", count)
	}
}
