package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "search_history")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for a table without a sequence")
	}
}

func TestSearchHistoryRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchHistoryRepository(db)
		record := models.NewSearchRecord(0, "Bohemian Rhapsody", models.KindTrack, "spotify", 3)

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		if record.ID() == "" {
			t.Error("record ID should be set after creation")
		}
		if record.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", record.Sequence())
		}
	})

	t.Run("Create Validation", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchHistoryRepository(db)

		tc := []*models.SearchRecord{
			models.NewSearchRecord(0, "  ", models.KindTrack, "spotify", 0),
			models.NewSearchRecord(0, "queen", models.Kind("playlist"), "spotify", 0),
			models.NewSearchRecord(0, "queen", models.KindTrack, "", 0),
			models.NewSearchRecord(0, "queen", models.KindTrack, "spotify", -1),
		}
		for i, record := range tc {
			if err := repo.Create(record); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
			}
		}

		next, _ := NextSequence(db, "search_history")
		if next != 1 {
			t.Errorf("invalid records must not consume sequence numbers, next = %d", next)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchHistoryRepository(db)
		record := models.NewSearchRecord(0, "Queen", models.KindArtist, "deezer", 7)
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		retrieved, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}

		if retrieved.Query() != "Queen" || retrieved.Kind() != models.KindArtist || retrieved.Provider() != "deezer" {
			t.Errorf("unexpected record %+v", retrieved)
		}
		if retrieved.Results() != 7 {
			t.Errorf("expected 7 results, got %d", retrieved.Results())
		}
		if retrieved.CreatedAt().IsZero() {
			t.Error("expected created_at to round trip")
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewSearchHistoryRepository(db).Get("nonexistent-id")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchHistoryRepository(db)
		record := models.NewSearchRecord(0, "Queen", models.KindTrack, "spotify", 1)
		repo.Create(record)

		record.SetResults(12)
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update record: %v", err)
		}

		retrieved, _ := repo.Get(record.ID())
		if retrieved.Results() != 12 {
			t.Errorf("expected 12 results, got %d", retrieved.Results())
		}

		missing := models.NewSearchRecord(0, "x", models.KindTrack, "spotify", 0)
		missing.SetID("nonexistent-id")
		if err := repo.Update(missing); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchHistoryRepository(db)
		record := models.NewSearchRecord(0, "Queen", models.KindTrack, "spotify", 1)
		repo.Create(record)

		if err := repo.Delete(record.ID()); err != nil {
			t.Fatalf("failed to delete record: %v", err)
		}
		if _, err := repo.Get(record.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected deleted record to be gone, got %v", err)
		}
		if err := repo.Delete(record.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchHistoryRepository(db)
		searches := []struct {
			query    string
			kind     models.Kind
			provider string
		}{
			{"Bohemian Rhapsody", models.KindTrack, "spotify"},
			{"Queen", models.KindArtist, "spotify"},
			{"A Night At The Opera", models.KindAlbum, "deezer"},
			{"Queen II", models.KindAlbum, "spotify"},
		}
		for _, s := range searches {
			if err := repo.RecordSearch(s.query, s.kind, s.provider, 3); err != nil {
				t.Fatalf("RecordSearch() error = %v", err)
			}
		}

		t.Run("Newest First", func(t *testing.T) {
			records, err := repo.List(nil)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(records) != 4 {
				t.Fatalf("expected 4 records, got %d", len(records))
			}
			if records[0].Query() != "Queen II" || records[3].Query() != "Bohemian Rhapsody" {
				t.Errorf("unexpected order: %s ... %s", records[0].Query(), records[3].Query())
			}
		})

		t.Run("Criteria", func(t *testing.T) {
			tc := []struct {
				name     string
				criteria map[string]any
				want     int
			}{
				{name: "query substring", criteria: map[string]any{"query": "Queen"}, want: 2},
				{name: "kind", criteria: map[string]any{"kind": models.KindAlbum}, want: 2},
				{name: "provider", criteria: map[string]any{"provider": "deezer"}, want: 1},
				{name: "limit", criteria: map[string]any{"limit": 3}, want: 3},
				{name: "combined", criteria: map[string]any{"query": "Queen", "kind": models.KindAlbum}, want: 1},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					records, err := repo.List(tt.criteria)
					if err != nil {
						t.Fatalf("List() error = %v", err)
					}
					if len(records) != tt.want {
						t.Errorf("expected %d records, got %d", tt.want, len(records))
					}
				})
			}
		})
	})

	t.Run("Clear", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchHistoryRepository(db)
		repo.RecordSearch("one", models.KindTrack, "spotify", 1)
		repo.RecordSearch("two", models.KindTrack, "spotify", 1)

		n, err := repo.Clear()
		if err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 removed records, got %d", n)
		}

		records, _ := repo.List(nil)
		if len(records) != 0 {
			t.Errorf("expected empty history, got %d", len(records))
		}

		record := models.NewSearchRecord(0, "three", models.KindTrack, "spotify", 0)
		repo.Create(record)
		if record.Sequence() != 3 {
			t.Errorf("sequence should keep counting after clear, got %d", record.Sequence())
		}
	})
}
