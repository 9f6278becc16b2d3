package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
	tu "github.com/euphonyfm/euphony/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func analyzedSong(path string, v float64) *models.Song {
	return &models.Song{
		Path:     path,
		Features: tu.Vector(v),
		Meta: models.Metadata{
			Title:    "Title of " + path,
			Artist:   "Artist",
			Album:    "Album",
			Duration: 180,
		},
		Analyzed: true,
		Version:  models.FeatureVersion,
	}
}

func TestSongRepository(t *testing.T) {
	t.Run("Upsert and Get round trip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := analyzedSong("music/a.flac", 0.25)
		song.Meta.TrackNumber = "3/12"
		song.Meta.Genre = "jazz"

		if err := repo.Upsert(song); err != nil {
			t.Fatalf("failed to upsert song: %v", err)
		}

		got, err := repo.Get("music/a.flac")
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if len(got.Features) != models.NumFeatures {
			t.Fatalf("expected %d features, got %d", models.NumFeatures, len(got.Features))
		}
		for i, f := range got.Features {
			if f != 0.25 {
				t.Fatalf("feature %d = %v, want 0.25", i, f)
			}
		}
		if got.Meta != song.Meta {
			t.Errorf("metadata mismatch: got %+v, want %+v", got.Meta, song.Meta)
		}
		if !got.Analyzed || got.Version != models.FeatureVersion {
			t.Errorf("expected analyzed song at version %d, got %+v", models.FeatureVersion, got)
		}
	})

	t.Run("Upsert replaces the full vector", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Upsert(analyzedSong("music/a.flac", 0.1)); err != nil {
			t.Fatalf("failed to upsert song: %v", err)
		}
		if err := repo.Upsert(analyzedSong("music/a.flac", 0.9)); err != nil {
			t.Fatalf("failed to re-upsert song: %v", err)
		}

		got, err := repo.Get("music/a.flac")
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if len(got.Features) != models.NumFeatures {
			t.Fatalf("expected %d features after re-upsert, got %d", models.NumFeatures, len(got.Features))
		}
		if got.Features[0] != 0.9 {
			t.Errorf("expected replaced features, got %v", got.Features[0])
		}
	})

	t.Run("Upsert rejects invalid vector", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := &models.Song{Path: "music/a.flac", Features: models.FeatureVector{1, 2}, Analyzed: true}

		if err := repo.Upsert(song); err == nil {
			t.Error("expected error for short feature vector")
		}
	})

	t.Run("Get missing song", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if _, err := repo.Get("music/nope.flac"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("UpsertFailed is idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.UpsertFailed("music/bad.flac", "decode error"); err != nil {
			t.Fatalf("failed to record failure: %v", err)
		}
		if err := repo.UpsertFailed("music/bad.flac", "decode error again"); err != nil {
			t.Fatalf("failed to re-record failure: %v", err)
		}

		failed, err := repo.Failed()
		if err != nil {
			t.Fatalf("failed to list failures: %v", err)
		}
		if len(failed) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(failed))
		}
		if failed[0].Path != "music/bad.flac" || failed[0].Error != "decode error again" {
			t.Errorf("unexpected failure entry: %+v", failed[0])
		}
	})

	t.Run("UpsertFailed clears features of a previously analyzed song", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Upsert(analyzedSong("music/a.flac", 0.5)); err != nil {
			t.Fatalf("failed to upsert song: %v", err)
		}
		if err := repo.UpsertFailed("music/a.flac", "re-analysis failed"); err != nil {
			t.Fatalf("failed to record failure: %v", err)
		}

		got, err := repo.Get("music/a.flac")
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if got.Analyzed {
			t.Error("expected song to be marked unanalyzed")
		}
		if len(got.Features) != 0 {
			t.Errorf("expected no features, got %d", len(got.Features))
		}
	})

	t.Run("All and AllAnalyzed", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Upsert(analyzedSong("music/a.flac", 0.1)); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Upsert(analyzedSong("music/b.flac", 0.2)); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.UpsertFailed("music/bad.flac", "boom"); err != nil {
			t.Fatalf("failed to record failure: %v", err)
		}

		all, err := repo.All()
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(all))
		}

		analyzed, err := repo.AllAnalyzed()
		if err != nil {
			t.Fatalf("failed to list analyzed songs: %v", err)
		}
		if len(analyzed) != 2 {
			t.Fatalf("expected 2 analyzed songs, got %d", len(analyzed))
		}
		for _, s := range analyzed {
			if len(s.Features) != models.NumFeatures {
				t.Errorf("song %s loaded with %d features", s.Path, len(s.Features))
			}
		}
	})

	t.Run("Versions", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Upsert(analyzedSong("music/a.flac", 0.1)); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.UpsertFailed("music/bad.flac", "boom"); err != nil {
			t.Fatalf("failed to record failure: %v", err)
		}

		versions, err := repo.Versions()
		if err != nil {
			t.Fatalf("failed to get versions: %v", err)
		}
		if versions["music/a.flac"] != models.FeatureVersion {
			t.Errorf("expected version %d, got %d", models.FeatureVersion, versions["music/a.flac"])
		}
		if versions["music/bad.flac"] != 0 {
			t.Errorf("expected placeholder version 0, got %d", versions["music/bad.flac"])
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Upsert(analyzedSong("music/a.flac", 0.1)); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		if err := repo.Delete("music/a.flac"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get("music/a.flac"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound after delete, got %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM feature").Scan(&count); err != nil {
			t.Fatalf("failed to count features: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no orphaned feature rows, got %d", count)
		}
	})

	t.Run("Delete missing song", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Delete("music/nope.flac"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("DeleteAll", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		if err := repo.Upsert(analyzedSong("music/a.flac", 0.1)); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}
		if err := repo.Upsert(analyzedSong("music/b.flac", 0.2)); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		if err := repo.DeleteAll(); err != nil {
			t.Fatalf("failed to wipe cache: %v", err)
		}

		all, err := repo.All()
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("expected empty cache, got %d songs", len(all))
		}
	})
}
