package repositories

import (
	"database/sql"
	"fmt"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
)

// SongRepository implements the feature cache over SQLite.
//
// Path is the unique key. Analyzed songs carry exactly models.NumFeatures
// feature rows; failure placeholders carry none.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Upsert stores an analyzed song, replacing metadata and the entire feature
// vector as one atomic unit.
func (r *SongRepository) Upsert(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO song (path, title, artist, album, track_number, genre, duration, analyzed, version, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '')
		ON CONFLICT(path)
		DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			track_number = excluded.track_number,
			genre = excluded.genre,
			duration = excluded.duration,
			analyzed = excluded.analyzed,
			version = excluded.version,
			error = ''
	`

	if _, err := tx.Exec(query,
		song.Path,
		song.Meta.Title,
		song.Meta.Artist,
		song.Meta.Album,
		song.Meta.TrackNumber,
		song.Meta.Genre,
		song.Meta.Duration,
		song.Analyzed,
		song.Version,
	); err != nil {
		return fmt.Errorf("failed to upsert song: %w", err)
	}

	var songID int64
	if err := tx.QueryRow("SELECT id FROM song WHERE path = ?", song.Path).Scan(&songID); err != nil {
		return fmt.Errorf("failed to resolve song id: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM feature WHERE song_id = ?", songID); err != nil {
		return fmt.Errorf("failed to clear features: %w", err)
	}

	for i, feature := range song.Features {
		if _, err := tx.Exec(
			"INSERT INTO feature (song_id, feature, feature_index) VALUES (?, ?, ?)",
			songID, feature, i,
		); err != nil {
			return fmt.Errorf("failed to insert feature %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}

// UpsertFailed records an analysis failure for a path. Idempotent: running
// it twice leaves a single unanalyzed placeholder row and no feature rows.
func (r *SongRepository) UpsertFailed(path, cause string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO song (path, analyzed, version, error)
		VALUES (?, FALSE, 0, ?)
		ON CONFLICT(path)
		DO UPDATE SET analyzed = FALSE, version = 0, error = excluded.error
	`
	if _, err := tx.Exec(query, path, cause); err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}

	if _, err := tx.Exec(
		"DELETE FROM feature WHERE song_id IN (SELECT id FROM song WHERE path = ?)", path,
	); err != nil {
		return fmt.Errorf("failed to clear features: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}

// Get retrieves a song by its canonical path, including its feature vector.
func (r *SongRepository) Get(path string) (*models.Song, error) {
	query := `
		SELECT path, title, artist, album, track_number, genre, duration, analyzed, version
		FROM song
		WHERE path = ?
	`

	song, err := scanSong(r.db.QueryRow(query, path))
	if err != nil {
		return nil, err
	}

	if song.Analyzed {
		features, err := r.features(path)
		if err != nil {
			return nil, err
		}
		song.Features = features
		if err := song.Validate(); err != nil {
			return nil, fmt.Errorf("corrupt cache entry %q: %w", path, err)
		}
	}

	return song, nil
}

// All retrieves every cached song. Analyzed entries carry their feature
// vectors; placeholders come back with none.
func (r *SongRepository) All() ([]*models.Song, error) {
	query := `
		SELECT path, title, artist, album, track_number, genre, duration, analyzed, version
		FROM song
		ORDER BY path
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	byPath := map[string]*models.Song{}
	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		byPath[song.Path] = song
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	featRows, err := r.db.Query(`
		SELECT song.path, feature.feature
		FROM feature
		INNER JOIN song ON song.id = feature.song_id
		WHERE song.analyzed = TRUE
		ORDER BY song.path, feature.feature_index
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer featRows.Close()

	for featRows.Next() {
		var path string
		var feature float64
		if err := featRows.Scan(&path, &feature); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		if song, ok := byPath[path]; ok {
			song.Features = append(song.Features, feature)
		}
	}
	if err := featRows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, song := range songs {
		if err := song.Validate(); err != nil {
			return nil, fmt.Errorf("corrupt cache entry %q: %w", song.Path, err)
		}
	}

	return songs, nil
}

// AllAnalyzed retrieves the ranking pool: analyzed songs only.
func (r *SongRepository) AllAnalyzed() ([]*models.Song, error) {
	songs, err := r.All()
	if err != nil {
		return nil, err
	}

	analyzed := songs[:0]
	for _, song := range songs {
		if song.Analyzed {
			analyzed = append(analyzed, song)
		}
	}
	return analyzed, nil
}

// Versions returns every cached path mapped to its feature format version.
// Unanalyzed placeholders report version 0.
func (r *SongRepository) Versions() (map[string]int, error) {
	rows, err := r.db.Query("SELECT path, version FROM song")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	versions := map[string]int{}
	for rows.Next() {
		var path string
		var version int
		if err := rows.Scan(&path, &version); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions[path] = version
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return versions, nil
}

// Delete removes a song and its feature rows as one atomic unit.
func (r *SongRepository) Delete(path string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM feature WHERE song_id IN (SELECT id FROM song WHERE path = ?)", path,
	); err != nil {
		return fmt.Errorf("failed to delete features: %w", err)
	}

	result, err := tx.Exec("DELETE FROM song WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, path)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}

// DeleteAll wipes the cache. Used by full rescans.
func (r *SongRepository) DeleteAll() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM feature"); err != nil {
		return fmt.Errorf("failed to clear features: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM song"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return nil
}

// Failed lists paths whose last analysis failed, with the recorded cause.
func (r *SongRepository) Failed() ([]models.FailedEntry, error) {
	rows, err := r.db.Query("SELECT path, error FROM song WHERE analyzed = FALSE ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var failed []models.FailedEntry
	for rows.Next() {
		var entry models.FailedEntry
		if err := rows.Scan(&entry.Path, &entry.Error); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		failed = append(failed, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return failed, nil
}

// scanner abstracts sql.Row and sql.Rows for scanSong.
type scanner interface {
	Scan(dest ...any) error
}

func scanSong(row scanner) (*models.Song, error) {
	var song models.Song
	err := row.Scan(
		&song.Path,
		&song.Meta.Title,
		&song.Meta.Artist,
		&song.Meta.Album,
		&song.Meta.TrackNumber,
		&song.Meta.Genre,
		&song.Meta.Duration,
		&song.Analyzed,
		&song.Version,
	)
	if err == sql.ErrNoRows {
		return nil, shared.ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return &song, nil
}

// features loads the ordered feature vector for one analyzed song.
func (r *SongRepository) features(path string) (models.FeatureVector, error) {
	rows, err := r.db.Query(`
		SELECT feature.feature
		FROM feature
		INNER JOIN song ON song.id = feature.song_id
		WHERE song.path = ?
		ORDER BY feature.feature_index
	`, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var features models.FeatureVector
	for rows.Next() {
		var f float64
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return features, nil
}
