package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/euphonyfm/euphony/internal/cuepath"
	"github.com/euphonyfm/euphony/internal/shared"
)

// NumFeatures is the length of every analysis feature vector. Vectors of any
// other length are rejected at the storage boundary.
const NumFeatures = 20

// FeatureVersion tags cached vectors with the analyzer generation that
// produced them. Bumping it forces re-analysis of the whole library on the
// next sync without invalidating the cache mid-migration.
const FeatureVersion = 1

// FeatureVector is a fixed-length numeric descriptor of a song. The core
// never interprets individual dimensions; it only measures distances.
type FeatureVector []float64

// Validate checks that the vector has exactly [NumFeatures] dimensions.
func (v FeatureVector) Validate() error {
	if len(v) != NumFeatures {
		return fmt.Errorf("feature vector has %d values, want %d", len(v), NumFeatures)
	}
	return nil
}

// Metadata holds the tag fields read during analysis. TrackNumber is kept as
// the raw tag string ("7", "07", "7/12"); use [Metadata.TrackIndex] for a
// numeric value.
type Metadata struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	TrackNumber string  `json:"track_number"`
	Genre       string  `json:"genre"`
	Duration    float64 `json:"duration"`
}

// TrackIndex parses the leading integer of TrackNumber, tolerating "7/12"
// style tags. The second return is false when no number can be parsed.
func (m Metadata) TrackIndex() (int, bool) {
	raw := m.TrackNumber
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = raw[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Song is one cached library entry. Path is the canonical MPD-relative path
// and the unique cache key; for a track inside a CUE container it is the
// synthesized container/CUE_TRACKnnn form (see the cuepath package).
type Song struct {
	Path     string
	Features FeatureVector
	Meta     Metadata
	Analyzed bool
	Version  int
}

// Validate enforces the cache-entry invariant: an analyzed song carries a
// full feature vector, an unanalyzed one carries none.
func (s *Song) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("song has empty path")
	}
	if s.Analyzed {
		return s.Features.Validate()
	}
	if len(s.Features) != 0 {
		return fmt.Errorf("unanalyzed song %q carries %d feature values", s.Path, len(s.Features))
	}
	return nil
}

// RemotePath reconstructs the MPD-addressable path for this entry. For a
// CUE container entry the track index is re-derived from the stored track
// number tag; missing metadata fails rather than mis-address another track.
func (s *Song) RemotePath() (string, error) {
	container, _, ok := cuepath.Split(s.Path)
	if !ok {
		return s.Path, nil
	}
	n, parsed := s.Meta.TrackIndex()
	if !parsed || n == 0 {
		return "", fmt.Errorf("%w: %s", shared.ErrNoTrackIndex, s.Path)
	}
	return cuepath.Join(container, n), nil
}

// DisplayTitle returns "Artist - Title" when both tags are present, falling
// back to the path.
func (s *Song) DisplayTitle() string {
	switch {
	case s.Meta.Title != "" && s.Meta.Artist != "":
		return s.Meta.Artist + " - " + s.Meta.Title
	case s.Meta.Title != "":
		return s.Meta.Title
	default:
		return s.Path
	}
}

// QueueItem is one entry of the remote play queue as last observed. Pos is
// not a stable identity: any queue mutation may shift the positions of
// unaffected items.
type QueueItem struct {
	Pos  int
	Path string
}

// FailedEntry records a path whose analysis failed, for the `failed` listing.
type FailedEntry struct {
	Path  string
	Error string
}
