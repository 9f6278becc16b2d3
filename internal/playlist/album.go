package playlist

import (
	"fmt"
	"sort"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
)

// GroupByAlbum buckets analyzed pool songs by album tag. Songs with no
// album tag are skipped: they cannot participate in album ranking.
func GroupByAlbum(pool []*models.Song) map[string][]*models.Song {
	albums := map[string][]*models.Song{}
	for _, s := range pool {
		if !s.Analyzed || s.Meta.Album == "" {
			continue
		}
		albums[s.Meta.Album] = append(albums[s.Meta.Album], s)
	}
	return albums
}

// BuildAlbumSequence ranks whole albums by their aggregate distance to the
// seed album and concatenates the albumCount closest (seed album first),
// each album's tracks in track-number order.
func BuildAlbumSequence(seedAlbum string, albums map[string][]*models.Song, albumCount int, metric DistanceMetric) ([]*models.Song, error) {
	seedTracks, ok := albums[seedAlbum]
	if !ok || len(seedTracks) == 0 {
		return nil, fmt.Errorf("%w: album %q has no analyzed tracks", shared.ErrNotAnalyzed, seedAlbum)
	}
	if metric == nil {
		metric = Euclidean
	}

	type rankedAlbum struct {
		name string
		dist float64
	}
	ranked := make([]rankedAlbum, 0, len(albums))
	for name, tracks := range albums {
		if name == seedAlbum {
			continue
		}
		ranked = append(ranked, rankedAlbum{name: name, dist: albumDistance(seedTracks, tracks, metric)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].dist < ranked[j].dist })

	var sequence []*models.Song
	sequence = append(sequence, sortedByTrack(seedTracks)...)
	for i := 0; i < len(ranked) && i < albumCount-1; i++ {
		sequence = append(sequence, sortedByTrack(albums[ranked[i].name])...)
	}
	return sequence, nil
}

// albumDistance is the mean cross distance between two albums' tracks.
func albumDistance(a, b []*models.Song, metric DistanceMetric) float64 {
	var sum float64
	for _, x := range a {
		for _, y := range b {
			sum += metric(x.Features, y.Features)
		}
	}
	return sum / float64(len(a)*len(b))
}

// sortedByTrack orders an album's tracks by numeric track number, falling
// back to a lexicographic comparison of the raw tag when parsing fails.
func sortedByTrack(tracks []*models.Song) []*models.Song {
	out := make([]*models.Song, len(tracks))
	copy(out, tracks)
	sort.SliceStable(out, func(i, j int) bool {
		ni, iOK := out[i].Meta.TrackIndex()
		nj, jOK := out[j].Meta.TrackIndex()
		if iOK && jOK && ni != nj {
			return ni < nj
		}
		if !iOK || !jOK {
			return out[i].Meta.TrackNumber < out[j].Meta.TrackNumber
		}
		return out[i].Path < out[j].Path
	})
	return out
}
