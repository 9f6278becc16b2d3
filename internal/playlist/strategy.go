package playlist

import (
	"sort"

	"github.com/euphonyfm/euphony/internal/models"
)

// RankingStrategy orders a candidate pool relative to one or more seeds.
// Implementations return a new slice and leave the pool untouched.
type RankingStrategy interface {
	Name() string
	Order(seeds, pool []*models.Song, metric DistanceMetric) []*models.Song
}

// ClosestToSeed ranks every candidate once by its distance to the first
// seed. The resulting playlist orbits the seed song.
type ClosestToSeed struct{}

func (ClosestToSeed) Name() string { return "closest-to-seed" }

func (ClosestToSeed) Order(seeds, pool []*models.Song, metric DistanceMetric) []*models.Song {
	if len(seeds) == 0 {
		return nil
	}
	ranked := make([]*models.Song, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return metric(seeds[0].Features, ranked[i].Features) < metric(seeds[0].Features, ranked[j].Features)
	})
	return ranked
}

// SongToSong greedily appends the nearest unused candidate to the last
// appended song, producing a path through feature space rather than a
// cluster around the seed.
type SongToSong struct{}

func (SongToSong) Name() string { return "song-to-song" }

func (SongToSong) Order(seeds, pool []*models.Song, metric DistanceMetric) []*models.Song {
	if len(seeds) == 0 {
		return nil
	}

	remaining := make([]*models.Song, len(pool))
	copy(remaining, pool)

	ranked := make([]*models.Song, 0, len(pool))
	last := seeds[0]
	for len(remaining) > 0 {
		best := 0
		bestDist := metric(last.Features, remaining[0].Features)
		for i := 1; i < len(remaining); i++ {
			if d := metric(last.Features, remaining[i].Features); d < bestDist {
				best, bestDist = i, d
			}
		}
		last = remaining[best]
		ranked = append(ranked, last)
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return ranked
}

// ClosestToGroup ranks candidates by their mean distance to every seed.
// Used when extending an existing queue, where the whole queue seeds the
// ranking.
type ClosestToGroup struct{}

func (ClosestToGroup) Name() string { return "closest-to-group" }

func (ClosestToGroup) Order(seeds, pool []*models.Song, metric DistanceMetric) []*models.Song {
	if len(seeds) == 0 {
		return nil
	}

	aggregate := func(s *models.Song) float64 {
		var sum float64
		for _, seed := range seeds {
			sum += metric(seed.Features, s.Features)
		}
		return sum / float64(len(seeds))
	}

	ranked := make([]*models.Song, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return aggregate(ranked[i]) < aggregate(ranked[j])
	})
	return ranked
}
