package playlist

import (
	"fmt"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
)

// DefaultDedupThreshold is the distance under which two songs are treated
// as the same recording in different encodings.
const DefaultDedupThreshold = 0.05

// Options configures one build.
type Options struct {
	Metric         DistanceMetric
	Strategy       RankingStrategy
	Limit          int     // total sequence length, anchor included; 0 = unlimited
	Dedup          bool    // drop near-duplicates of already-selected songs
	DedupThreshold float64 // 0 = DefaultDedupThreshold
}

// BuildFromSeed ranks pool around a single seed and returns the target
// sequence, seed first.
func BuildFromSeed(seed *models.Song, pool []*models.Song, opts Options) ([]*models.Song, error) {
	if seed == nil {
		return nil, shared.ErrNoAnchor
	}
	return BuildFromSeeds([]*models.Song{seed}, pool, opts)
}

// BuildFromSeeds ranks pool against a seed group. The first seed is the
// anchor and leads the sequence; every seed must be analyzed.
func BuildFromSeeds(seeds, pool []*models.Song, opts Options) ([]*models.Song, error) {
	if len(seeds) == 0 {
		return nil, shared.ErrNoAnchor
	}
	for _, seed := range seeds {
		if !seed.Analyzed {
			return nil, fmt.Errorf("%w: %s", shared.ErrNotAnalyzed, seed.Path)
		}
	}
	if opts.Metric == nil {
		opts.Metric = Euclidean
	}
	if opts.Strategy == nil {
		opts.Strategy = ClosestToSeed{}
	}
	threshold := opts.DedupThreshold
	if threshold == 0 {
		threshold = DefaultDedupThreshold
	}

	candidates := eligible(seeds, pool)
	ranked := opts.Strategy.Order(seeds, candidates, opts.Metric)

	// Dedup applies among candidates only; the anchor never disqualifies one.
	var selected []*models.Song
	for _, candidate := range ranked {
		if opts.Limit > 0 && len(selected)+1 >= opts.Limit {
			break
		}
		if opts.Dedup && isDuplicate(candidate, selected, opts.Metric, threshold) {
			continue
		}
		selected = append(selected, candidate)
	}

	return append([]*models.Song{seeds[0]}, selected...), nil
}

// eligible filters the pool down to analyzed songs that are not seeds.
func eligible(seeds, pool []*models.Song) []*models.Song {
	seedPaths := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		seedPaths[s.Path] = struct{}{}
	}

	var out []*models.Song
	for _, s := range pool {
		if !s.Analyzed {
			continue
		}
		if _, isSeed := seedPaths[s.Path]; isSeed {
			continue
		}
		out = append(out, s)
	}
	return out
}

// isDuplicate reports whether candidate is a near-duplicate of a song
// already selected: an exact (title, artist) tag match, or a feature
// distance below threshold. Applied in selection order, so the earlier of
// a duplicate pair always survives.
func isDuplicate(candidate *models.Song, selected []*models.Song, metric DistanceMetric, threshold float64) bool {
	for _, s := range selected {
		if candidate.Meta.Title != "" && candidate.Meta.Artist != "" &&
			candidate.Meta.Title == s.Meta.Title && candidate.Meta.Artist == s.Meta.Artist {
			return true
		}
		if metric(candidate.Features, s.Features) < threshold {
			return true
		}
	}
	return false
}
