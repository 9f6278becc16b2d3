package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/euphonyfm/euphony/internal/cuepath"
	"github.com/euphonyfm/euphony/internal/formatter"
	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/playlist"
	"github.com/euphonyfm/euphony/internal/queue"
	"github.com/euphonyfm/euphony/internal/remote"
	"github.com/euphonyfm/euphony/internal/repositories"
	"github.com/euphonyfm/euphony/internal/shared"
)

// Playlist builds a ranked sequence around the currently playing song and
// reconciles the MPD queue to it.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	count := config.Playlist.Count
	if raw := cmd.StringArg("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: count must be a positive integer, got %q", shared.ErrInvalidInput, raw)
		}
		count = n
	}

	metricName := config.Playlist.Distance
	if v := cmd.String("distance"); v != "" {
		metricName = v
	}
	metric, err := playlist.MetricByName(metricName)
	if err != nil {
		return err
	}

	dedup := config.Playlist.Dedup || cmd.Bool("dedup")
	threshold := config.Playlist.DedupThreshold
	if v := cmd.Float("dedup-threshold"); v > 0 {
		threshold = v
	}

	lock, err := shared.AcquireLock(config.Database.Path)
	if err != nil {
		return err
	}
	defer lock.Release()

	db, repo, err := r.openRepo(config)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := r.dial(config.MPD)
	if err != nil {
		return fmt.Errorf("failed to connect to MPD at %s: %w", config.MPD.Addr(), err)
	}
	defer client.Close()

	current, err := client.Current()
	if err != nil {
		return err
	}
	if current == nil {
		return shared.ErrNoAnchor
	}

	seed, err := repo.Get(cuepath.Canonical(current.Path))
	if err != nil {
		if errors.Is(err, shared.ErrSongNotFound) {
			return fmt.Errorf("%w: current song %q is not in the cache, run `euphony update` first", shared.ErrNotAnalyzed, current.Path)
		}
		return err
	}
	if !seed.Analyzed {
		return fmt.Errorf("%w: %s", shared.ErrNotAnalyzed, seed.Path)
	}

	pool, err := repo.AllAnalyzed()
	if err != nil {
		return err
	}

	buildOpts := playlist.Options{
		Metric:         metric,
		Limit:          count,
		Dedup:          dedup,
		DedupThreshold: threshold,
	}

	var target []*models.Song
	albumMode := cmd.Bool("album")
	fromQueue := cmd.Bool("from-queue")
	switch {
	case albumMode:
		target, err = albumTarget(seed, pool, count, metric)
	case fromQueue:
		var seeds []*models.Song
		seeds, err = queueSeeds(client, repo, seed)
		if err != nil {
			return err
		}
		buildOpts.Strategy = playlist.ClosestToGroup{}
		target, err = playlist.BuildFromSeeds(seeds, pool, buildOpts)
	default:
		buildOpts.Strategy = playlist.ClosestToSeed{}
		if cmd.Bool("seed-song") {
			buildOpts.Strategy = playlist.SongToSong{}
		}
		target, err = playlist.BuildFromSeed(seed, pool, buildOpts)
	}
	if err != nil {
		return err
	}

	mode := queue.Replace
	if albumMode || fromQueue || cmd.Bool("preserve") || config.Playlist.Preserve {
		mode = queue.Preserve
	}

	opts := queue.Options{
		Mode:   mode,
		DryRun: cmd.Bool("dry-run"),
	}
	if mode == queue.Preserve {
		opts.AlbumOf = albumOf(repo)
	}

	r.logger.Info("reconciling queue",
		"anchor", seed.Path, "songs", len(target)-1, "mode", mode.String(), "dry_run", opts.DryRun)

	result, err := queue.NewReconciler(client, r.logger).Reconcile(ctx, target, opts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		_, err = r.output.Write(formatter.PlanToText(result.Anchor.Path, result.Additions))
		return err
	}

	r.writePlain("Queued %d song(s) after %s.\n", len(result.Additions), seed.DisplayTitle())
	return nil
}

// queueSeeds collects the cached, analyzed entries of the live queue as a
// seed group, anchor first and in queue order. Entries missing from the
// cache or never analyzed are excluded from the ranking.
func queueSeeds(client remote.Client, repo *repositories.SongRepository, anchor *models.Song) ([]*models.Song, error) {
	snapshot, err := client.Queue()
	if err != nil {
		return nil, err
	}

	seeds := []*models.Song{anchor}
	seen := map[string]struct{}{anchor.Path: {}}
	for _, item := range snapshot {
		key := cuepath.Canonical(item.Path)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		song, err := repo.Get(key)
		if err != nil {
			if errors.Is(err, shared.ErrSongNotFound) {
				continue
			}
			return nil, err
		}
		if song.Analyzed {
			seeds = append(seeds, song)
		}
	}
	return seeds, nil
}

// albumTarget builds an album playlist: the rest of the current album in
// track order, then the albumCount-1 closest whole albums. The anchor leads
// the sequence; tracks of its album that already played are left out.
func albumTarget(seed *models.Song, pool []*models.Song, albumCount int, metric playlist.DistanceMetric) ([]*models.Song, error) {
	if seed.Meta.Album == "" {
		return nil, fmt.Errorf("%w: current song has no album tag", shared.ErrInvalidInput)
	}

	albums := playlist.GroupByAlbum(pool)
	sequence, err := playlist.BuildAlbumSequence(seed.Meta.Album, albums, albumCount, metric)
	if err != nil {
		return nil, err
	}

	for i, song := range sequence {
		if song.Path == seed.Path {
			return sequence[i:], nil
		}
	}
	return nil, fmt.Errorf("%w: current song %q missing from its own album", shared.ErrInvalidInput, seed.Path)
}

// albumOf resolves a queue path to its cached album tag; unknown paths
// resolve to the empty string.
func albumOf(repo *repositories.SongRepository) func(string) string {
	return func(path string) string {
		song, err := repo.Get(cuepath.Canonical(path))
		if err != nil {
			return ""
		}
		return song.Meta.Album
	}
}
