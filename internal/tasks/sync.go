package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/euphonyfm/euphony/internal/analysis"
	"github.com/euphonyfm/euphony/internal/cuepath"
	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/remote"
	"github.com/euphonyfm/euphony/internal/repositories"
	"github.com/euphonyfm/euphony/internal/shared"
)

// SyncResult summarizes one sync run.
type SyncResult struct {
	RunID    string               // uuid identifying the run in logs
	Analyzed int                  // songs analyzed successfully
	Failures []models.FailedEntry // per-path analysis failures, non-fatal
	Removed  int                  // cache entries pruned
}

// SyncOpts configures the analysis stage.
type SyncOpts struct {
	Workers   int     // concurrent analyses (default 4, capped at 16)
	RateLimit float64 // analyses started per second, 0 = unlimited
}

// SyncEngine keeps the feature cache synchronized with the remote library.
//
// Safe to re-invoke after partial failure: every run re-derives its plan
// from fresh remote and cache snapshots.
type SyncEngine struct {
	remote   remote.Client
	repo     *repositories.SongRepository
	analyzer analysis.Analyzer
	musicDir string
	logger   *log.Logger
}

// NewSyncEngine creates a SyncEngine. musicDir is MPD's music_directory,
// used to turn MPD-relative paths into absolute paths for the analyzer.
func NewSyncEngine(rc remote.Client, repo *repositories.SongRepository, analyzer analysis.Analyzer, musicDir string, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncEngine{
		remote:   rc,
		repo:     repo,
		analyzer: analyzer,
		musicDir: musicDir,
		logger:   logger,
	}
}

// Plan computes the three-way diff between the remote path set and the
// cache. Cached entries with a stale format version count as absent for the
// analysis side, forcing re-analysis, but they are not removed: only remote
// absence causes removal, and stale entries stay usable mid-migration.
func Plan(remotePaths []string, versions map[string]int, currentVersion int) (toAnalyze, toRemove []string) {
	remoteSet := make(map[string]struct{}, len(remotePaths))
	for _, p := range remotePaths {
		remoteSet[cuepath.Canonical(p)] = struct{}{}
	}

	for p := range remoteSet {
		if versions[p] != currentVersion {
			toAnalyze = append(toAnalyze, p)
		}
	}
	for p := range versions {
		if _, ok := remoteSet[p]; !ok {
			toRemove = append(toRemove, p)
		}
	}

	sort.Strings(toAnalyze)
	sort.Strings(toRemove)
	return toAnalyze, toRemove
}

// Sync lists the remote library, analyzes new and stale entries, and prunes
// entries that no longer exist remotely. Per-path analysis failures are
// recorded and do not abort the batch; storage failures abort the run.
func (e *SyncEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	result := &SyncResult{RunID: shared.GenerateID()}
	logger := e.logger.With("run_id", result.RunID)

	e.sendProgress(progress, listRemoteUpdate())
	remotePaths, err := e.remote.ListPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list remote library: %w", err)
	}

	versions, err := e.repo.Versions()
	if err != nil {
		return nil, err
	}

	toAnalyze, toRemove := Plan(remotePaths, versions, models.FeatureVersion)
	logger.Info("computed library diff", "to_analyze", len(toAnalyze), "to_remove", len(toRemove))
	e.sendProgress(progress, planUpdate(len(toAnalyze), len(toRemove)))

	if err := e.analyzeBatch(ctx, progress, toAnalyze, opts, result, logger); err != nil {
		return nil, err
	}

	for i, path := range toRemove {
		e.sendProgress(progress, pruneUpdate(i+1, len(toRemove), path))
		if err := e.repo.Delete(path); err != nil {
			if errors.Is(err, shared.ErrSongNotFound) {
				continue
			}
			return nil, err
		}
		result.Removed++
	}
	if result.Removed > 0 {
		logger.Info("pruned stale cache entries", "count", result.Removed)
	}

	e.sendProgress(progress, doneUpdate(result.Analyzed, len(result.Failures)))
	return result, nil
}

// Rescan wipes the cache and re-analyzes the whole remote library.
func (e *SyncEngine) Rescan(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	if err := e.repo.DeleteAll(); err != nil {
		return nil, err
	}
	return e.Sync(ctx, progress, opts)
}

// analyzeResult carries one finished analysis back to the applier loop.
type analyzeResult struct {
	path string
	res  *analysis.Result
	err  error
}

// analyzeBatch runs the analyzer over paths with a rate-limited worker pool.
// Workers only analyze; all cache writes happen on this goroutine, so
// results are applied one at a time as they complete, in completion order.
func (e *SyncEngine) analyzeBatch(ctx context.Context, progress chan<- ProgressUpdate, paths []string, opts SyncOpts, result *SyncResult, logger *log.Logger) error {
	if len(paths) == 0 {
		return nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > 16 {
		workers = 16
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan string, len(paths))
	results := make(chan analyzeResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						results <- analyzeResult{path: path, err: err}
						continue
					}
				}
				res, err := e.analyzer.Analyze(ctx, filepath.Join(e.musicDir, path))
				results <- analyzeResult{path: path, res: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case jobs <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for r := range results {
		completed++
		e.sendProgress(progress, analyzeUpdate(completed, len(paths), r.path))

		if r.err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("analysis failed", "path", r.path, "err", r.err)
			if err := e.repo.UpsertFailed(r.path, r.err.Error()); err != nil {
				return err
			}
			result.Failures = append(result.Failures, models.FailedEntry{Path: r.path, Error: r.err.Error()})
			continue
		}

		song := &models.Song{
			Path:     r.path,
			Features: r.res.Features,
			Meta:     r.res.Meta,
			Analyzed: true,
			Version:  models.FeatureVersion,
		}
		// A CUE virtual track must keep a track number so its remote
		// address can be re-derived later.
		if _, track, ok := cuepath.Split(r.path); ok && song.Meta.TrackNumber == "" {
			song.Meta.TrackNumber = strconv.Itoa(track)
		}
		if err := e.repo.Upsert(song); err != nil {
			return err
		}
		result.Analyzed++
	}

	return ctx.Err()
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
