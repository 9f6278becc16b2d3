package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/euphonyfm/euphony/internal/cuepath"
	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/playlist"
	"github.com/euphonyfm/euphony/internal/remote"
	"github.com/euphonyfm/euphony/internal/repositories"
	"github.com/euphonyfm/euphony/internal/shared"
	"github.com/euphonyfm/euphony/internal/ui"
)

// sessionAnchor resolves the song the session ranks against: the currently
// playing song, or the last queue item when the player is stopped. The
// anchor must be in the cache and analyzed.
func sessionAnchor(client remote.Client, repo *repositories.SongRepository) (*models.Song, error) {
	current, err := client.Current()
	if err != nil {
		return nil, err
	}
	if current == nil {
		snapshot, err := client.Queue()
		if err != nil {
			return nil, err
		}
		if len(snapshot) == 0 {
			return nil, shared.ErrNoAnchor
		}
		current = &snapshot[len(snapshot)-1]
	}

	anchor, err := repo.Get(cuepath.Canonical(current.Path))
	if err != nil {
		if errors.Is(err, shared.ErrSongNotFound) {
			return nil, fmt.Errorf("%w: song %q is not in the cache, run `euphony update` first", shared.ErrNotAnalyzed, current.Path)
		}
		return nil, err
	}
	if !anchor.Analyzed {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotAnalyzed, anchor.Path)
	}
	return anchor, nil
}

// Interactive launches the terminal session that repeatedly queues one song
// picked from a ranked candidate list.
func (r *Runner) Interactive(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	metricName := config.Playlist.Distance
	if v := cmd.String("distance"); v != "" {
		metricName = v
	}
	metric, err := playlist.MetricByName(metricName)
	if err != nil {
		return err
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

	anchor, err := sessionAnchor(client, repo)
	if err != nil {
		return err
	}

	songs, err := repo.AllAnalyzed()
	if err != nil {
		return err
	}
	pool := make([]*models.Song, 0, len(songs))
	for _, s := range songs {
		if s.Path != anchor.Path {
			pool = append(pool, s)
		}
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/euphony-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(client, anchor, pool, ui.SessionOpts{
		Metric:         metric,
		Dedup:          config.Playlist.Dedup || cmd.Bool("dedup"),
		DedupThreshold: config.Playlist.DedupThreshold,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if m, ok := final.(ui.Model); ok {
		if err := m.Err(); err != nil {
			return err
		}
		r.writePlain("Queued %d song(s).\n", m.Queued())
	}
	return nil
}
