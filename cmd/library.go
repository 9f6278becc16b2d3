package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/euphonyfm/euphony/internal/formatter"
	"github.com/euphonyfm/euphony/internal/shared"
	"github.com/euphonyfm/euphony/internal/tasks"
)

// Setup creates the config file if missing, then initializes the cache
// database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, _, err := r.openRepo(config)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// Update synchronizes the feature cache with the MPD library: new and stale
// songs are analyzed, songs gone from MPD are pruned.
func (r *Runner) Update(ctx context.Context, cmd *cli.Command) error {
	return r.runSync(ctx, cmd, false)
}

// Rescan wipes the cache and re-analyzes the entire MPD library.
func (r *Runner) Rescan(ctx context.Context, cmd *cli.Command) error {
	return r.runSync(ctx, cmd, true)
}

func (r *Runner) runSync(ctx context.Context, cmd *cli.Command, fromScratch bool) error {
	config := r.loadConfig(cmd)

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

	opts := tasks.SyncOpts{
		Workers:   config.Analysis.Workers,
		RateLimit: config.Analysis.RateLimit,
	}
	if w := cmd.Int("workers"); w > 0 {
		opts.Workers = int(w)
	}
	if rl := cmd.Float("rate-limit"); rl > 0 {
		opts.RateLimit = rl
	}

	engine := tasks.NewSyncEngine(client, repo, r.newAnalyzer(config.Analysis), config.MPD.MusicDirectory, r.logger)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ListRemote, tasks.PlanDiff:
				r.writePlain("%s\n", update.Message)
			case tasks.AnalyzeSongs:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.PruneSongs:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()

	var result *tasks.SyncResult
	if fromScratch {
		r.writePlain("Rescanning: clearing the cache first.\n")
		result, err = engine.Rescan(ctx, progressCh, opts)
	} else {
		result, err = engine.Sync(ctx, progressCh, opts)
	}
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\nAnalyzed %d song(s) successfully. %d failure(s).\n", result.Analyzed, len(result.Failures))
	if result.Removed > 0 {
		r.writePlain("Removed %d stale entr(ies) from the cache.\n", result.Removed)
	}
	if len(result.Failures) > 0 {
		r.writePlain("Run `euphony failed` to list the failures.\n")
	}
	return nil
}

// ListDB prints every cached song, as text, CSV or JSON.
func (r *Runner) ListDB(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, repo, err := r.openRepo(config)
	if err != nil {
		return err
	}
	defer db.Close()

	songs, err := repo.All()
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(songs, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		out, err := formatter.SongsToCSV(songs)
		if err != nil {
			return err
		}
		_, err = r.output.Write(out)
		return err
	default:
		_, err = r.output.Write(formatter.SongsToText(songs, cmd.Bool("detailed")))
		return err
	}
}

// Failed prints the songs whose analysis failed, with the recorded cause.
func (r *Runner) Failed(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	db, repo, err := r.openRepo(config)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := repo.Failed()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}
	_, err = r.output.Write(formatter.FailedToText(entries))
	return err
}
