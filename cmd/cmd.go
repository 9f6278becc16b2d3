// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes configuration and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// updateCommand synchronizes the cache with the MPD library.
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Analyze new songs and prune deleted ones",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent analyses (0 = config value)",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Analyses started per second (0 = unlimited)",
			},
		},
		Action: r.Update,
	}
}

// rescanCommand wipes the cache and re-analyzes the whole library.
func rescanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rescan",
		Usage: "Delete the cache and re-analyze every song",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent analyses (0 = config value)",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Analyses started per second (0 = unlimited)",
			},
		},
		Action: r.Rescan,
	}
}

// listDBCommand prints the cache contents.
func listDBCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list-db",
		Usage: "List every song stored in the cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "detailed",
				Usage: "Include metadata for each song",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.ListDB,
	}
}

// failedCommand prints songs whose analysis failed.
func failedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "failed",
		Usage: "List songs the analyzer could not process",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Failed,
	}
}

// playlistCommand builds a playlist from the current song and applies it to
// the MPD queue.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Queue songs closest to the one currently playing",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "count",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "distance",
				Usage: "Distance metric: euclidean or cosine",
			},
			&cli.BoolFlag{
				Name:  "seed-song",
				Usage: "Chain each pick from the previous song instead of the seed",
			},
			&cli.BoolFlag{
				Name:  "from-queue",
				Usage: "Rank against every cached song in the queue, not just the current one",
			},
			&cli.BoolFlag{
				Name:  "dedup",
				Usage: "Drop near-duplicate songs from the playlist",
			},
			&cli.FloatFlag{
				Name:  "dedup-threshold",
				Usage: "Distance below which two songs count as duplicates",
			},
			&cli.BoolFlag{
				Name:  "album",
				Usage: "Queue whole albums; the count argument becomes a number of albums",
			},
			&cli.BoolFlag{
				Name:  "preserve",
				Usage: "Keep the existing queue, merging new songs in after the current one",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the would-be queue without touching MPD",
			},
		},
		Action: r.Playlist,
	}
}

// interactiveCommand launches the candidate-picking TUI.
func interactiveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "interactive",
		Aliases: []string{"i"},
		Usage:   "Pick the next song from a ranked candidate list, one keypress at a time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "distance",
				Usage: "Distance metric: euclidean or cosine",
			},
			&cli.BoolFlag{
				Name:  "dedup",
				Usage: "Drop near-duplicate candidates",
			},
		},
		Action: r.Interactive,
	}
}
