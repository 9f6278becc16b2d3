package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/euphonyfm/euphony/internal/analysis"
	"github.com/euphonyfm/euphony/internal/remote"
	"github.com/euphonyfm/euphony/internal/repositories"
	"github.com/euphonyfm/euphony/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	logger      *log.Logger
	output      io.Writer
	dial        func(cfg shared.MPDConfig) (remote.Client, error)
	newAnalyzer func(cfg shared.AnalysisConfig) analysis.Analyzer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Logger      *log.Logger
	Output      io.Writer
	Dial        func(cfg shared.MPDConfig) (remote.Client, error)
	NewAnalyzer func(cfg shared.AnalysisConfig) analysis.Analyzer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Dial == nil {
		opts.Dial = func(cfg shared.MPDConfig) (remote.Client, error) {
			return remote.DialMPD(cfg.Addr(), cfg.Password)
		}
	}
	if opts.NewAnalyzer == nil {
		opts.NewAnalyzer = func(cfg shared.AnalysisConfig) analysis.Analyzer {
			return analysis.NewExecAnalyzer(cfg.Command)
		}
	}

	return &Runner{
		config:      opts.Config,
		logger:      opts.Logger,
		output:      opts.Output,
		dial:        opts.Dial,
		newAnalyzer: opts.NewAnalyzer,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, updateCommand, rescanCommand, listDBCommand, failedCommand, playlistCommand, interactiveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// loadConfig resolves the effective configuration for one command: the
// --config file when it exists, embedded defaults otherwise.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	if r.config != nil {
		return r.config
	}

	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		if cfg, err := shared.LoadConfig(path); err == nil {
			return cfg
		}
		r.logger.Warn("could not parse config file, using defaults", "path", path)
	}
	return shared.DefaultConfig()
}

// openRepo opens the cache database and brings the schema up to date.
func (r *Runner) openRepo(cfg *shared.Config) (*sql.DB, *repositories.SongRepository, error) {
	db, err := shared.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, repositories.NewSongRepository(db), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
