package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/backend"
	"github.com/Rafamp34/soundstream/internal/services"
	"github.com/Rafamp34/soundstream/internal/shared"
	"github.com/Rafamp34/soundstream/internal/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The backend container and domain services are built lazily on first use so
// commands that never touch a backend (setup, version) work without one.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db        *sql.DB
	container *backend.Container
	songs     *services.SongService
	playlists *services.PlaylistService
	users     *services.UserService
	engine    *tasks.ExportEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	// Container, when set, bypasses backend construction. Used by tests.
	Container *backend.Container
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		container:  opts.Container,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, songsCommand, playlistsCommand, usersCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensure builds the backend container and domain services on first use.
//
// The session store shares the local database, so the database is opened and
// migrated before the container is assembled. Restore replays any persisted
// session so commands observe the same signed-in user across invocations.
func (r *Runner) ensure(ctx context.Context) error {
	if r.songs != nil {
		return nil
	}

	if r.container == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.db = db

		container, err := backend.Build(backend.Opts{
			Config: r.config,
			Client: r.httpClient,
			Store:  auth.NewStore(db),
			Logger: r.logger,
		})
		if err != nil {
			db.Close()
			return err
		}
		r.container = container
	}

	r.songs = services.NewSongService(r.container.Songs, r.logger)
	r.playlists = services.NewPlaylistService(r.container.Playlists, r.songs, r.logger)
	r.users = services.NewUserService(r.container.Users, r.container.Auth.State(), r.logger)
	r.engine = tasks.NewExportEngine(r.playlists)

	r.container.Auth.Restore(ctx)
	return nil
}

// currentUser returns the signed-in user or an error when nobody is.
func (r *Runner) currentUser(ctx context.Context) (string, error) {
	user, err := r.container.Auth.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("%w: sign in first", shared.ErrNotAuthenticated)
	}
	return user.ID, nil
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
