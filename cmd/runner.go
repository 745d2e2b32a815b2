package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/repositories"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/desertthunder/flow/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	service     services.Service
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	engine      tasks.Engine
	db          *sql.DB
	sessions    *repositories.SessionRepository
	cache       *repositories.PlaylistCacheAdapter
	openBrowser func(string) error
	authed      bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service // defaults to a [services.VKService] built from Config
	DB         *sql.DB          // opened from Config on first use when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.Service == nil {
		opts.Service = services.NewVKService(services.VKOptions{
			BaseURL:    opts.Config.VK.APIBaseURL,
			HTTPClient: opts.HTTPClient,
			RateLimit:  opts.Config.VK.RateLimit,
			Timeout:    opts.Config.VK.Timeout(),
		})
	}

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		service:     opts.Service,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: shared.OpenBrowser,
	}
	r.engine = tasks.NewPlaylistEngine(r.service, nil)

	if opts.DB != nil {
		r.useDatabase(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistCommand, genresCommand, exportCommand,
		diffCommand, cacheCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// useDatabase wires the repositories on db and rebuilds the engine with the playlist cache.
func (r *Runner) useDatabase(db *sql.DB) {
	r.db = db
	r.sessions = repositories.NewSessionRepository(db)
	r.cache = repositories.NewPlaylistCacheAdapter(repositories.NewPlaylistRepository(db), repositories.NewTrackRepository(db))
	r.engine = tasks.NewPlaylistEngine(r.service, r.cache)
}

// ensureDatabase opens the configured database and runs pending migrations on first use.
func (r *Runner) ensureDatabase() error {
	if r.db != nil {
		return nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	r.useDatabase(db)
	return nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// authenticate installs tokens on the service.
//
// Tokens from the environment (FLOW_ACCESS_TOKEN, FLOW_USER_ID) win over the stored session.
func (r *Runner) authenticate(ctx context.Context) error {
	if r.authed {
		return nil
	}

	var tokens models.TokenSet
	if r.config.VK.AccessToken != "" {
		tokens = models.TokenSet{AccessToken: r.config.VK.AccessToken, UserID: r.config.VK.UserID}
		r.logger.Debug("using access token from environment", "user_id", tokens.UserID)
	} else {
		session, err := r.latestSession()
		if err != nil {
			return err
		}
		if !session.Token().Valid() {
			return fmt.Errorf("%w: session for user %s expired, run 'flow auth login'", shared.ErrTokenExpired, session.Tokens().UserID)
		}
		tokens = session.Tokens()
	}

	if err := r.service.Authenticate(ctx, tokens); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	r.authed = true
	return nil
}

func (r *Runner) latestSession() (*models.Session, error) {
	if err := r.ensureDatabase(); err != nil {
		return nil, err
	}
	session, err := r.sessions.Latest()
	if errors.Is(err, shared.ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: run 'flow auth login' first", shared.ErrNotAuthenticated)
	}
	return session, err
}

// trackProgress logs engine progress until the returned stop function is called.
func (r *Runner) trackProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
