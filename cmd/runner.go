package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mbb-dev/birdtag/internal/auth"
	"github.com/mbb-dev/birdtag/internal/repositories"
	"github.com/mbb-dev/birdtag/internal/services"
	"github.com/mbb-dev/birdtag/internal/session"
	"github.com/mbb-dev/birdtag/internal/shared"
	"github.com/mbb-dev/birdtag/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	db         *sql.DB
	sessions   *session.Store
	gateway    *auth.Gateway
	api        *services.BirdTagService
	uploads    *services.UploadService
	settings   *services.SettingsService
	history    *repositories.UploadRepository
	engine     tasks.TagEngine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	DB         *sql.DB
	Gateway    *auth.Gateway
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
// Repositories, services and the media engine are constructed from the
// database handle, so DB must be open and migrated.
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

	sessions := session.NewStore(repositories.NewKVRepository(opts.DB, repositories.SessionTable))
	history := repositories.NewUploadRepository(opts.DB)
	prefs := repositories.NewPreferenceRepository(opts.DB)
	kv := repositories.NewKVRepository(opts.DB, repositories.SettingsTable)

	client := services.NewClient(opts.Config.API, opts.HTTPClient, sessions, opts.Logger)
	api := services.NewBirdTagService(opts.Config.API, client, opts.Logger)
	uploads := services.NewUploadService(opts.Config.API, opts.Config.Upload, client, history, opts.Logger)
	settings := services.NewSettingsService(opts.Config.API, client, prefs, kv, opts.Logger)
	engine := tasks.NewMediaEngine(uploads, api, history, opts.HTTPClient)

	return &Runner{
		config:     opts.Config,
		db:         opts.DB,
		sessions:   sessions,
		gateway:    opts.Gateway,
		api:        api,
		uploads:    uploads,
		settings:   settings,
		history:    history,
		engine:     engine,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, uploadCommand, searchCommand, tagsCommand, filesCommand, settingsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireGateway guards commands that need Cognito credentials configured.
func (r *Runner) requireGateway() error {
	if r.gateway == nil {
		return fmt.Errorf("%w: auth.client_id is not set, run 'birdtag setup config' and edit config.toml", shared.ErrMissingConfig)
	}
	return nil
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
