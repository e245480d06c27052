package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lfx/internal/repositories"
	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
	"github.com/desertthunder/lfx/internal/ui"
	"github.com/urfave/cli/v3"
)

const memoryPath = ":memory:"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and the Last.fm client are opened on first use so that commands which need
// neither (setup config, help) work without a database or an API key.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	httpClient *http.Client
	palette    *ui.Palette

	db       *sql.DB
	ownsDB   bool
	catalog  *repositories.Catalog
	provider services.Provider
	lastfm   *services.LastFMService
	engine   tasks.Importer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	HTTPClient *http.Client
	Palette    *ui.Palette
	DB         *sql.DB           // already migrated or migrated on first use; not closed by the runner
	Provider   services.Provider // replaces the Last.fm client for imports
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
		opts.HTTPClient = &http.Client{Timeout: opts.Config.LastFM.Timeout()}
	}
	if opts.Palette == nil {
		opts.Palette = ui.Default()
	}

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		httpClient: opts.HTTPClient,
		palette:    opts.Palette,
		db:         opts.DB,
		provider:   opts.Provider,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, catalogCommand, serveCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db, r.catalog, r.engine = nil, nil, nil
	r.ownsDB = false
	return err
}

// openCatalog opens the configured database, applies pending migrations and caches the catalog.
func (r *Runner) openCatalog() (*repositories.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	if r.db == nil {
		path := r.config.Database.Path
		r.logger.Debug("opening database", "path", path)

		db, err := shared.NewDatabase(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		if path != memoryPath {
			shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		}
		r.db = db
		r.ownsDB = true
	}

	applied, err := shared.RunMigrations(r.db)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		r.logger.Info("applied migrations", "versions", applied)
	}

	r.catalog = repositories.NewCatalog(r.db)
	return r.catalog, nil
}

// lastFMService builds the Last.fm client, failing when no API key is configured.
func (r *Runner) lastFMService() (*services.LastFMService, error) {
	if r.lastfm != nil {
		return r.lastfm, nil
	}

	if err := r.config.RequireAPIKey(); err != nil {
		return nil, err
	}

	svc, err := services.NewLastFMService(services.LastFMOpts{
		APIKey:            r.config.LastFM.APIKey,
		BaseURL:           r.config.LastFM.BaseURL,
		Client:            r.httpClient,
		Logger:            r.logger,
		RequestsPerSecond: r.config.LastFM.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}

	r.lastfm = svc
	return svc, nil
}

func (r *Runner) remoteProvider() (services.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	return r.lastFMService()
}

// importer wires the catalog and the remote provider into an import engine.
func (r *Runner) importer() (tasks.Importer, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	provider, err := r.remoteProvider()
	if err != nil {
		return nil, err
	}

	catalog, err := r.openCatalog()
	if err != nil {
		return nil, err
	}

	r.engine = tasks.NewImportEngine(catalog, provider, r.logger, tasks.ImportOpts{
		DefaultLimit: r.config.Import.DefaultLimit,
		AlbumLimit:   r.config.Import.AlbumLimit,
	})
	return r.engine, nil
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
	r.writePlain("%v\n", r.palette.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
