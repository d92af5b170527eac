package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
	"github.com/desertthunder/setlistx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	source      setlist.Fetcher
	engine      tasks.Pipeline
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Source and Engine are built from the config when nil.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Source      setlist.Fetcher
	Engine      tasks.Pipeline
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	OpenBrowser func(string) error
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
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		source:      opts.Source,
		engine:      opts.Engine,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		createCommand, setlistCommand, authCommand, tuiCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config file named by --config and overlays the environment.
//
// A missing file falls back to the embedded defaults so env-only setups work.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if err := r.loadConfig(); err != nil {
		return ctx, err
	}
	return ctx, nil
}

func (r *Runner) loadConfig() error {
	config := shared.DefaultConfig()
	if r.configPath != "" {
		loaded, err := shared.LoadConfig(r.configPath)
		switch {
		case err == nil:
			config = loaded
		case errors.Is(err, os.ErrNotExist):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		default:
			return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return err
	}
	r.config = config
	return nil
}

// SetLogger replaces the runner's logger, e.g. to keep log output out of the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// client returns the shared HTTP client bounded by the configured timeout.
func (r *Runner) client() *http.Client {
	if r.httpClient == nil {
		r.httpClient = shared.NewHTTPClient(r.config.Pipeline.Timeout())
	}
	return r.httpClient
}

// setlistSource returns the injected source or a setlist.fm client built from the config.
func (r *Runner) setlistSource() (setlist.Fetcher, error) {
	if r.source != nil {
		return r.source, nil
	}

	src, err := setlist.NewSource(setlist.Options{
		APIKey:     r.config.SetlistFM.APIKey,
		BaseURL:    r.config.SetlistFM.BaseURL,
		HTTPClient: r.client(),
		Logger:     r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set [setlistfm] api_key or SETLISTFM_API_KEY)", err)
	}
	r.source = src
	return src, nil
}

// pipeline returns the injected engine or builds one with every service variant.
//
// --rollback-empty and --public override the config for this invocation.
func (r *Runner) pipeline(cmd *cli.Command) (tasks.Pipeline, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	source, err := r.setlistSource()
	if err != nil {
		return nil, err
	}

	svcs := make([]services.Service, 0, len(models.ServiceKinds))
	for _, kind := range models.ServiceKinds {
		svc, err := services.New(kind, services.Options{
			BaseURL:    r.config.Credentials.For(kind).BaseURL,
			HTTPClient: r.client(),
			Logger:     r.logger,
		})
		if err != nil {
			return nil, err
		}
		svcs = append(svcs, svc)
	}

	p := r.config.Pipeline
	return tasks.NewPlaylistEngine(source, svcs, tasks.EngineOptions{
		Concurrency:   p.Workers(),
		RateLimit:     p.RateLimit,
		RollbackEmpty: p.RollbackEmpty || cmd.Bool("rollback-empty"),
		Public:        cmd.Bool("public"),
		Logger:        r.logger,
	}), nil
}

// credential returns the stored token for kind.
func (r *Runner) credential(kind models.ServiceKind) models.Credential {
	slot := r.config.Tokens.For(kind)
	if slot == nil {
		return models.Credential{}
	}
	return slot.Credential()
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
