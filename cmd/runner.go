package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/epx/internal/services"
	"github.com/desertthunder/epx/internal/shared"
	"github.com/desertthunder/epx/internal/tasks"
	"github.com/desertthunder/epx/internal/tokenstore"
	"github.com/urfave/cli/v3"
)

// CaptureFunc waits for the authorization redirect carrying state and returns the code.
//
// ready is called once the redirect URI is being served.
type CaptureFunc func(ctx context.Context, state string, ready func()) (string, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil are built from the resolved config on first use.
type Runner struct {
	config      *shared.Config
	configPath  string
	verbose     bool
	quiet       bool
	auth        services.Authenticator
	episodes    services.EpisodeClient
	store       tokenstore.TokenStore
	engine      *tasks.PurgeEngine
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	errOutput   io.Writer
	input       *bufio.Reader
	capture     CaptureFunc
	openBrowser func(string) error
	session     session
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Auth        services.Authenticator
	Episodes    services.EpisodeClient
	Store       tokenstore.TokenStore
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	ErrOutput   io.Writer
	Input       io.Reader
	Capture     CaptureFunc
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		auth:        opts.Auth,
		episodes:    opts.Episodes,
		store:       opts.Store,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		errOutput:   opts.ErrOutput,
		input:       bufio.NewReader(opts.Input),
		capture:     opts.Capture,
		openBrowser: opts.OpenBrowser,
	}
	if r.capture == nil {
		r.capture = r.captureCode
	}
	return r
}

// ready resolves the config and wires every dependency that was not injected.
func (r *Runner) ready() error {
	if r.config == nil {
		config, err := shared.ResolveConfig(r.configPath)
		if err != nil {
			return err
		}
		r.config = config
	}
	if !r.verbose {
		shared.SetLogLevel(r.logger, r.config.Log.Level)
	}

	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.config.HTTP.Timeout.Duration}
	}

	if r.auth == nil {
		if r.config.Spotify.ClientID == "" {
			r.logger.Warn("no client id configured", "env", shared.EnvClientID)
		}
		r.auth = services.NewAuthClient(services.AuthOptions{
			ClientID:     r.config.Spotify.ClientID,
			ClientSecret: r.config.Spotify.ClientSecret,
			RedirectURI:  r.config.Spotify.RedirectURI,
			Scopes:       r.config.Spotify.Scopes,
			HTTPClient:   r.httpClient,
			Logger:       r.logger,
		})
	}

	if r.episodes == nil {
		r.episodes = services.NewEpisodeService(services.EpisodeOptions{
			HTTPClient: r.httpClient,
			Logger:     r.logger,
		})
	}

	if r.store == nil {
		store, err := tokenstore.NewFileStore(r.config.Storage.TokenPath)
		if err != nil {
			return err
		}
		r.store = store
	}

	if r.engine == nil {
		r.engine = tasks.NewPurgeEngine(r.episodes, tasks.PurgeOptions{
			BatchSize: r.config.Delete.BatchSize,
			Rate:      r.config.Delete.Rate,
			Logger:    r.logger,
		})
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		listCommand, deleteCommand, browseCommand, authCommand, logoutCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
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
