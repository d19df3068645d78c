package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/riff/internal/cache"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/store"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// tokenKey is the store key holding the serialized OAuth token.
const tokenKey = "auth_token"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      store.KV
	spotify    services.OAuthService
	roaster    services.RoastGenerator
	manager    *cache.Manager
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      store.KV
	Spotify    services.OAuthService
	Roaster    services.RoastGenerator
	Manager    *cache.Manager
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
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}

	manager := opts.Manager
	if manager == nil && opts.Spotify != nil {
		manager = cache.NewManager(opts.Store, opts.Spotify, cache.OptionsFromConfig(opts.Config.Cache), opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		spotify:    opts.Spotify,
		roaster:    opts.Roaster,
		manager:    manager,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, dataCommand, roastCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, used when the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// saveToken persists the OAuth token to the key-value store.
func (r *Runner) saveToken(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", shared.ErrInvalidInput)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := r.store.Set(tokenKey, data); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// loadToken reads the persisted OAuth token, or errors when none is stored.
func (r *Runner) loadToken() (*oauth2.Token, error) {
	raw, err := r.store.Get(tokenKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: run 'riff auth login' first", shared.ErrNotAuthenticated)
	}

	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("%w: stored token is corrupt, run 'riff auth login'", shared.ErrNotAuthenticated)
	}
	return &token, nil
}

// accessToken returns a usable access token, refreshing an expired one when a
// refresh token is available.
func (r *Runner) accessToken(ctx context.Context) (string, error) {
	token, err := r.loadToken()
	if err != nil {
		return "", err
	}

	if token.Valid() {
		return token.AccessToken, nil
	}

	if r.spotify == nil || token.RefreshToken == "" {
		return "", fmt.Errorf("%w: run 'riff auth login' to reauthorize", shared.ErrTokenExpired)
	}

	r.logger.Info("access token expired, refreshing")
	fresh, err := r.spotify.GetOAuthConfig().TokenSource(ctx, token).Token()
	if err != nil {
		return "", fmt.Errorf("%w: token refresh failed: %v", shared.ErrTokenExpired, err)
	}

	if err := r.saveToken(fresh); err != nil {
		r.logger.Warn("failed to persist refreshed token", "err", err)
	}
	return fresh.AccessToken, nil
}

// ensureData authenticates and initializes the cache, returning the outcome
// of the initialization cycle.
func (r *Runner) ensureData(ctx context.Context) (*cache.Result, error) {
	if r.manager == nil {
		return nil, fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingConfig)
	}

	token, err := r.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	return r.manager.Initialize(ctx, token)
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
