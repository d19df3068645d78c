package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/riff/internal/models"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/store"
	"github.com/desertthunder/riff/internal/tasks"
	tu "github.com/desertthunder/riff/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// countingSource tracks how many fetch requests reach the provider.
type countingSource struct {
	tu.MockSource
	mu    sync.Mutex
	calls int
}

func (c *countingSource) bump() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingSource) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *countingSource) TopTracks(ctx context.Context, window models.Window, limit int) ([]models.TrackRecord, error) {
	c.bump()
	return []models.TrackRecord{}, nil
}

func (c *countingSource) TopArtists(ctx context.Context, window models.Window, limit int) ([]models.ArtistRecord, error) {
	c.bump()
	return []models.ArtistRecord{}, nil
}

func (c *countingSource) RecentlyPlayed(ctx context.Context, limit int) ([]models.RecentPlayEvent, error) {
	c.bump()
	return []models.RecentPlayEvent{}, nil
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			kv := store.NewMemoryStore()
			spotify := &tu.MockSource{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Store:   kv,
				Spotify: spotify,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.store != kv {
				t.Error("expected store to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil store uses memory store", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Store: nil,
			})

			if runner.store == nil {
				t.Error("expected store to default to memory store")
			}
		})

		t.Run("with spotify builds cache manager", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Spotify: &tu.MockSource{},
			})

			if runner.manager == nil {
				t.Error("expected manager to be constructed from spotify service")
			}
		})

		t.Run("without spotify leaves manager nil", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.manager != nil {
				t.Error("expected nil manager without a spotify service")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 5 {
			t.Errorf("expected 5 commands to be registered, got %d", len(commands))
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("tokens", func(t *testing.T) {
		t.Run("save and load round trip", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Store: store.NewMemoryStore()})

			token := &oauth2.Token{
				AccessToken:  "access",
				RefreshToken: "refresh",
				Expiry:       time.Now().Add(time.Hour),
			}

			if err := runner.saveToken(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := runner.loadToken()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if loaded.AccessToken != "access" {
				t.Errorf("expected access token to round trip, got %s", loaded.AccessToken)
			}
			if loaded.RefreshToken != "refresh" {
				t.Errorf("expected refresh token to round trip, got %s", loaded.RefreshToken)
			}
		})

		t.Run("save rejects nil token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			err := runner.saveToken(nil)
			if err == nil {
				t.Fatal("expected error for nil token")
			}
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("load errors when no token stored", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Store: store.NewMemoryStore()})

			_, err := runner.loadToken()
			if err == nil {
				t.Fatal("expected error when no token stored")
			}
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("load errors on corrupt token", func(t *testing.T) {
			kv := store.NewMemoryStore()
			if err := kv.Set(tokenKey, []byte("{not json")); err != nil {
				t.Fatalf("failed to seed store: %v", err)
			}
			runner := NewRunner(RunnerOpts{Store: kv})

			_, err := runner.loadToken()
			if err == nil {
				t.Fatal("expected error for corrupt token")
			}
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("accessToken", func(t *testing.T) {
		t.Run("returns stored token while valid", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Store: store.NewMemoryStore()})

			token := &oauth2.Token{
				AccessToken: "still_good",
				Expiry:      time.Now().Add(time.Hour),
			}
			if err := runner.saveToken(token); err != nil {
				t.Fatalf("failed to save token: %v", err)
			}

			got, err := runner.accessToken(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "still_good" {
				t.Errorf("expected stored access token, got %s", got)
			}
		})

		t.Run("errors when expired without refresh token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Store: store.NewMemoryStore()})

			token := &oauth2.Token{
				AccessToken: "stale",
				Expiry:      time.Now().Add(-time.Hour),
			}
			if err := runner.saveToken(token); err != nil {
				t.Fatalf("failed to save token: %v", err)
			}

			_, err := runner.accessToken(context.Background())
			if err == nil {
				t.Fatal("expected error for expired token")
			}
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Errorf("expected ErrTokenExpired, got %v", err)
			}
		})
	})

	t.Run("DataRefresh", func(t *testing.T) {
		t.Run("runs exactly one fetch cycle when cache is empty", func(t *testing.T) {
			source := &countingSource{}
			runner := NewRunner(RunnerOpts{
				Spotify: source,
				Store:   store.NewMemoryStore(),
				Output:  &bytes.Buffer{},
			})

			token := &oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(time.Hour)}
			if err := runner.saveToken(token); err != nil {
				t.Fatalf("failed to save token: %v", err)
			}

			if err := runner.DataRefresh(context.Background(), &cli.Command{}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got := source.callCount(); got != tasks.SliceCount {
				t.Errorf("expected %d provider calls, got %d", tasks.SliceCount, got)
			}
		})

		t.Run("errors without a manager", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			err := runner.DataRefresh(context.Background(), &cli.Command{})
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})
	})

	t.Run("ensureData", func(t *testing.T) {
		t.Run("errors without a manager", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			_, err := runner.ensureData(context.Background())
			if err == nil {
				t.Fatal("expected error without manager")
			}
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})
	})
}
