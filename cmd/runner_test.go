package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/session"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			journal := outbox.NewMemory()
			controller := session.NewController(session.ControllerOpts{
				Remote: &tu.RecordingClient{},
				Logger: logger,
			})

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Controller: controller,
				Journal:    journal,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.controller != controller {
				t.Error("expected controller to be set")
			}
			if runner.journal != journal {
				t.Error("expected journal to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil journal uses memory", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.journal == nil {
				t.Error("expected in-memory journal to be set")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Fatal("expected registered commands")
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "login", "logout", "rate", "theme", "songs", "playlist", "status"} {
			if !names[want] {
				t.Errorf("missing command %s", want)
			}
		}
	})
}

func testRunner(client *tu.RecordingClient, output *bytes.Buffer) *Runner {
	config := shared.DefaultConfig()
	config.Auth.UserID = "user1"
	config.Auth.Token = "token"

	logger := shared.NewLogger(nil)
	logger.SetLevel(log.FatalLevel)

	return NewRunner(RunnerOpts{
		Config: config,
		Controller: session.NewController(session.ControllerOpts{
			Remote:    client,
			Logger:    logger,
			QueueSize: config.Sync.QueueSize,
		}),
		Logger: logger,
		Output: output,
	})
}

func TestWithSession(t *testing.T) {
	t.Run("hydrates before the action runs", func(t *testing.T) {
		client := &tu.RecordingClient{Library: &models.Library{
			Songs: []models.Song{{ID: "song1", Title: "One"}},
		}}
		output := &bytes.Buffer{}
		runner := testRunner(client, output)

		err := runner.withSession(context.Background(), func(engine *library.Engine) error {
			if _, ok := engine.Song("song1"); !ok {
				t.Error("session should be hydrated before the action runs")
			}
			return engine.SetRating("song1", 9)
		})
		if err != nil {
			t.Fatalf("withSession() error = %v", err)
		}

		// Flush ran before logout, so the mutation got its delivery attempt.
		var sawUpsert bool
		for _, call := range client.Calls() {
			if strings.HasPrefix(call, "UpsertRating") {
				sawUpsert = true
			}
		}
		if !sawUpsert {
			t.Errorf("queued mutation should be delivered before exit, calls = %v", client.Calls())
		}
	})

	t.Run("requires a configured user", func(t *testing.T) {
		runner := testRunner(&tu.RecordingClient{}, &bytes.Buffer{})
		runner.config.Auth.UserID = ""

		err := runner.withSession(context.Background(), func(engine *library.Engine) error {
			t.Error("action should not run without a configured user")
			return nil
		})
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("withSession() error = %v, want ErrMissingConfig", err)
		}
	})

	t.Run("action errors propagate", func(t *testing.T) {
		runner := testRunner(&tu.RecordingClient{}, &bytes.Buffer{})

		wantErr := errors.New("action failed")
		err := runner.withSession(context.Background(), func(engine *library.Engine) error {
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("withSession() error = %v, want %v", err, wantErr)
		}
	})
}

func TestLoginLogout(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	app := &cli.Command{Name: "crate", Commands: runner.register()}

	err := app.Run(context.Background(), []string{
		"crate", "login", "--config", configPath, "--token", "tok", "--user", "user1",
	})
	if err != nil {
		t.Fatalf("login error = %v", err)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if config.Auth.Token != "tok" || config.Auth.UserID != "user1" {
		t.Errorf("saved auth = %+v", config.Auth)
	}
	if runner.config.Auth.UserID != "user1" {
		t.Error("login should update the in-memory config")
	}

	err = app.Run(context.Background(), []string{"crate", "logout", "--config", configPath})
	if err != nil {
		t.Fatalf("logout error = %v", err)
	}

	config, err = shared.LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if config.Auth.Token != "" || config.Auth.UserID != "" {
		t.Errorf("auth should be cleared, got %+v", config.Auth)
	}
}

func TestWriteJSON(t *testing.T) {
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Output: output})

	if err := runner.writeJSON(map[string]int{"count": 3}, false); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}
	if got := output.String(); got != "{\"count\":3}\n" {
		t.Errorf("output = %q", got)
	}

	output.Reset()
	if err := runner.writeJSON(map[string]int{"count": 3}, true); err != nil {
		t.Fatalf("writeJSON() pretty error = %v", err)
	}
	if !strings.Contains(output.String(), "  \"count\": 3") {
		t.Errorf("pretty output = %q", output.String())
	}
}
