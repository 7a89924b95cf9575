package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/remote"
	"github.com/desertthunder/crate/internal/session"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for
// each command action.
type Runner struct {
	config     *shared.Config
	controller *session.Controller
	journal    outbox.Journal
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Controller *session.Controller
	Journal    outbox.Journal
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
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
	if opts.Journal == nil {
		opts.Journal = outbox.NewMemory()
	}

	return &Runner{
		config:     opts.Config,
		controller: opts.Controller,
		journal:    opts.Journal,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, logoutCommand, rateCommand, themeCommand, songsCommand, playlistCommand, statusCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// withSession logs in with the configured identity, waits for hydration to
// settle, runs fn, and drains the sync queue before logging out so queued
// mutations get their delivery attempt before the process exits.
func (r *Runner) withSession(ctx context.Context, fn func(engine *library.Engine) error) error {
	if r.config.Auth.UserID == "" {
		return fmt.Errorf("%w: set auth.user_id in config.toml", shared.ErrMissingConfig)
	}

	r.controller.Login(session.Identity{
		UserID:      r.config.Auth.UserID,
		Credentials: remote.StaticCredentials(r.config.Auth.Token),
	})
	defer r.controller.Logout()

	if err := r.controller.WaitReady(ctx); err != nil {
		return err
	}

	engine, err := r.controller.Engine()
	if err != nil {
		return err
	}

	if err := fn(engine); err != nil {
		return err
	}

	r.controller.Flush()
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

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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
