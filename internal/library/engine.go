// package library implements entity reconciliation: the optimistic local
// mutations and snapshot application that keep the mirror store consistent
// with the remote library.
//
// Every mutating operation follows the same shape: validate synchronously,
// write to the mirror store for immediate read-back, then journal and
// enqueue exactly one remote command per changed record. Remote failures
// never surface to the caller; only validation errors do.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/mirror"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/queue"
	"github.com/desertthunder/crate/internal/remote"
	"github.com/desertthunder/crate/internal/shared"
)

// Engine reconciles one user's library. It owns no goroutines itself; remote
// delivery happens on the session queue's worker.
type Engine struct {
	userID  string
	store   *mirror.Store
	queue   *queue.Queue
	remote  remote.Client
	creds   remote.CredentialSource
	journal outbox.Journal
	logger  *log.Logger

	retryAttempts int
	retryBackoff  time.Duration
}

// EngineOpts contains dependencies for a new Engine.
type EngineOpts struct {
	UserID      string
	Store       *mirror.Store
	Queue       *queue.Queue
	Remote      remote.Client
	Credentials remote.CredentialSource
	Journal     outbox.Journal
	Logger      *log.Logger

	// RetryAttempts beyond the first delivery try. Zero keeps the default
	// policy: the mirror is source of truth and a failed command is dropped.
	RetryAttempts int
	RetryBackoff  time.Duration
}

// NewEngine creates an Engine for one session.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Journal == nil {
		opts.Journal = outbox.NewMemory()
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	return &Engine{
		userID:        opts.UserID,
		store:         opts.Store,
		queue:         opts.Queue,
		remote:        opts.Remote,
		creds:         opts.Credentials,
		journal:       opts.Journal,
		logger:        shared.WithLogger(opts.Logger, "user", opts.UserID),
		retryAttempts: opts.RetryAttempts,
		retryBackoff:  opts.RetryBackoff,
	}
}

// UserID returns the id of the user this engine serves.
func (e *Engine) UserID() string {
	return e.userID
}

// enqueueCommand journals one remote command and schedules its delivery on
// the session queue. Called after the local mutation has already been
// applied; the caller does not learn about delivery failures.
func (e *Engine) enqueueCommand(entity, op string, payload any, send func(ctx context.Context, cred string) error) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("failed to encode command payload", "entity", entity, "op", op, "err", err)
	}

	cmd := &outbox.Command{UserID: e.userID, Entity: entity, Op: op, Payload: data}
	if err := e.journal.Record(cmd); err != nil {
		e.logger.Error("failed to journal command", "entity", entity, "op", op, "err", err)
	}

	name := entity + "." + op
	err = e.queue.Enqueue(queue.Task{Name: name, Run: func(ctx context.Context) error {
		return e.deliver(ctx, cmd, name, send)
	}})
	if err != nil {
		// Session ended between the local write and the enqueue.
		e.setStatus(cmd, outbox.StatusAborted, 0, err.Error())
	}
}

// deliver resolves a fresh credential and attempts the remote call,
// updating the command's journal entry with the outcome.
func (e *Engine) deliver(ctx context.Context, cmd *outbox.Command, name string, send func(ctx context.Context, cred string) error) error {
	if ctx.Err() != nil {
		e.setStatus(cmd, outbox.StatusAborted, 0, ctx.Err().Error())
		return nil
	}

	cred, err := e.creds.Token(ctx)
	if err != nil {
		// No usable credential: the task is a no-op, not a failure.
		e.logger.Debug("skipping sync task without credential", "task", name, "err", err)
		e.setStatus(cmd, outbox.StatusSkipped, 0, err.Error())
		return nil
	}

	attempts := 0
	for {
		attempts++
		err = send(ctx, cred)
		if err == nil {
			e.setStatus(cmd, outbox.StatusSynced, attempts, "")
			return nil
		}
		if attempts > e.retryAttempts || ctx.Err() != nil {
			break
		}
		select {
		case <-time.After(time.Duration(attempts) * e.retryBackoff):
		case <-ctx.Done():
		}
	}

	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		e.setStatus(cmd, outbox.StatusAborted, attempts, err.Error())
		return nil
	}
	e.setStatus(cmd, outbox.StatusFailed, attempts, err.Error())
	return err
}

func (e *Engine) setStatus(cmd *outbox.Command, status outbox.Status, attempts int, lastError string) {
	if cmd.ID == "" {
		return
	}
	if err := e.journal.SetStatus(cmd.ID, status, attempts, lastError); err != nil {
		e.logger.Error("failed to update command status", "command", cmd.ID, "err", err)
	}
}
