package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/mirror"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/queue"
	"github.com/desertthunder/crate/internal/remote"
	"github.com/desertthunder/crate/internal/shared"
)

// Identity describes an authenticated user on the auth-state stream.
type Identity struct {
	UserID      string
	Credentials remote.CredentialSource
}

// session bundles the per-login resources the controller owns. Constructing
// a fresh store and queue per login (instead of process-wide user-keyed
// maps) means a previous account's records cannot leak into a new session:
// even a hydration snapshot that arrives after a user switch lands in a
// discarded store object.
type session struct {
	userID string
	store  *mirror.Store
	queue  *queue.Queue
	engine *library.Engine
}

// Controller observes authentication transitions and drives hydration on
// login and purge on logout.
type Controller struct {
	remoteClient  remote.Client
	journal       outbox.Journal
	logger        *log.Logger
	gate          *Gate
	queueSize     int
	retryAttempts int
	retryBackoff  time.Duration

	mu      sync.Mutex
	current *session
}

// ControllerOpts configures a new Controller.
type ControllerOpts struct {
	Remote        remote.Client
	Journal       outbox.Journal
	Logger        *log.Logger
	QueueSize     int
	RetryAttempts int
	RetryBackoff  time.Duration
}

// NewController creates a Controller with no active session.
func NewController(opts ControllerOpts) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Journal == nil {
		opts.Journal = outbox.NewMemory()
	}
	c := &Controller{
		remoteClient:  opts.Remote,
		journal:       opts.Journal,
		logger:        opts.Logger,
		gate:          NewGate(),
		queueSize:     opts.QueueSize,
		retryAttempts: opts.RetryAttempts,
		retryBackoff:  opts.RetryBackoff,
	}
	return c
}

// Ready returns the readiness gate for the current session.
func (c *Controller) Ready() *Gate {
	return c.gate
}

// WaitReady blocks until the mirror reflects the initial snapshot for the
// current session, or immediately when no session exists.
func (c *Controller) WaitReady(ctx context.Context) error {
	return c.gate.Wait(ctx)
}

// Engine returns the reconciliation engine for the active session, or
// [shared.ErrNoSession] when signed out.
func (c *Controller) Engine() (*library.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, shared.ErrNoSession
	}
	return c.current.engine, nil
}

// UserID returns the active user id, or empty when signed out.
func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.userID
}

// Login starts a session for the given identity. An existing session is
// ended first; switching users without the intervening purge would be a
// consistency violation. The readiness gate resets to pending and a
// hydration task is enqueued as the first task on the new session's queue.
func (c *Controller) Login(identity Identity) {
	c.Logout()

	store := mirror.NewStore(identity.UserID)
	q := queue.New(c.queueSize, c.logger)
	engine := library.NewEngine(library.EngineOpts{
		UserID:        identity.UserID,
		Store:         store,
		Queue:         q,
		Remote:        c.remoteClient,
		Credentials:   identity.Credentials,
		Journal:       c.journal,
		Logger:        c.logger,
		RetryAttempts: c.retryAttempts,
		RetryBackoff:  c.retryBackoff,
	})
	s := &session{userID: identity.UserID, store: store, queue: q, engine: engine}

	c.mu.Lock()
	c.current = s
	c.gate.Reset()
	c.mu.Unlock()

	c.logger.Info("session started", "user", identity.UserID)

	err := q.Enqueue(queue.Task{Name: "library.hydrate", Run: func(ctx context.Context) error {
		defer c.resolveGateFor(s)
		if err := engine.Hydrate(ctx); err != nil {
			// The gate resolves anyway: the user sees an empty or stale
			// cache instead of a blocked screen, and nothing retries until
			// the next login. Silent degradation is the chosen trade-off.
			c.logger.Warn("hydration failed, serving local cache", "user", identity.UserID, "err", err)
		}
		return nil
	}})
	if err != nil {
		c.resolveGateFor(s)
	}
}

// Logout ends the active session: the queue stops (cancelling the task in
// flight and discarding the rest), the store is purged and discarded, and
// the gate is forced resolved.
func (c *Controller) Logout() {
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.gate.Resolve()
	c.mu.Unlock()

	if s == nil {
		return
	}

	s.queue.Stop()
	s.store.Purge()
	c.logger.Info("session ended", "user", s.userID)
}

// Flush blocks until every sync task enqueued by the active session has
// settled. No-op when signed out.
func (c *Controller) Flush() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s != nil {
		s.queue.Drain()
	}
}

// resolveGateFor resolves the gate only if the given session is still
// current. A hydration task finishing after a user switch must not resolve
// the next session's gate.
func (c *Controller) resolveGateFor(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == s {
		c.gate.Resolve()
	}
}

// Watch consumes an auth-state stream until it closes or the context ends.
// A nil identity reads as signed out.
func (c *Controller) Watch(ctx context.Context, changes <-chan *Identity) {
	for {
		select {
		case <-ctx.Done():
			return
		case identity, ok := <-changes:
			if !ok {
				return
			}
			if identity == nil {
				c.Logout()
			} else {
				c.Login(*identity)
			}
		}
	}
}
