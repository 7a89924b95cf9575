package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/remote"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
)

func newTestController(client *tu.RecordingClient) *Controller {
	return NewController(ControllerOpts{
		Remote:    client,
		Logger:    shared.NewLogger(io.Discard),
		QueueSize: 8,
	})
}

func TestController_LoginHydratesAndResolvesGate(t *testing.T) {
	client := &tu.RecordingClient{Library: &models.Library{
		Songs:   []models.Song{{ID: "song1", Title: "One"}},
		Ratings: []models.Rating{{SongID: "song1", Value: 8}},
	}}
	c := newTestController(client)
	defer c.Logout()

	c.Login(Identity{UserID: "alice", Credentials: remote.StaticCredentials("tok")})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}

	engine, err := c.Engine()
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	if _, ok := engine.Song("song1"); !ok {
		t.Error("snapshot song should be readable after WaitReady")
	}
	if got, ok := engine.Rating("song1"); !ok || got.Value != 8 {
		t.Errorf("snapshot rating = %+v, ok=%v", got, ok)
	}
	if got := c.UserID(); got != "alice" {
		t.Errorf("UserID() = %q, want alice", got)
	}
}

func TestController_LogoutPurges(t *testing.T) {
	client := &tu.RecordingClient{Library: &models.Library{
		Songs: []models.Song{{ID: "song1", Title: "One"}},
	}}
	c := newTestController(client)

	c.Login(Identity{UserID: "alice", Credentials: remote.StaticCredentials("tok")})
	if err := c.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}
	engine, err := c.Engine()
	if err != nil {
		t.Fatal(err)
	}

	c.Logout()

	if _, err := c.Engine(); !errors.Is(err, shared.ErrNoSession) {
		t.Errorf("Engine() after logout error = %v, want ErrNoSession", err)
	}
	if got := c.UserID(); got != "" {
		t.Errorf("UserID() after logout = %q, want empty", got)
	}
	// A caller holding the old engine reads an empty mirror.
	if got := len(engine.Songs()); got != 0 {
		t.Errorf("old engine songs after logout = %d, want 0", got)
	}
}

func TestController_HydrationFailureStillResolvesGate(t *testing.T) {
	client := &tu.RecordingClient{FetchErr: errors.New("remote down")}
	c := newTestController(client)
	defer c.Logout()

	c.Login(Identity{UserID: "alice", Credentials: remote.StaticCredentials("tok")})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.WaitReady(ctx); err != nil {
		t.Fatalf("gate must resolve even when hydration fails, got %v", err)
	}

	engine, err := c.Engine()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(engine.Songs()); got != 0 {
		t.Errorf("failed hydration should leave an empty cache, got %d songs", got)
	}
}

func TestController_MutationsAfterReady(t *testing.T) {
	client := &tu.RecordingClient{}
	c := newTestController(client)
	defer c.Logout()

	c.Login(Identity{UserID: "alice", Credentials: remote.StaticCredentials("tok")})
	if err := c.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}

	engine, err := c.Engine()
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.SetRating("song1", 7); err != nil {
		t.Fatal(err)
	}

	c.Flush()

	calls := client.Calls()
	if len(calls) != 2 || calls[0] != "FetchLibrary" {
		t.Fatalf("calls = %v, want hydration then the rating upsert", calls)
	}
}

func TestController_UserSwitchDiscardsInFlightHydration(t *testing.T) {
	// Alice's hydration is held in flight while the account switches to
	// Bob. Bob's mirror must never contain Alice's records, no matter when
	// the slow fetch settles.
	client := &tu.RecordingClient{
		FetchDelay: 50 * time.Millisecond,
		Libraries: map[string]*models.Library{
			"tokA": {Songs: []models.Song{{ID: "alice-song", Title: "Alice's"}}},
			"tokB": {Songs: []models.Song{{ID: "bob-song", Title: "Bob's"}}},
		},
	}
	c := newTestController(client)
	defer c.Logout()

	c.Login(Identity{UserID: "alice", Credentials: remote.StaticCredentials("tokA")})

	// Switch before Alice's fetch returns.
	time.Sleep(10 * time.Millisecond)
	c.Login(Identity{UserID: "bob", Credentials: remote.StaticCredentials("tokB")})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}

	engine, err := c.Engine()
	if err != nil {
		t.Fatal(err)
	}
	if engine.UserID() != "bob" {
		t.Fatalf("engine user = %q, want bob", engine.UserID())
	}
	if _, ok := engine.Song("alice-song"); ok {
		t.Error("bob's mirror must not contain alice's records")
	}
	if _, ok := engine.Song("bob-song"); !ok {
		t.Error("bob's snapshot should be present")
	}

	// Give the cancelled fetch time to settle; bob's mirror stays clean.
	time.Sleep(80 * time.Millisecond)
	if _, ok := engine.Song("alice-song"); ok {
		t.Error("late-arriving snapshot leaked across the user switch")
	}
}

func TestController_WatchDrivesSessions(t *testing.T) {
	client := &tu.RecordingClient{Library: &models.Library{
		Songs: []models.Song{{ID: "song1", Title: "One"}},
	}}
	c := newTestController(client)
	defer c.Logout()

	changes := make(chan *Identity)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Watch(context.Background(), changes)
	}()

	changes <- &Identity{UserID: "alice", Credentials: remote.StaticCredentials("tok")}

	// Login happens on the watch goroutine; wait for the session to exist
	// before consulting the gate.
	deadline := time.Now().Add(time.Second)
	for c.UserID() != "alice" {
		if time.Now().After(deadline) {
			t.Fatal("session never started from the auth-state stream")
		}
		time.Sleep(time.Millisecond)
	}
	if err := c.WaitReady(context.Background()); err != nil {
		t.Fatal(err)
	}

	changes <- nil
	close(changes)
	<-done

	if _, err := c.Engine(); !errors.Is(err, shared.ErrNoSession) {
		t.Errorf("Engine() after signed-out event error = %v, want ErrNoSession", err)
	}
}
