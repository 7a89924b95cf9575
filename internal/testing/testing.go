// package testing contains shared testing utilities
package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/crate/internal/models"
)

// RecordingClient is a test double for [remote.Client] that records every
// invocation in order and detects overlapping calls.
//
// Calls entries look like "UpsertRating song1 7". FailOn injects an error
// for a method name; Delay applies to every call (context-aware) so tests
// can hold a task in flight.
type RecordingClient struct {
	mu      sync.Mutex
	calls   []string
	active  int
	overlap bool

	Library    *models.Library
	Libraries  map[string]*models.Library // per-credential snapshots
	FetchErr   error
	FetchDelay time.Duration
	FailOn     map[string]error
	Delay      time.Duration
}

// Calls returns a copy of the recorded call log.
func (r *RecordingClient) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Overlapped reports whether two calls were ever in flight at once.
func (r *RecordingClient) Overlapped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlap
}

// enter records a call and returns its completion func plus any injected
// error for the method.
func (r *RecordingClient) enter(method string, args ...any) (func(), error) {
	r.mu.Lock()
	r.active++
	if r.active > 1 {
		r.overlap = true
	}
	entry := method
	for _, a := range args {
		entry += fmt.Sprintf(" %v", a)
	}
	r.calls = append(r.calls, entry)
	err := r.FailOn[method]
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		r.active--
		r.mu.Unlock()
	}, err
}

func (r *RecordingClient) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RecordingClient) FetchLibrary(ctx context.Context, cred string) (*models.Library, error) {
	done, err := r.enter("FetchLibrary")
	defer done()
	if werr := r.wait(ctx, r.FetchDelay); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FetchErr != nil {
		return nil, r.FetchErr
	}
	if lib, ok := r.Libraries[cred]; ok {
		return lib, nil
	}
	if r.Library == nil {
		return &models.Library{}, nil
	}
	return r.Library, nil
}

func (r *RecordingClient) UpsertRating(ctx context.Context, cred string, rating models.Rating) error {
	done, err := r.enter("UpsertRating", rating.SongID, rating.Value)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}

func (r *RecordingClient) DeleteRating(ctx context.Context, cred, songID string) error {
	done, err := r.enter("DeleteRating", songID)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}

func (r *RecordingClient) UpsertTheme(ctx context.Context, cred string, theme models.Theme) (models.Theme, error) {
	done, err := r.enter("UpsertTheme", theme.Name)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return models.Theme{}, werr
	}
	return theme, err
}

func (r *RecordingClient) DeleteTheme(ctx context.Context, cred, themeID string) error {
	done, err := r.enter("DeleteTheme", themeID)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}

func (r *RecordingClient) AssignTheme(ctx context.Context, cred, songID, themeID string) error {
	done, err := r.enter("AssignTheme", songID, themeID)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}

func (r *RecordingClient) UnassignTheme(ctx context.Context, cred, songID, themeID string) error {
	done, err := r.enter("UnassignTheme", songID, themeID)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}

func (r *RecordingClient) UpsertPlaylist(ctx context.Context, cred string, playlist models.Playlist) (models.Playlist, error) {
	done, err := r.enter("UpsertPlaylist", playlist.Name)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return models.Playlist{}, werr
	}
	return playlist, err
}

func (r *RecordingClient) DeletePlaylist(ctx context.Context, cred, playlistID string) error {
	done, err := r.enter("DeletePlaylist", playlistID)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}

func (r *RecordingClient) UpsertSongs(ctx context.Context, cred string, songs []models.Song) error {
	done, err := r.enter("UpsertSongs", len(songs))
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}

func (r *RecordingClient) DeleteSong(ctx context.Context, cred, songID string) error {
	done, err := r.enter("DeleteSong", songID)
	defer done()
	if werr := r.wait(ctx, r.Delay); werr != nil {
		return werr
	}
	return err
}
