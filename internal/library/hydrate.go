package library

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/shared"
)

// Hydrate pulls the full library snapshot and replaces every mirror table
// with its contents. Replacement, not merge: a local record unknown to the
// remote store at snapshot time is dropped (last writer wins, no conflict
// detection).
//
// Hydrate runs as the first task on the session queue, so mutations issued
// during the hydration window are applied after the snapshot lands.
func (e *Engine) Hydrate(ctx context.Context) error {
	cred, err := e.creds.Token(ctx)
	if err != nil {
		// Signed out before the task ran; nothing to hydrate.
		e.logger.Debug("skipping hydration without credential", "err", err)
		return nil
	}

	lib, err := e.remote.FetchLibrary(ctx, cred)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrHydrationFailed, err)
	}

	e.store.ReplaceSongs(lib.Songs)
	e.store.ReplaceRatings(lib.Ratings)
	e.store.ReplaceThemes(lib.Themes)
	e.store.ReplaceLinks(lib.Links)
	e.store.ReplacePlaylists(lib.Playlists)

	e.logger.Info("library hydrated",
		"songs", len(lib.Songs),
		"ratings", len(lib.Ratings),
		"themes", len(lib.Themes),
		"links", len(lib.Links),
		"playlists", len(lib.Playlists),
	)
	return nil
}
