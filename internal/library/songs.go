package library

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/shared"
)

// ImportSongs adds a batch of songs to the library. Re-importing an existing
// id replaces the record; song ids are stable across imports.
func (e *Engine) ImportSongs(songs []models.Song) error {
	if len(songs) == 0 {
		return fmt.Errorf("%w: no songs to import", shared.ErrInvalidInput)
	}

	now := time.Now()
	for i := range songs {
		if songs[i].ImportedAt.IsZero() {
			songs[i].ImportedAt = now
		}
		if err := songs[i].Validate(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}

	e.store.SaveSongs(songs)

	e.enqueueCommand(outbox.EntitySong, outbox.OpImport, songs, func(ctx context.Context, cred string) error {
		return e.remote.UpsertSongs(ctx, cred, songs)
	})
	return nil
}

// DeleteSong removes a song and cascades: its rating and every theme link go
// with it, all gone from the mirror before this call returns. Each removal
// enqueues its own remote command, so a later failure can leave the remote
// store only partially cascaded.
func (e *Engine) DeleteSong(songID string) error {
	if _, ok := e.store.Song(songID); !ok {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, songID)
	}

	e.store.DeleteSong(songID)
	e.enqueueCommand(outbox.EntitySong, outbox.OpDelete, songID, func(ctx context.Context, cred string) error {
		return e.remote.DeleteSong(ctx, cred, songID)
	})

	if _, ok := e.store.Rating(songID); ok {
		e.store.DeleteRating(songID)
		e.enqueueCommand(outbox.EntityRating, outbox.OpDelete, songID, func(ctx context.Context, cred string) error {
			return e.remote.DeleteRating(ctx, cred, songID)
		})
	}

	for _, link := range e.store.LinksForSong(songID) {
		link := link
		e.store.DeleteLink(link.SongID, link.ThemeID)
		e.enqueueCommand(outbox.EntityLink, outbox.OpUnassign, link, func(ctx context.Context, cred string) error {
			return e.remote.UnassignTheme(ctx, cred, link.SongID, link.ThemeID)
		})
	}

	return nil
}

// Song returns an imported song by id, if present.
func (e *Engine) Song(songID string) (models.Song, bool) {
	return e.store.Song(songID)
}

// Songs returns all imported songs, newest first.
func (e *Engine) Songs() []models.Song {
	return e.store.Songs()
}
