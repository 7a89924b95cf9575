package library

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/shared"
)

// CreatePlaylist creates an empty playlist with a locally generated id.
func (e *Engine) CreatePlaylist(name, description string, filters map[string]any) (models.Playlist, error) {
	now := time.Now()
	playlist := models.Playlist{
		ID:          shared.GenerateID(),
		Name:        name,
		Description: description,
		Filters:     filters,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := playlist.Validate(); err != nil {
		return models.Playlist{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	e.store.SavePlaylist(playlist)
	e.upsertPlaylistCommand(playlist)
	return playlist, nil
}

// UpdatePlaylist replaces an existing playlist's fields.
func (e *Engine) UpdatePlaylist(playlist models.Playlist) error {
	if _, ok := e.store.Playlist(playlist.ID); !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID)
	}
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	playlist.UpdatedAt = time.Now()
	e.store.SavePlaylist(playlist)
	e.upsertPlaylistCommand(playlist)
	return nil
}

// DeletePlaylist removes a playlist.
func (e *Engine) DeletePlaylist(playlistID string) error {
	if _, ok := e.store.Playlist(playlistID); !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	e.store.DeletePlaylist(playlistID)
	e.enqueueCommand(outbox.EntityPlaylist, outbox.OpDelete, playlistID, func(ctx context.Context, cred string) error {
		return e.remote.DeletePlaylist(ctx, cred, playlistID)
	})
	return nil
}

// SetPlaylistStarred toggles the starred flag. Starred playlists sort first
// in [Engine.Playlists].
func (e *Engine) SetPlaylistStarred(playlistID string, starred bool) error {
	playlist, ok := e.store.Playlist(playlistID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	playlist.Starred = starred
	playlist.UpdatedAt = time.Now()
	e.store.SavePlaylist(playlist)
	e.upsertPlaylistCommand(playlist)
	return nil
}

// AddPlaylistSongs appends songs to a playlist preserving submission order.
// Ids already present in the playlist are skipped, so adding [b d] to
// [a b c] yields [a b c d].
func (e *Engine) AddPlaylistSongs(playlistID string, songIDs []string) error {
	playlist, ok := e.store.Playlist(playlistID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	seen := make(map[string]bool, len(playlist.SongIDs))
	for _, id := range playlist.SongIDs {
		seen[id] = true
	}
	for _, id := range songIDs {
		if id == "" || seen[id] {
			continue
		}
		playlist.SongIDs = append(playlist.SongIDs, id)
		seen[id] = true
	}

	playlist.UpdatedAt = time.Now()
	e.store.SavePlaylist(playlist)
	e.upsertPlaylistCommand(playlist)
	return nil
}

// RemovePlaylistSong removes every occurrence of a song id from a playlist.
func (e *Engine) RemovePlaylistSong(playlistID, songID string) error {
	playlist, ok := e.store.Playlist(playlistID)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	kept := playlist.SongIDs[:0]
	for _, id := range playlist.SongIDs {
		if id != songID {
			kept = append(kept, id)
		}
	}
	playlist.SongIDs = kept

	playlist.UpdatedAt = time.Now()
	e.store.SavePlaylist(playlist)
	e.upsertPlaylistCommand(playlist)
	return nil
}

// Playlist returns a playlist by id, if present.
func (e *Engine) Playlist(playlistID string) (models.Playlist, bool) {
	return e.store.Playlist(playlistID)
}

// Playlists returns all playlists, starred first, then newest first.
func (e *Engine) Playlists() []models.Playlist {
	return e.store.Playlists()
}

// PlaylistSongs resolves a playlist's songs in stored order. Ids that no
// longer resolve to an imported song are skipped here but stay in the
// playlist; the engine never prunes dangling references.
func (e *Engine) PlaylistSongs(playlistID string) ([]models.Song, error) {
	playlist, ok := e.store.Playlist(playlistID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	songs := make([]models.Song, 0, len(playlist.SongIDs))
	for _, id := range playlist.SongIDs {
		if song, ok := e.store.Song(id); ok {
			songs = append(songs, song)
		}
	}
	return songs, nil
}

func (e *Engine) upsertPlaylistCommand(playlist models.Playlist) {
	e.enqueueCommand(outbox.EntityPlaylist, outbox.OpUpsert, playlist, func(ctx context.Context, cred string) error {
		_, err := e.remote.UpsertPlaylist(ctx, cred, playlist)
		return err
	})
}
