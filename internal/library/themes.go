package library

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/shared"
)

// CreateTheme creates a theme with a locally generated id. The id stays
// stable even if the remote store assigns its own on delivery.
func (e *Engine) CreateTheme(name, color, description string) (models.Theme, error) {
	theme := models.Theme{
		ID:          shared.GenerateID(),
		Name:        name,
		Color:       color,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := theme.Validate(); err != nil {
		return models.Theme{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	e.store.SaveTheme(theme)

	e.enqueueCommand(outbox.EntityTheme, outbox.OpUpsert, theme, func(ctx context.Context, cred string) error {
		_, err := e.remote.UpsertTheme(ctx, cred, theme)
		return err
	})
	return theme, nil
}

// UpdateTheme replaces an existing theme's fields.
func (e *Engine) UpdateTheme(theme models.Theme) error {
	if _, ok := e.store.Theme(theme.ID); !ok {
		return fmt.Errorf("%w: %s", shared.ErrThemeNotFound, theme.ID)
	}
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	e.store.SaveTheme(theme)

	e.enqueueCommand(outbox.EntityTheme, outbox.OpUpsert, theme, func(ctx context.Context, cred string) error {
		_, err := e.remote.UpsertTheme(ctx, cred, theme)
		return err
	})
	return nil
}

// DeleteTheme removes a theme and every assignment referencing it. All local
// removals happen in this call; one remote command is enqueued per removal,
// so the remote cascade is not atomic. A failed unassign leaves the remote
// store with a dangling link until the next mutation on that pair.
func (e *Engine) DeleteTheme(themeID string) error {
	if _, ok := e.store.Theme(themeID); !ok {
		return fmt.Errorf("%w: %s", shared.ErrThemeNotFound, themeID)
	}

	for _, link := range e.store.LinksForTheme(themeID) {
		link := link
		e.store.DeleteLink(link.SongID, link.ThemeID)
		e.enqueueCommand(outbox.EntityLink, outbox.OpUnassign, link, func(ctx context.Context, cred string) error {
			return e.remote.UnassignTheme(ctx, cred, link.SongID, link.ThemeID)
		})
	}

	e.store.DeleteTheme(themeID)
	e.enqueueCommand(outbox.EntityTheme, outbox.OpDelete, themeID, func(ctx context.Context, cred string) error {
		return e.remote.DeleteTheme(ctx, cred, themeID)
	})
	return nil
}

// AssignTheme links a theme to a song. Assigning an already linked pair is a
// no-op.
func (e *Engine) AssignTheme(songID, themeID string) error {
	if songID == "" || themeID == "" {
		return fmt.Errorf("%w: song id and theme id required", shared.ErrInvalidInput)
	}
	if _, ok := e.store.Theme(themeID); !ok {
		return fmt.Errorf("%w: %s", shared.ErrThemeNotFound, themeID)
	}
	if _, ok := e.store.Link(songID, themeID); ok {
		return nil
	}

	link := models.ThemeLink{SongID: songID, ThemeID: themeID, AssignedAt: time.Now()}
	e.store.SaveLink(link)

	e.enqueueCommand(outbox.EntityLink, outbox.OpAssign, link, func(ctx context.Context, cred string) error {
		return e.remote.AssignTheme(ctx, cred, songID, themeID)
	})
	return nil
}

// UnassignTheme removes a theme link from a song.
func (e *Engine) UnassignTheme(songID, themeID string) error {
	if songID == "" || themeID == "" {
		return fmt.Errorf("%w: song id and theme id required", shared.ErrInvalidInput)
	}

	e.store.DeleteLink(songID, themeID)

	link := models.ThemeLink{SongID: songID, ThemeID: themeID}
	e.enqueueCommand(outbox.EntityLink, outbox.OpUnassign, link, func(ctx context.Context, cred string) error {
		return e.remote.UnassignTheme(ctx, cred, songID, themeID)
	})
	return nil
}

// Theme returns a theme by id, if present.
func (e *Engine) Theme(themeID string) (models.Theme, bool) {
	return e.store.Theme(themeID)
}

// Themes returns all themes, oldest first.
func (e *Engine) Themes() []models.Theme {
	return e.store.Themes()
}

// ThemesForSong resolves the themes assigned to a song.
func (e *Engine) ThemesForSong(songID string) []models.Theme {
	var out []models.Theme
	for _, link := range e.store.LinksForSong(songID) {
		if theme, ok := e.store.Theme(link.ThemeID); ok {
			out = append(out, theme)
		}
	}
	return out
}

// Links returns all theme assignments in the mirror.
func (e *Engine) Links() []models.ThemeLink {
	return e.store.Links()
}
