// package remote defines the contract the sync engine requires of the
// backing store, plus credential acquisition.
//
// The remote store is an external collaborator: every call takes a bearer
// credential resolved immediately beforehand, and the engine treats each
// call as best-effort.
package remote

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

// Client exposes CRUD operations against the remote library store.
type Client interface {
	// FetchLibrary retrieves the full snapshot for the authenticated user.
	FetchLibrary(ctx context.Context, cred string) (*models.Library, error)

	UpsertRating(ctx context.Context, cred string, rating models.Rating) error
	DeleteRating(ctx context.Context, cred, songID string) error

	// UpsertTheme creates or updates a theme. The server may assign an id on
	// create; the returned record carries it.
	UpsertTheme(ctx context.Context, cred string, theme models.Theme) (models.Theme, error)
	DeleteTheme(ctx context.Context, cred, themeID string) error

	AssignTheme(ctx context.Context, cred, songID, themeID string) error
	UnassignTheme(ctx context.Context, cred, songID, themeID string) error

	UpsertPlaylist(ctx context.Context, cred string, playlist models.Playlist) (models.Playlist, error)
	DeletePlaylist(ctx context.Context, cred, playlistID string) error

	UpsertSongs(ctx context.Context, cred string, songs []models.Song) error
	DeleteSong(ctx context.Context, cred, songID string) error
}

// CredentialSource yields a usable bearer credential, refreshing it if
// needed. Implementations return [shared.ErrNotAuthenticated] when no user
// is signed in or a refresh fails, in which case the calling sync task
// becomes a no-op.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticCredentials is a CredentialSource backed by a fixed token. An empty
// token reads as signed out.
type StaticCredentials string

// Token returns the fixed token or [shared.ErrNotAuthenticated] when empty.
func (s StaticCredentials) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", shared.ErrNotAuthenticated
	}
	return string(s), nil
}

// OAuthCredentials adapts an [oauth2.TokenSource] (which handles refresh) to
// CredentialSource.
type OAuthCredentials struct {
	Source oauth2.TokenSource
}

// Token resolves a fresh access token from the underlying source.
func (o *OAuthCredentials) Token(ctx context.Context) (string, error) {
	if o == nil || o.Source == nil {
		return "", shared.ErrNotAuthenticated
	}
	tok, err := o.Source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	if !tok.Valid() {
		return "", shared.ErrTokenExpired
	}
	return tok.AccessToken, nil
}
