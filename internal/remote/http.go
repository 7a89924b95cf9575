// HTTP implementation of [Client] against the crate library service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

// HTTPClient talks to the remote library store over JSON/HTTP. Requests
// carry the bearer credential passed per call and pass through a client-side
// rate limiter.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// HTTPClientOpts configures a new HTTPClient.
type HTTPClientOpts struct {
	BaseURL   string
	Client    *http.Client
	RateLimit float64 // requests per second, 0 for default
}

// NewHTTPClient creates an HTTPClient for the given base URL.
func NewHTTPClient(opts HTTPClientOpts) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8090"
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	return &HTTPClient{
		baseURL:    opts.BaseURL,
		httpClient: opts.Client,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Wire representations. Timestamps travel as RFC 3339 strings and are
// converted to [time.Time] at the boundary.

type songPayload struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Duration   int    `json:"duration,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Available  bool   `json:"available"`
	ImportedAt string `json:"imported_at,omitempty"`
}

type ratingPayload struct {
	SongID  string `json:"song_id"`
	Value   int    `json:"rating"`
	RatedAt string `json:"rated_at,omitempty"`
}

type themePayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type linkPayload struct {
	SongID     string `json:"song_id"`
	ThemeID    string `json:"theme_id"`
	AssignedAt string `json:"assigned_at,omitempty"`
}

type playlistPayload struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	SongIDs     []string       `json:"song_ids"`
	Filters     map[string]any `json:"filters,omitempty"`
	Starred     bool           `json:"starred"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
}

type libraryPayload struct {
	Songs     []songPayload     `json:"songs"`
	Ratings   []ratingPayload   `json:"ratings"`
	Themes    []themePayload    `json:"themes"`
	Links     []linkPayload     `json:"song_themes"`
	Playlists []playlistPayload `json:"playlists"`
}

// FetchLibrary retrieves the full snapshot for the authenticated user.
func (c *HTTPClient) FetchLibrary(ctx context.Context, cred string) (*models.Library, error) {
	var payload libraryPayload
	if err := c.do(ctx, cred, http.MethodGet, "/api/library", nil, &payload); err != nil {
		return nil, err
	}

	lib := &models.Library{}
	for _, s := range payload.Songs {
		lib.Songs = append(lib.Songs, s.toModel())
	}
	for _, r := range payload.Ratings {
		lib.Ratings = append(lib.Ratings, models.Rating{
			SongID:  r.SongID,
			Value:   r.Value,
			RatedAt: parseTime(r.RatedAt),
		})
	}
	for _, t := range payload.Themes {
		lib.Themes = append(lib.Themes, t.toModel())
	}
	for _, l := range payload.Links {
		lib.Links = append(lib.Links, models.ThemeLink{
			SongID:     l.SongID,
			ThemeID:    l.ThemeID,
			AssignedAt: parseTime(l.AssignedAt),
		})
	}
	for _, p := range payload.Playlists {
		lib.Playlists = append(lib.Playlists, p.toModel())
	}
	return lib, nil
}

// UpsertRating creates or replaces the rating for a song.
func (c *HTTPClient) UpsertRating(ctx context.Context, cred string, rating models.Rating) error {
	body := ratingPayload{SongID: rating.SongID, Value: rating.Value, RatedAt: formatTime(rating.RatedAt)}
	return c.do(ctx, cred, http.MethodPut, "/api/ratings/"+url.PathEscape(rating.SongID), body, nil)
}

// DeleteRating removes the rating for a song.
func (c *HTTPClient) DeleteRating(ctx context.Context, cred, songID string) error {
	return c.do(ctx, cred, http.MethodDelete, "/api/ratings/"+url.PathEscape(songID), nil, nil)
}

// UpsertTheme creates or updates a theme and returns the stored record.
func (c *HTTPClient) UpsertTheme(ctx context.Context, cred string, theme models.Theme) (models.Theme, error) {
	body := themePayload{
		ID:          theme.ID,
		Name:        theme.Name,
		Color:       theme.Color,
		Description: theme.Description,
		CreatedAt:   formatTime(theme.CreatedAt),
	}
	var stored themePayload
	if err := c.do(ctx, cred, http.MethodPost, "/api/themes", body, &stored); err != nil {
		return models.Theme{}, err
	}
	return stored.toModel(), nil
}

// DeleteTheme removes a theme.
func (c *HTTPClient) DeleteTheme(ctx context.Context, cred, themeID string) error {
	return c.do(ctx, cred, http.MethodDelete, "/api/themes/"+url.PathEscape(themeID), nil, nil)
}

// AssignTheme links a theme to a song.
func (c *HTTPClient) AssignTheme(ctx context.Context, cred, songID, themeID string) error {
	path := "/api/songs/" + url.PathEscape(songID) + "/themes/" + url.PathEscape(themeID)
	return c.do(ctx, cred, http.MethodPut, path, nil, nil)
}

// UnassignTheme removes a theme link from a song.
func (c *HTTPClient) UnassignTheme(ctx context.Context, cred, songID, themeID string) error {
	path := "/api/songs/" + url.PathEscape(songID) + "/themes/" + url.PathEscape(themeID)
	return c.do(ctx, cred, http.MethodDelete, path, nil, nil)
}

// UpsertPlaylist creates or updates a playlist and returns the stored record.
func (c *HTTPClient) UpsertPlaylist(ctx context.Context, cred string, playlist models.Playlist) (models.Playlist, error) {
	body := playlistPayload{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		SongIDs:     playlist.SongIDs,
		Filters:     playlist.Filters,
		Starred:     playlist.Starred,
		CreatedAt:   formatTime(playlist.CreatedAt),
		UpdatedAt:   formatTime(playlist.UpdatedAt),
	}
	var stored playlistPayload
	if err := c.do(ctx, cred, http.MethodPost, "/api/playlists", body, &stored); err != nil {
		return models.Playlist{}, err
	}
	return stored.toModel(), nil
}

// DeletePlaylist removes a playlist.
func (c *HTTPClient) DeletePlaylist(ctx context.Context, cred, playlistID string) error {
	return c.do(ctx, cred, http.MethodDelete, "/api/playlists/"+url.PathEscape(playlistID), nil, nil)
}

// UpsertSongs imports a batch of songs.
func (c *HTTPClient) UpsertSongs(ctx context.Context, cred string, songs []models.Song) error {
	payload := make([]songPayload, 0, len(songs))
	for _, s := range songs {
		payload = append(payload, songPayload{
			ID:         s.ID,
			Title:      s.Title,
			Artist:     s.Artist,
			Album:      s.Album,
			Duration:   s.Duration,
			Thumbnail:  s.Thumbnail,
			Available:  s.Available,
			ImportedAt: formatTime(s.ImportedAt),
		})
	}
	return c.do(ctx, cred, http.MethodPost, "/api/songs", payload, nil)
}

// DeleteSong removes an imported song.
func (c *HTTPClient) DeleteSong(ctx context.Context, cred, songID string) error {
	return c.do(ctx, cred, http.MethodDelete, "/api/songs/"+url.PathEscape(songID), nil, nil)
}

// do performs one JSON request with the bearer credential and decodes the
// response into out when non-nil.
func (c *HTTPClient) do(ctx context.Context, cred, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return shared.ErrNotAuthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrAPIRequest, method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (s songPayload) toModel() models.Song {
	return models.Song{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		Album:      s.Album,
		Duration:   s.Duration,
		Thumbnail:  s.Thumbnail,
		Available:  s.Available,
		ImportedAt: parseTime(s.ImportedAt),
	}
}

func (t themePayload) toModel() models.Theme {
	return models.Theme{
		ID:          t.ID,
		Name:        t.Name,
		Color:       t.Color,
		Description: t.Description,
		CreatedAt:   parseTime(t.CreatedAt),
	}
}

func (p playlistPayload) toModel() models.Playlist {
	return models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		SongIDs:     p.SongIDs,
		Filters:     p.Filters,
		Starred:     p.Starred,
		CreatedAt:   parseTime(p.CreatedAt),
		UpdatedAt:   parseTime(p.UpdatedAt),
	}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
