// package mirror implements the in-memory library mirror backing all reads.
//
// A Store is scoped to one signed-in user and owned by the session
// controller: it is constructed at login, hydrated from the remote snapshot,
// and discarded at logout. Reads and writes are synchronous and never touch
// the network; remote persistence happens elsewhere.
package mirror

import (
	"sort"
	"sync"

	"github.com/desertthunder/crate/internal/models"
)

// linkKey identifies a song/theme assignment.
type linkKey struct {
	songID  string
	themeID string
}

// Store holds the five entity tables for a single user.
//
// The mutex guards against the sync queue worker applying a hydration
// snapshot while the caller's goroutine reads or writes optimistically.
// Reads copy records out so callers can never alias table state.
type Store struct {
	mu     sync.RWMutex
	userID string

	ratings   map[string]models.Rating
	themes    map[string]models.Theme
	links     map[linkKey]models.ThemeLink
	songs     map[string]models.Song
	playlists map[string]models.Playlist
}

// NewStore creates an empty mirror store for the given user.
func NewStore(userID string) *Store {
	return &Store{
		userID:    userID,
		ratings:   make(map[string]models.Rating),
		themes:    make(map[string]models.Theme),
		links:     make(map[linkKey]models.ThemeLink),
		songs:     make(map[string]models.Song),
		playlists: make(map[string]models.Playlist),
	}
}

// UserID returns the id of the user this store belongs to.
func (s *Store) UserID() string {
	return s.userID
}

// Rating returns the rating for a song, if present.
func (s *Store) Rating(songID string) (models.Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[songID]
	return r, ok
}

// Ratings returns all ratings in the store.
func (s *Store) Ratings() []models.Rating {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Rating, 0, len(s.ratings))
	for _, r := range s.ratings {
		out = append(out, r)
	}
	return out
}

// SaveRating inserts or replaces the rating for a song.
func (s *Store) SaveRating(r models.Rating) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[r.SongID] = r
}

// DeleteRating removes the rating for a song. Removing an absent rating is a
// no-op.
func (s *Store) DeleteRating(songID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ratings, songID)
}

// Theme returns a theme by id, if present.
func (s *Store) Theme(themeID string) (models.Theme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.themes[themeID]
	return t, ok
}

// Themes returns all themes sorted by creation time, oldest first.
func (s *Store) Themes() []models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Theme, 0, len(s.themes))
	for _, t := range s.themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// SaveTheme inserts or replaces a theme.
func (s *Store) SaveTheme(t models.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[t.ID] = t
}

// DeleteTheme removes a theme by id.
func (s *Store) DeleteTheme(themeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.themes, themeID)
}

// Link returns the assignment for a (song, theme) pair, if present.
func (s *Store) Link(songID, themeID string) (models.ThemeLink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[linkKey{songID, themeID}]
	return l, ok
}

// Links returns all theme assignments.
func (s *Store) Links() []models.ThemeLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ThemeLink, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	return out
}

// LinksForSong returns every theme assignment referencing the song.
func (s *Store) LinksForSong(songID string) []models.ThemeLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ThemeLink
	for k, l := range s.links {
		if k.songID == songID {
			out = append(out, l)
		}
	}
	return out
}

// LinksForTheme returns every theme assignment referencing the theme.
func (s *Store) LinksForTheme(themeID string) []models.ThemeLink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ThemeLink
	for k, l := range s.links {
		if k.themeID == themeID {
			out = append(out, l)
		}
	}
	return out
}

// SaveLink inserts or replaces a theme assignment. Duplicate (song, theme)
// pairs collapse into a single entry.
func (s *Store) SaveLink(l models.ThemeLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[linkKey{l.SongID, l.ThemeID}] = l
}

// DeleteLink removes the assignment for a (song, theme) pair.
func (s *Store) DeleteLink(songID, themeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, linkKey{songID, themeID})
}

// Song returns an imported song by id, if present.
func (s *Store) Song(songID string) (models.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	song, ok := s.songs[songID]
	return song, ok
}

// Songs returns all imported songs sorted by import time, newest first.
func (s *Store) Songs() []models.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Song, 0, len(s.songs))
	for _, song := range s.songs {
		out = append(out, song)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ImportedAt.After(out[j].ImportedAt)
	})
	return out
}

// SaveSong inserts or replaces an imported song.
func (s *Store) SaveSong(song models.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs[song.ID] = song
}

// SaveSongs inserts or replaces a batch of imported songs.
func (s *Store) SaveSongs(songs []models.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, song := range songs {
		s.songs[song.ID] = song
	}
}

// DeleteSong removes an imported song by id. Playlist references to the song
// are left intact.
func (s *Store) DeleteSong(songID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.songs, songID)
}

// Playlist returns a playlist by id, if present. The returned record carries
// its own copy of the song id sequence.
func (s *Store) Playlist(playlistID string) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, false
	}
	return clonePlaylist(p), true
}

// Playlists returns all playlists, starred first, then by descending
// creation time. This ordering is a contract: it drives default display
// order downstream.
func (s *Store) Playlists() []models.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Playlist, 0, len(s.playlists))
	for _, p := range s.playlists {
		out = append(out, clonePlaylist(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Starred != out[j].Starred {
			return out[i].Starred
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SavePlaylist inserts or replaces a playlist, storing its own copy of the
// song id sequence.
func (s *Store) SavePlaylist(p models.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists[p.ID] = clonePlaylist(p)
}

// DeletePlaylist removes a playlist by id.
func (s *Store) DeletePlaylist(playlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.playlists, playlistID)
}

// ReplaceRatings swaps the ratings table for the snapshot contents.
func (s *Store) ReplaceRatings(ratings []models.Rating) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = make(map[string]models.Rating, len(ratings))
	for _, r := range ratings {
		s.ratings[r.SongID] = r
	}
}

// ReplaceThemes swaps the themes table for the snapshot contents.
func (s *Store) ReplaceThemes(themes []models.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes = make(map[string]models.Theme, len(themes))
	for _, t := range themes {
		s.themes[t.ID] = t
	}
}

// ReplaceLinks swaps the theme assignment table for the snapshot contents.
func (s *Store) ReplaceLinks(links []models.ThemeLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = make(map[linkKey]models.ThemeLink, len(links))
	for _, l := range links {
		s.links[linkKey{l.SongID, l.ThemeID}] = l
	}
}

// ReplaceSongs swaps the imported songs table for the snapshot contents.
func (s *Store) ReplaceSongs(songs []models.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs = make(map[string]models.Song, len(songs))
	for _, song := range songs {
		s.songs[song.ID] = song
	}
}

// ReplacePlaylists swaps the playlists table for the snapshot contents.
func (s *Store) ReplacePlaylists(playlists []models.Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists = make(map[string]models.Playlist, len(playlists))
	for _, p := range playlists {
		s.playlists[p.ID] = clonePlaylist(p)
	}
}

// Purge clears all five tables. Called at logout before the store is
// discarded.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = make(map[string]models.Rating)
	s.themes = make(map[string]models.Theme)
	s.links = make(map[linkKey]models.ThemeLink)
	s.songs = make(map[string]models.Song)
	s.playlists = make(map[string]models.Playlist)
}

func clonePlaylist(p models.Playlist) models.Playlist {
	dup := p
	if len(p.SongIDs) > 0 {
		dup.SongIDs = make([]string, len(p.SongIDs))
		copy(dup.SongIDs, p.SongIDs)
	}
	if len(p.Filters) > 0 {
		dup.Filters = make(map[string]any, len(p.Filters))
		for k, v := range p.Filters {
			dup.Filters[k] = v
		}
	}
	return dup
}
