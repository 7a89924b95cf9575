// package models defines the record types held in the local library mirror.
package models

import (
	"fmt"
	"time"
)

// Rating bounds. Ratings outside this range are rejected before any local or
// remote mutation happens.
const (
	MinRating = 1
	MaxRating = 10
)

// Rating represents a user's rating of a single song.
type Rating struct {
	SongID  string
	Value   int // MinRating..MaxRating inclusive
	RatedAt time.Time
}

// Validate checks that the rating value is inside the allowed range.
func (r Rating) Validate() error {
	if r.SongID == "" {
		return fmt.Errorf("rating requires a song id")
	}
	if r.Value < MinRating || r.Value > MaxRating {
		return fmt.Errorf("rating %d out of range [%d, %d]", r.Value, MinRating, MaxRating)
	}
	return nil
}

// Theme represents a user-defined tag grouping songs by mood or purpose.
type Theme struct {
	ID          string
	Name        string
	Color       string // display token, e.g. "#ff0000"
	Description string
	CreatedAt   time.Time
}

// Validate checks required theme fields.
func (t Theme) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("theme requires a name")
	}
	if t.Color == "" {
		return fmt.Errorf("theme requires a color")
	}
	return nil
}

// ThemeLink assigns a theme to a song. The (SongID, ThemeID) pair is unique.
type ThemeLink struct {
	SongID     string
	ThemeID    string
	AssignedAt time.Time
}

// Song represents a track imported into the user's library.
//
// The id is stable across re-imports; deduplication happens upstream of the
// mirror.
type Song struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	Duration   int // seconds
	Thumbnail  string
	Available  bool
	ImportedAt time.Time
}

// Validate checks required song fields.
func (s Song) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("song requires an id")
	}
	if s.Title == "" {
		return fmt.Errorf("song requires a title")
	}
	return nil
}

// Playlist represents an ordered collection of songs.
//
// SongIDs order is meaningful (playback and export order). Entries may
// reference songs no longer present in the library; the engine never prunes
// dangling references.
type Playlist struct {
	ID          string
	Name        string
	Description string
	SongIDs     []string
	Filters     map[string]any // opaque to the engine
	Starred     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks required playlist fields.
func (p Playlist) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("playlist requires a name")
	}
	return nil
}

// ContainsSong reports whether the playlist already references the song.
func (p Playlist) ContainsSong(songID string) bool {
	for _, id := range p.SongIDs {
		if id == songID {
			return true
		}
	}
	return false
}

// Library is a complete point-in-time snapshot of one user's catalog as
// returned by the remote store.
type Library struct {
	Songs     []Song
	Ratings   []Rating
	Themes    []Theme
	Links     []ThemeLink
	Playlists []Playlist
}
