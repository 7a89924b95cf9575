package mirror

import (
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/models"
)

func TestStore_Ratings(t *testing.T) {
	t.Run("save then read back", func(t *testing.T) {
		store := NewStore("user1")
		store.SaveRating(models.Rating{SongID: "song1", Value: 7, RatedAt: time.Now()})

		got, ok := store.Rating("song1")
		if !ok {
			t.Fatal("expected rating to be present")
		}
		if got.Value != 7 {
			t.Errorf("rating value = %d, want 7", got.Value)
		}
	})

	t.Run("save replaces existing", func(t *testing.T) {
		store := NewStore("user1")
		store.SaveRating(models.Rating{SongID: "song1", Value: 3})
		store.SaveRating(models.Rating{SongID: "song1", Value: 9})

		got, _ := store.Rating("song1")
		if got.Value != 9 {
			t.Errorf("rating value = %d, want 9", got.Value)
		}
		if len(store.Ratings()) != 1 {
			t.Errorf("ratings count = %d, want 1", len(store.Ratings()))
		}
	})

	t.Run("delete absent rating is a no-op", func(t *testing.T) {
		store := NewStore("user1")
		store.DeleteRating("missing")
		if len(store.Ratings()) != 0 {
			t.Error("store should stay empty")
		}
	})
}

func TestStore_Links(t *testing.T) {
	store := NewStore("user1")
	store.SaveLink(models.ThemeLink{SongID: "s1", ThemeID: "t1"})
	store.SaveLink(models.ThemeLink{SongID: "s1", ThemeID: "t2"})
	store.SaveLink(models.ThemeLink{SongID: "s2", ThemeID: "t1"})
	// duplicate pair collapses
	store.SaveLink(models.ThemeLink{SongID: "s1", ThemeID: "t1"})

	if got := len(store.Links()); got != 3 {
		t.Errorf("links count = %d, want 3", got)
	}
	if got := len(store.LinksForSong("s1")); got != 2 {
		t.Errorf("links for s1 = %d, want 2", got)
	}
	if got := len(store.LinksForTheme("t1")); got != 2 {
		t.Errorf("links for t1 = %d, want 2", got)
	}

	store.DeleteLink("s1", "t1")
	if _, ok := store.Link("s1", "t1"); ok {
		t.Error("link should be gone after delete")
	}
	if _, ok := store.Link("s1", "t2"); !ok {
		t.Error("unrelated link should survive delete")
	}
}

func TestStore_PlaylistOrdering(t *testing.T) {
	// Starred playlists sort first, then by descending creation time.
	store := NewStore("user1")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	store.SavePlaylist(models.Playlist{ID: "old", Name: "Old", CreatedAt: base})
	store.SavePlaylist(models.Playlist{ID: "new", Name: "New", CreatedAt: base.Add(2 * time.Hour)})
	store.SavePlaylist(models.Playlist{ID: "starred-old", Name: "Starred Old", Starred: true, CreatedAt: base.Add(-time.Hour)})
	store.SavePlaylist(models.Playlist{ID: "starred-new", Name: "Starred New", Starred: true, CreatedAt: base.Add(time.Hour)})

	got := store.Playlists()
	want := []string{"starred-new", "starred-old", "new", "old"}
	if len(got) != len(want) {
		t.Fatalf("playlists count = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("playlists[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestStore_PlaylistCopyOnRead(t *testing.T) {
	store := NewStore("user1")
	store.SavePlaylist(models.Playlist{ID: "p1", Name: "Mix", SongIDs: []string{"a", "b"}})

	got, _ := store.Playlist("p1")
	got.SongIDs[0] = "mutated"
	got.SongIDs = append(got.SongIDs, "c")

	fresh, _ := store.Playlist("p1")
	if fresh.SongIDs[0] != "a" || len(fresh.SongIDs) != 2 {
		t.Errorf("stored playlist mutated through read copy: %v", fresh.SongIDs)
	}
}

func TestStore_SongsNewestFirst(t *testing.T) {
	store := NewStore("user1")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store.SaveSongs([]models.Song{
		{ID: "a", Title: "A", ImportedAt: base},
		{ID: "b", Title: "B", ImportedAt: base.Add(time.Hour)},
	})

	songs := store.Songs()
	if songs[0].ID != "b" || songs[1].ID != "a" {
		t.Errorf("songs order = [%s %s], want [b a]", songs[0].ID, songs[1].ID)
	}
}

func TestStore_ReplaceDropsLocalRecords(t *testing.T) {
	// Snapshot application replaces tables, never merges.
	store := NewStore("user1")
	store.SaveRating(models.Rating{SongID: "local-only", Value: 5})

	store.ReplaceRatings([]models.Rating{{SongID: "remote", Value: 8}})

	if _, ok := store.Rating("local-only"); ok {
		t.Error("replace should drop records absent from the snapshot")
	}
	if _, ok := store.Rating("remote"); !ok {
		t.Error("replace should install snapshot records")
	}
}

func TestStore_Purge(t *testing.T) {
	store := NewStore("user1")
	store.SaveRating(models.Rating{SongID: "s", Value: 5})
	store.SaveTheme(models.Theme{ID: "t", Name: "T", Color: "#fff"})
	store.SaveLink(models.ThemeLink{SongID: "s", ThemeID: "t"})
	store.SaveSong(models.Song{ID: "s", Title: "S"})
	store.SavePlaylist(models.Playlist{ID: "p", Name: "P"})

	store.Purge()

	if len(store.Ratings()) != 0 || len(store.Themes()) != 0 || len(store.Links()) != 0 ||
		len(store.Songs()) != 0 || len(store.Playlists()) != 0 {
		t.Error("purge should clear all five tables")
	}
}
