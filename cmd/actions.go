// submodule actions implements the command handlers behind cmd definitions
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a config file and runs outbox database migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		if err := shared.CreateConfigFile(path); err != nil {
			return err
		}
		r.writePlain("created %s\n", path)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.writePlain("outbox database ready at %s\n", r.config.Database.Path)
	return nil
}

// Login stores the bearer credential and user id in the config file. Every
// subsequent command starts its session with this identity.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	config, err := shared.LoadConfig(path)
	if err != nil {
		config = shared.DefaultConfig()
	}

	config.Auth.Token = cmd.String("token")
	config.Auth.UserID = cmd.String("user")
	if err := shared.SaveConfig(path, config); err != nil {
		return err
	}

	r.config.Auth = config.Auth
	return r.writePlain("signed in as %s\n", config.Auth.UserID)
}

// Logout clears the stored credential.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}

	config.Auth = shared.AuthConfig{}
	if err := shared.SaveConfig(path, config); err != nil {
		return err
	}

	r.config.Auth = shared.AuthConfig{}
	return r.writePlain("signed out\n")
}

// RateSet rates a song 1-10.
func (r *Runner) RateSet(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		songID := cmd.String("song")
		value := int(cmd.Int("value"))
		if err := engine.SetRating(songID, value); err != nil {
			return err
		}
		return r.writePlain("rated %s %d/10\n", songID, value)
	})
}

// RateRemove clears the rating for a song.
func (r *Runner) RateRemove(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		if err := engine.RemoveRating(cmd.String("song")); err != nil {
			return err
		}
		return r.writePlain("rating removed\n")
	})
}

// ThemeCreate creates a theme.
func (r *Runner) ThemeCreate(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		theme, err := engine.CreateTheme(cmd.String("name"), cmd.String("color"), cmd.String("description"))
		if err != nil {
			return err
		}
		return r.writePlain("created theme %s (%s)\n", theme.Name, theme.ID)
	})
}

// ThemeDelete deletes a theme and all its song assignments.
func (r *Runner) ThemeDelete(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		if err := engine.DeleteTheme(cmd.String("id")); err != nil {
			return err
		}
		return r.writePlain("theme deleted\n")
	})
}

// ThemeAssign links or unlinks a theme and a song.
func (r *Runner) ThemeAssign(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		songID, themeID := cmd.String("song"), cmd.String("theme")
		if cmd.Bool("remove") {
			if err := engine.UnassignTheme(songID, themeID); err != nil {
				return err
			}
			return r.writePlain("unassigned %s from %s\n", themeID, songID)
		}
		if err := engine.AssignTheme(songID, themeID); err != nil {
			return err
		}
		return r.writePlain("assigned %s to %s\n", themeID, songID)
	})
}

// ThemeList prints all themes.
func (r *Runner) ThemeList(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		themes := engine.Themes()
		if cmd.Bool("json") {
			return r.writeJSON(themes, cmd.Bool("pretty"))
		}
		for _, t := range themes {
			r.writePlain("%s  %s  %s\n", t.ID, t.Color, t.Name)
		}
		return nil
	})
}

// SongsImport imports songs from a JSON file.
func (r *Runner) SongsImport(ctx context.Context, cmd *cli.Command) error {
	data, err := os.ReadFile(cmd.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var songs []models.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return r.withSession(ctx, func(engine *library.Engine) error {
		if err := engine.ImportSongs(songs); err != nil {
			return err
		}
		return r.writePlain("imported %d songs\n", len(songs))
	})
}

// SongsList prints imported songs, newest first.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		songs := engine.Songs()
		if cmd.Bool("json") {
			return r.writeJSON(songs, cmd.Bool("pretty"))
		}
		for _, s := range songs {
			rating := "-"
			if rec, ok := engine.Rating(s.ID); ok {
				rating = fmt.Sprintf("%d/10", rec.Value)
			}
			r.writePlain("%s  %-6s  %s - %s\n", s.ID, rating, s.Artist, s.Title)
		}
		return nil
	})
}

// SongDelete removes a song along with its rating and theme links.
func (r *Runner) SongDelete(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		if err := engine.DeleteSong(cmd.String("id")); err != nil {
			return err
		}
		return r.writePlain("song deleted\n")
	})
}

// PlaylistCreate creates a playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		playlist, err := engine.CreatePlaylist(cmd.String("name"), cmd.String("description"), nil)
		if err != nil {
			return err
		}
		return r.writePlain("created playlist %s (%s)\n", playlist.Name, playlist.ID)
	})
}

// PlaylistAdd appends songs to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		id := cmd.String("id")
		songs := cmd.StringSlice("song")
		if err := engine.AddPlaylistSongs(id, songs); err != nil {
			return err
		}
		return r.writePlain("added %d songs\n", len(songs))
	})
}

// PlaylistStar toggles the starred flag on a playlist.
func (r *Runner) PlaylistStar(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		if err := engine.SetPlaylistStarred(cmd.String("id"), !cmd.Bool("remove")); err != nil {
			return err
		}
		return r.writePlain("playlist updated\n")
	})
}

// PlaylistList prints playlists, starred first then newest first.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		playlists := engine.Playlists()
		if cmd.Bool("json") {
			return r.writeJSON(playlists, cmd.Bool("pretty"))
		}
		for _, p := range playlists {
			star := " "
			if p.Starred {
				star = "*"
			}
			r.writePlain("%s %s  %d songs  %s\n", star, p.ID, len(p.SongIDs), p.Name)
		}
		return nil
	})
}

// PlaylistShow prints a playlist's songs in playback order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	return r.withSession(ctx, func(engine *library.Engine) error {
		songs, err := engine.PlaylistSongs(cmd.String("id"))
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(songs, cmd.Bool("pretty"))
		}
		for i, s := range songs {
			r.writePlain("%2d. %s - %s\n", i+1, s.Artist, s.Title)
		}
		return nil
	})
}

// Status prints recent outbox commands and their delivery state.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	commands, err := r.journal.List(r.config.Auth.UserID, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(commands, cmd.Bool("pretty"))
	}
	for _, c := range commands {
		line := fmt.Sprintf("#%-5d %-8s %s.%s", c.Sequence, c.Status, c.Entity, c.Op)
		if c.LastError != "" {
			line += "  (" + c.LastError + ")"
		}
		r.writePlain("%s\n", line)
	}
	return nil
}
