// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
	}
}

// setupCommand initializes the config file and outbox database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config file and initialize the outbox database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// loginCommand stores the sync identity in the config file
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Store the credential used for library sync",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Usage: "Bearer credential", Required: true},
			&cli.StringFlag{Name: "user", Usage: "User ID", Required: true},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Login,
	}
}

// logoutCommand clears the stored sync identity
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Clear the stored sync credential",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Logout,
	}
}

// rateCommand handles song rating operations
func rateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rate",
		Usage: "Rate songs 1-10",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set the rating for a song",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "song", Usage: "Song ID", Required: true},
					&cli.IntFlag{Name: "value", Usage: "Rating value (1-10)", Required: true},
				},
				Action: r.RateSet,
			},
			{
				Name:  "rm",
				Usage: "Remove the rating for a song",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "song", Usage: "Song ID", Required: true},
				},
				Action: r.RateRemove,
			},
		},
	}
}

// themeCommand handles theme operations
func themeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Tag songs with themes",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a theme",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Theme name", Required: true},
					&cli.StringFlag{Name: "color", Usage: "Display color token", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Theme description"},
				},
				Action: r.ThemeCreate,
			},
			{
				Name:  "rm",
				Usage: "Delete a theme and all its assignments",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Theme ID", Required: true},
				},
				Action: r.ThemeDelete,
			},
			{
				Name:  "assign",
				Usage: "Assign or unassign a theme on a song",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "song", Usage: "Song ID", Required: true},
					&cli.StringFlag{Name: "theme", Usage: "Theme ID", Required: true},
					&cli.BoolFlag{Name: "remove", Usage: "Remove the assignment instead"},
				},
				Action: r.ThemeAssign,
			},
			{
				Name:   "ls",
				Usage:  "List themes",
				Flags:  outputFlags(),
				Action: r.ThemeList,
			},
		},
	}
}

// songsCommand handles imported song operations
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Manage imported songs",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import songs from a JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "JSON file of songs", Required: true},
				},
				Action: r.SongsImport,
			},
			{
				Name:   "ls",
				Usage:  "List imported songs",
				Flags:  outputFlags(),
				Action: r.SongsList,
			},
			{
				Name:  "rm",
				Usage: "Delete a song, its rating, and its theme links",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Song ID", Required: true},
				},
				Action: r.SongDelete,
			},
		},
	}
}

// playlistCommand handles playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Playlist name", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Playlist description"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "add",
				Usage: "Append songs to a playlist (duplicates skipped)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Playlist ID", Required: true},
					&cli.StringSliceFlag{Name: "song", Usage: "Song ID (repeatable)", Required: true},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:  "star",
				Usage: "Star or unstar a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Playlist ID", Required: true},
					&cli.BoolFlag{Name: "remove", Usage: "Unstar instead"},
				},
				Action: r.PlaylistStar,
			},
			{
				Name:   "ls",
				Usage:  "List playlists, starred first",
				Flags:  outputFlags(),
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist's songs in order",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Playlist ID", Required: true},
				}, outputFlags()...),
				Action: r.PlaylistShow,
			},
		},
	}
}

// statusCommand prints the outbox journal
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show recent sync commands and their delivery state",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Maximum commands to show", Value: 20},
		}, outputFlags()...),
		Action: r.Status,
	}
}
