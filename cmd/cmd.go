// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "rollback",
				Usage: "Roll back the most recent database migration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml template to fill in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination for the config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles account registration and session management.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your account and session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Email address (used as username)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Password (minimum 8 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "given-name",
						Usage:    "First name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "family-name",
						Usage: "Last name",
					},
					&cli.StringFlag{
						Name:  "address",
						Usage: "Postal address",
					},
				},
				Action: r.AuthSignup,
			},
			{
				Name:  "confirm",
				Usage: "Confirm a registration with the emailed code",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Email address (defaults to the pending signup)",
					},
					&cli.StringFlag{
						Name:     "code",
						Usage:    "Verification code from the confirmation email",
						Required: true,
					},
				},
				Action: r.AuthConfirm,
			},
			{
				Name:  "resend",
				Usage: "Resend the confirmation code",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Email address (defaults to the pending signup)",
					},
				},
				Action: r.AuthResend,
			},
			{
				Name:  "login",
				Usage: "Sign in and store the session locally",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state",
				Action: r.AuthStatus,
			},
		},
	}
}

// uploadCommand handles media uploads and upload history.
func uploadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload media files for tagging",
		ArgsUsage: "<file> [file...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output outcomes as JSON",
			},
		},
		Action: r.Upload,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "List previously uploaded files",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UploadHistory,
			},
		},
	}
}

// searchCommand handles tag-based queries of the media collection.
func searchCommand(r *Runner) *cli.Command {
	formatFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, csv or markdown",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write results to a file instead of stdout",
		},
	}

	return &cli.Command{
		Name:  "search",
		Usage: "Search tagged media",
		Commands: []*cli.Command{
			{
				Name:      "tags",
				Usage:     "Find files tagged with all given species",
				ArgsUsage: "<species> [species...]",
				Flags:     formatFlags,
				Action:    r.SearchTags,
			},
			{
				Name:      "counts",
				Usage:     "Find files with minimum counts per species, e.g. crow,3",
				ArgsUsage: "<species,count> [species,count...]",
				Flags:     formatFlags,
				Action:    r.SearchCounts,
			},
			{
				Name:      "thumbnail",
				Usage:     "Resolve a thumbnail URL to its full-size file",
				ArgsUsage: "<thumbnail-url>",
				Flags:     formatFlags,
				Action:    r.SearchThumbnail,
			},
			{
				Name:  "species",
				Usage: "List species known to the tagging model",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Bypass the local cache",
					},
				},
				Action: r.SearchSpecies,
			},
		},
	}
}

// tagsCommand handles manual tag edits on files.
func tagsCommand(r *Runner) *cli.Command {
	urlFlag := &cli.StringSliceFlag{
		Name:     "url",
		Aliases:  []string{"u"},
		Usage:    "File URL to modify (repeatable)",
		Required: true,
	}

	return &cli.Command{
		Name:  "tags",
		Usage: "Add or remove tags on uploaded files",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add species tags to files",
				ArgsUsage: "<species[,count]> [species[,count]...]",
				Flags:     []cli.Flag{urlFlag},
				Action:    r.TagsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove species tags from files",
				ArgsUsage: "<species[,count]> [species[,count]...]",
				Flags:     []cli.Flag{urlFlag},
				Action:    r.TagsRemove,
			},
		},
	}
}

// filesCommand handles bulk file operations.
func filesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "Delete or download uploaded files",
		Commands: []*cli.Command{
			{
				Name:      "delete",
				Usage:     "Permanently delete files from storage",
				ArgsUsage: "<url> [url...]",
				Action:    r.FilesDelete,
			},
			{
				Name:      "download",
				Usage:     "Download files to a local directory",
				ArgsUsage: "<url> [url...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Destination directory",
						Value:   "downloads",
					},
				},
				Action: r.FilesDownload,
			},
		},
	}
}

// settingsCommand handles notification preferences and profile data.
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Manage preferences and profile",
		Commands: []*cli.Command{
			{
				Name:  "notifications",
				Usage: "Show or update notification preferences",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "email",
						Usage: "Enable or disable email notifications",
					},
					&cli.BoolFlag{
						Name:  "sms",
						Usage: "Enable or disable SMS notifications",
					},
					&cli.StringSliceFlag{
						Name:  "species",
						Usage: "Species to be notified about (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Restore default preferences",
					},
				},
				Action: r.SettingsNotifications,
			},
			{
				Name:  "profile",
				Usage: "Show or update your profile",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "first-name",
						Usage: "First name",
					},
					&cli.StringFlag{
						Name:  "last-name",
						Usage: "Last name",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Contact email",
					},
					&cli.StringFlag{
						Name:  "address",
						Usage: "Postal address",
					},
					&cli.StringFlag{
						Name:  "bio",
						Usage: "Short bio",
					},
				},
				Action: r.SettingsProfile,
			},
			{
				Name:  "password",
				Usage: "Change your password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "current",
						Usage:    "Current password",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "new",
						Usage:    "New password",
						Required: true,
					},
				},
				Action: r.SettingsPassword,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing tagged media",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory for downloaded files",
				Value:   "downloads",
			},
		},
		Action: r.TUI,
	}
}
