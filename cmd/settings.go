package main

import (
	"context"
	"strings"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/urfave/cli/v3"
)

// SettingsNotifications shows or updates notification preferences.
// With no flags it prints the current preferences.
func (r *Runner) SettingsNotifications(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("reset") {
		if err := r.settings.SavePreferences(ctx, models.DefaultPreferences()); err != nil {
			return err
		}
		return r.writePlain("✓ Preferences reset to defaults\n")
	}

	prefs, err := r.settings.LoadPreferences()
	if err != nil {
		return err
	}

	if !cmd.IsSet("email") && !cmd.IsSet("sms") && !cmd.IsSet("species") {
		r.writePlainHeader("Notification Preferences")
		r.writePlain("Email: %s\n", onOff(prefs.EmailEnabled))
		r.writePlain("SMS:   %s\n", onOff(prefs.SMSEnabled))
		if len(prefs.Species) > 0 {
			r.writePlain("Species: %s\n", strings.Join(prefs.Species, ", "))
		} else {
			r.writePlain("Species: all\n")
		}
		return nil
	}

	if cmd.IsSet("email") {
		prefs.EmailEnabled = cmd.Bool("email")
	}
	if cmd.IsSet("sms") {
		prefs.SMSEnabled = cmd.Bool("sms")
	}
	if cmd.IsSet("species") {
		prefs.Species = cmd.StringSlice("species")
	}

	if err := r.settings.SavePreferences(ctx, prefs); err != nil {
		return err
	}

	return r.writePlain("✓ Preferences saved\n")
}

// SettingsProfile shows or updates the stored profile.
// With no flags it prints the current profile.
func (r *Runner) SettingsProfile(ctx context.Context, cmd *cli.Command) error {
	flags := []string{"first-name", "last-name", "email", "address", "bio"}
	updating := false
	for _, name := range flags {
		if cmd.IsSet(name) {
			updating = true
			break
		}
	}

	if !updating {
		profile := r.settings.LoadProfile()
		if profile == nil {
			return r.writePlain("No profile saved yet. Set one with --email and --first-name.\n")
		}
		r.writePlainHeader("Profile")
		r.writePlain("Name:    %s %s\n", profile.FirstName, profile.LastName)
		r.writePlain("Email:   %s\n", profile.Email)
		if profile.Address != "" {
			r.writePlain("Address: %s\n", profile.Address)
		}
		if profile.Bio != "" {
			r.writePlain("Bio:     %s\n", profile.Bio)
		}
		return nil
	}

	profile := r.settings.LoadProfile()
	if profile == nil {
		profile = &models.Profile{}
		if user := r.sessions.User(); user != nil {
			profile.Email = user.Email
			profile.FirstName = user.GivenName
			profile.LastName = user.FamilyName
		}
	}

	if cmd.IsSet("first-name") {
		profile.FirstName = cmd.String("first-name")
	}
	if cmd.IsSet("last-name") {
		profile.LastName = cmd.String("last-name")
	}
	if cmd.IsSet("email") {
		profile.Email = cmd.String("email")
	}
	if cmd.IsSet("address") {
		profile.Address = cmd.String("address")
	}
	if cmd.IsSet("bio") {
		profile.Bio = cmd.String("bio")
	}

	if err := r.settings.SaveProfile(*profile); err != nil {
		return err
	}

	return r.writePlain("✓ Profile saved\n")
}

// SettingsPassword changes the account password.
func (r *Runner) SettingsPassword(ctx context.Context, cmd *cli.Command) error {
	return r.settings.ChangePassword(cmd.String("current"), cmd.String("new"))
}

func onOff(enabled bool) string {
	if enabled {
		return "✓ on"
	}
	return "✗ off"
}
