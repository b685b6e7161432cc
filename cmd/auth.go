package main

import (
	"context"
	"time"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/urfave/cli/v3"
)

// AuthSignup registers a new account with the user pool.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	reg := models.Registration{
		Email:      cmd.String("email"),
		Password:   cmd.String("password"),
		GivenName:  cmd.String("given-name"),
		FamilyName: cmd.String("family-name"),
		Address:    cmd.String("address"),
	}

	r.logger.Info("registering account", "email", reg.Email)
	if err := r.gateway.Register(ctx, reg); err != nil {
		return err
	}

	r.writePlain("✓ Account created for %s\n", reg.Email)
	r.writePlain("Check your email for a verification code, then run:\n")
	r.writePlain("  birdtag auth confirm --code <code>\n")
	return nil
}

// AuthConfirm verifies a registration with the emailed code.
func (r *Runner) AuthConfirm(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	email := cmd.String("email")
	code := cmd.String("code")

	if err := r.gateway.ConfirmRegistration(ctx, email, code); err != nil {
		return err
	}

	r.writePlain("✓ Account confirmed\n")
	r.writePlain("Run 'birdtag auth login' to sign in.\n")
	return nil
}

// AuthResend requests a fresh confirmation code.
func (r *Runner) AuthResend(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	if err := r.gateway.ResendCode(ctx, cmd.String("email")); err != nil {
		return err
	}

	return r.writePlain("✓ Confirmation code sent\n")
}

// AuthLogin signs in and stores the session locally.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	email := cmd.String("email")
	password := cmd.String("password")

	r.logger.Info("signing in", "email", email)
	user, err := r.gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Logged in as %s\n", user.DisplayName())
}

// AuthLogout signs out and clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	if err := r.gateway.Logout(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Logged out\n")
}

// AuthStatus shows the current session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	user := r.sessions.User()
	if user == nil || r.sessions.Token() == "" {
		return r.writePlain("✗ Not logged in\n")
	}

	expiresAt := r.sessions.ExpiresAt()
	expired := !expiresAt.IsZero() && time.Now().After(expiresAt)

	r.writePlain("User: %s <%s>\n", user.DisplayName(), user.Email)
	if expired {
		r.writePlain("Session: ✗ Expired at %s, run 'birdtag auth login'\n", expiresAt.Format(time.RFC1123))
	} else if expiresAt.IsZero() {
		r.writePlain("Session: ✓ Active\n")
	} else {
		r.writePlain("Session: ✓ Active until %s\n", expiresAt.Format(time.RFC1123))
	}
	return nil
}
