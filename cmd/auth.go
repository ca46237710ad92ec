package main

import (
	"context"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in against the active backend and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	email := cmd.String("email")
	password := cmd.String("password")

	r.logger.Info("signing in", "email", email, "backend", r.container.Kind)

	user, err := r.container.Auth.SignIn(ctx, auth.Credentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.logger.Info("signed in", "user", user.ID)
	return r.writePlain("✓ Signed in as %s (%s)\n", user.Handle(), user.Email)
}

// AuthRegister creates an account and signs in as it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	data := auth.SignUpData{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		Name:     cmd.String("name"),
		Surname:  cmd.String("surname"),
	}

	r.logger.Info("registering account", "email", data.Email, "backend", r.container.Kind)

	user, err := r.container.Auth.SignUp(ctx, data)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.logger.Info("account created", "user", user.ID)
	return r.writePlain("✓ Account created, signed in as %s\n", user.Handle())
}

// AuthLogout signs out and drops the persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	if err := r.container.Auth.SignOut(ctx); err != nil {
		return err
	}

	r.logger.Info("signed out")
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami prints the signed-in user's profile.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	user, err := r.container.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return r.writePlain("Not signed in\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("Signed in as: %s\n", user.Handle())
	r.writePlain("Email: %s\n", user.Email)
	if user.DisplayName != "" {
		r.writePlain("Name: %s\n", user.DisplayName)
	}
	r.writePlain("Followers: %d, Following: %d, Playlists: %d\n",
		len(user.Followers), len(user.Following), len(user.PlaylistIDs))
	return nil
}
