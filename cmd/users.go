package main

import (
	"context"
	"fmt"

	"github.com/Rafamp34/soundstream/internal/shared"
	"github.com/urfave/cli/v3"
)

// UsersSearch searches users by username.
func (r *Runner) UsersSearch(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	users, err := r.users.Search(ctx, username)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}

	if len(users) == 0 {
		return r.writePlain("No users matched %q\n", username)
	}

	r.writePlain("Found %d user(s):\n\n", len(users))
	for i, user := range users {
		r.writePlain("%d. %s", i+1, user.Handle())
		if user.DisplayName != "" {
			r.writePlain(" (%s)", user.DisplayName)
		}
		r.writePlain("\n   ID: %s\n", user.ID)
	}
	return nil
}

// UsersShow prints a user profile.
func (r *Runner) UsersShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	user, err := r.users.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlainHeader(user.Handle())
	if user.DisplayName != "" {
		r.writePlain("Name: %s\n", user.DisplayName)
	}
	if user.Email != "" {
		r.writePlain("Email: %s\n", user.Email)
	}
	r.writePlain("Followers: %d\n", len(user.Followers))
	r.writePlain("Following: %d\n", len(user.Following))
	r.writePlain("Playlists: %d\n", len(user.PlaylistIDs))
	return nil
}

// UsersFollow makes the signed-in user follow the target.
func (r *Runner) UsersFollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	targetID := cmd.StringArg("id")
	if targetID == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	userID, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	// Follow returns the refreshed follower, so the target is resolved
	// separately for the confirmation line.
	target, err := r.users.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if _, err := r.users.Follow(ctx, userID, targetID); err != nil {
		return err
	}

	return r.writePlain("✓ Following %s\n", target.Handle())
}

// UsersUnfollow makes the signed-in user unfollow the target.
func (r *Runner) UsersUnfollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}

	targetID := cmd.StringArg("id")
	if targetID == "" {
		return fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	userID, err := r.currentUser(ctx)
	if err != nil {
		return err
	}

	target, err := r.users.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if _, err := r.users.Unfollow(ctx, userID, targetID); err != nil {
		return err
	}

	return r.writePlain("✓ Unfollowed %s\n", target.Handle())
}
