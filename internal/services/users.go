package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Rafamp34/soundstream/internal/auth"
	"github.com/Rafamp34/soundstream/internal/models"
	"github.com/Rafamp34/soundstream/internal/repositories"
	"github.com/Rafamp34/soundstream/internal/shared"
)

// UserService implements profile and social-graph use cases. state may be
// nil; when set, mutations of the signed-in user push the fresh entity into
// the holder so subscribers see profile changes immediately.
type UserService struct {
	users  repositories.Repository[models.User, models.UserPatch]
	state  *auth.State
	logger *log.Logger
}

func NewUserService(
	users repositories.Repository[models.User, models.UserPatch],
	state *auth.State,
	logger *log.Logger,
) *UserService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &UserService{users: users, state: state, logger: shared.WithLogger(logger, "service", "users")}
}

// Get fetches one user; a missing id is [shared.ErrUserNotFound].
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	return *user, nil
}

// Search finds users by handle.
func (s *UserService) Search(ctx context.Context, username string) ([]models.User, error) {
	page, err := s.users.GetAll(ctx, 1, 25, repositories.SearchParams{"username": repositories.Eq(username)})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// UpdateProfile applies a partial profile update.
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return models.User{}, err
	}
	s.refreshIdentity(user)
	return user, nil
}

// Follow records the follow edge on both profiles. Following an already
// followed user is a no-op.
func (s *UserService) Follow(ctx context.Context, followerID, targetID string) (models.User, error) {
	if followerID == targetID {
		return models.User{}, fmt.Errorf("%w: cannot follow yourself", shared.ErrInvalidInput)
	}

	follower, err := s.Get(ctx, followerID)
	if err != nil {
		return models.User{}, err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return models.User{}, err
	}

	if contains(follower.Following, targetID) {
		return follower, nil
	}

	following := append(append([]string{}, follower.Following...), targetID)
	follower, err = s.users.Update(ctx, followerID, models.UserPatch{Following: &following})
	if err != nil {
		return models.User{}, err
	}

	followers := append(append([]string{}, target.Followers...), followerID)
	if _, err := s.users.Update(ctx, targetID, models.UserPatch{Followers: &followers}); err != nil {
		s.logger.Warn("failed to update target side of the follow edge", "target", targetID, "err", err)
	}

	s.refreshIdentity(follower)
	return follower, nil
}

// Unfollow removes the follow edge from both profiles.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID string) (models.User, error) {
	follower, err := s.Get(ctx, followerID)
	if err != nil {
		return models.User{}, err
	}

	if !contains(follower.Following, targetID) {
		return follower, nil
	}

	following := remove(follower.Following, targetID)
	follower, err = s.users.Update(ctx, followerID, models.UserPatch{Following: &following})
	if err != nil {
		return models.User{}, err
	}

	target, err := s.Get(ctx, targetID)
	if err == nil {
		followers := remove(target.Followers, followerID)
		if _, err := s.users.Update(ctx, targetID, models.UserPatch{Followers: &followers}); err != nil {
			s.logger.Warn("failed to update target side of the follow edge", "target", targetID, "err", err)
		}
	}

	s.refreshIdentity(follower)
	return follower, nil
}

// AttachPlaylist links a playlist to the user's profile.
func (s *UserService) AttachPlaylist(ctx context.Context, userID, playlistID string) (models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if contains(user.PlaylistIDs, playlistID) {
		return user, nil
	}

	ids := append(append([]string{}, user.PlaylistIDs...), playlistID)
	user, err = s.users.Update(ctx, userID, models.UserPatch{PlaylistIDs: &ids})
	if err != nil {
		return models.User{}, err
	}
	s.refreshIdentity(user)
	return user, nil
}

// DetachPlaylist unlinks a playlist from the user's profile.
func (s *UserService) DetachPlaylist(ctx context.Context, userID, playlistID string) (models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !contains(user.PlaylistIDs, playlistID) {
		return user, nil
	}

	ids := remove(user.PlaylistIDs, playlistID)
	user, err = s.users.Update(ctx, userID, models.UserPatch{PlaylistIDs: &ids})
	if err != nil {
		return models.User{}, err
	}
	s.refreshIdentity(user)
	return user, nil
}

// refreshIdentity pushes a mutated profile into the state holder when it
// belongs to the signed-in user.
func (s *UserService) refreshIdentity(user models.User) {
	if s.state == nil {
		return
	}
	if current := s.state.User(); current != nil && current.ID == user.ID {
		s.state.UpdateUser(user)
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
