package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/repository"
)

// GraphService owns follow edges between accounts.
type GraphService interface {
	Follow(ctx context.Context, viewer models.Identity, targetUsername string) error
	Unfollow(ctx context.Context, viewer models.Identity, targetUsername string) error
	Followers(ctx context.Context, username string) ([]models.AccountSummary, error)
	Following(ctx context.Context, username string) ([]models.AccountSummary, error)
	IsFollowing(ctx context.Context, viewer models.Identity, target *models.Account) (bool, error)
}

type graphService struct {
	u repository.AccountRepository
	f repository.FollowRepository
}

func NewGraphService(u repository.AccountRepository, f repository.FollowRepository) GraphService {
	return &graphService{
		u: u,
		f: f,
	}
}

func resolveAccount(ctx context.Context, u repository.AccountRepository, username string) (*models.Account, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, apperr.Validation("Username is required")
	}

	account, exists, err := u.GetByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists {
		return nil, apperr.NotFound("User not found")
	}
	return account, nil
}

func (s *graphService) Follow(ctx context.Context, viewer models.Identity, targetUsername string) error {
	if viewer.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}

	target, err := resolveAccount(ctx, s.u, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == viewer.AccountID {
		return apperr.Validation("You cannot follow yourself")
	}

	err = s.f.Follow(ctx, viewer.AccountID, target.ID)
	switch {
	case err == nil:
		slog.Info("follow edge created", "follower_id", viewer.AccountID, "following_id", target.ID)
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("You are already following this user")
	default:
		return storageError(err, "User not found")
	}
}

func (s *graphService) Unfollow(ctx context.Context, viewer models.Identity, targetUsername string) error {
	if viewer.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}

	target, err := resolveAccount(ctx, s.u, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == viewer.AccountID {
		return apperr.Conflict("You are not following this user")
	}

	err = s.f.Unfollow(ctx, viewer.AccountID, target.ID)
	switch {
	case err == nil:
		slog.Info("follow edge removed", "follower_id", viewer.AccountID, "following_id", target.ID)
		return nil
	case errors.Is(err, repository.ErrEdgeMissing):
		return apperr.Conflict("You are not following this user")
	default:
		return storageError(err, "User not found")
	}
}

func (s *graphService) Followers(ctx context.Context, username string) ([]models.AccountSummary, error) {
	account, err := resolveAccount(ctx, s.u, username)
	if err != nil {
		return nil, err
	}

	followers, err := s.f.ListFollowers(ctx, account.ID)
	if err != nil {
		return nil, storageError(err, "")
	}
	return followers, nil
}

func (s *graphService) Following(ctx context.Context, username string) ([]models.AccountSummary, error) {
	account, err := resolveAccount(ctx, s.u, username)
	if err != nil {
		return nil, err
	}

	following, err := s.f.ListFollowing(ctx, account.ID)
	if err != nil {
		return nil, storageError(err, "")
	}
	return following, nil
}

// IsFollowing is false for anonymous viewers and for the target itself.
func (s *graphService) IsFollowing(ctx context.Context, viewer models.Identity, target *models.Account) (bool, error) {
	if viewer.Anonymous() || target == nil || viewer.AccountID == target.ID {
		return false, nil
	}
	follows, err := s.f.IsFollowing(ctx, viewer.AccountID, target.ID)
	if err != nil {
		return false, storageError(err, "")
	}
	return follows, nil
}
