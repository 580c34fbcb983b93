package service

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/repository"
	"github.com/maheshrc27/social-api/internal/transfer"
)

type UserService interface {
	CurrentProfile(ctx context.Context, viewer models.Identity) (*transfer.Profile, error)
	PublicProfile(ctx context.Context, viewer models.Identity, username string) (*transfer.Profile, error)
	UpdateProfile(ctx context.Context, viewer models.Identity, pu *transfer.ProfileUpdate, file *multipart.FileHeader) (*models.Account, error)
	Remove(ctx context.Context, viewer models.Identity, username string) error
	List(ctx context.Context, viewer models.Identity) ([]*models.Account, error)
}

type userService struct {
	u       repository.AccountRepository
	f       repository.FollowRepository
	p       repository.PostRepository
	feed    FeedService
	store   ObjectStore
	cleaner MediaCleaner
}

func NewUserService(
	u repository.AccountRepository,
	f repository.FollowRepository,
	p repository.PostRepository,
	feed FeedService,
	store ObjectStore,
	cleaner MediaCleaner) UserService {
	return &userService{
		u:       u,
		f:       f,
		p:       p,
		feed:    feed,
		store:   store,
		cleaner: cleaner,
	}
}

func (s *userService) CurrentProfile(ctx context.Context, viewer models.Identity) (*transfer.Profile, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}

	account, exists, err := s.u.GetByID(ctx, viewer.AccountID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists {
		slog.Info("token subject no longer exists", "account_id", viewer.AccountID)
		return nil, apperr.NotFound("User not found")
	}

	profile, err := s.counts(ctx, account)
	if err != nil {
		return nil, err
	}
	profile.Posts, err = s.feed.AccountPosts(ctx, viewer, account)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// PublicProfile returns the account with counts. Posts are included only when
// the viewer may list them, otherwise the list is empty.
func (s *userService) PublicProfile(ctx context.Context, viewer models.Identity, username string) (*transfer.Profile, error) {
	account, err := resolveAccount(ctx, s.u, username)
	if err != nil {
		return nil, err
	}

	profile, err := s.counts(ctx, account)
	if err != nil {
		return nil, err
	}

	profile.Posts = []*models.EnrichedPost{}
	posts, err := s.feed.AccountPosts(ctx, viewer, account)
	switch {
	case err == nil:
		profile.Posts = posts
	case errors.Is(err, apperr.ErrForbidden):
	default:
		return nil, err
	}
	return profile, nil
}

func (s *userService) counts(ctx context.Context, account *models.Account) (*transfer.Profile, error) {
	followers, following, err := s.f.Counts(ctx, account.ID)
	if err != nil {
		return nil, storageError(err, "")
	}
	postCount, err := s.p.CountByAuthor(ctx, account.ID)
	if err != nil {
		return nil, storageError(err, "")
	}
	return &transfer.Profile{
		Account:        account,
		PostCount:      postCount,
		FollowerCount:  followers,
		FollowingCount: following,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, viewer models.Identity, pu *transfer.ProfileUpdate, file *multipart.FileHeader) (*models.Account, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}

	account, exists, err := s.u.GetByID(ctx, viewer.AccountID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists {
		return nil, apperr.NotFound("User not found")
	}

	if pu != nil {
		if v := strings.TrimSpace(pu.Firstname); v != "" {
			account.Firstname = v
		}
		if v := strings.TrimSpace(pu.Lastname); v != "" {
			account.Lastname = v
		}
		if v := strings.TrimSpace(pu.Bio); v != "" {
			account.Bio = v
		}
	}
	if len(account.Firstname) > 50 || len(account.Lastname) > 50 || len(account.Bio) > 300 {
		return nil, apperr.Validation("Profile field too long")
	}

	var oldKey, newKey string
	if file != nil {
		url, key, err := uploadImage(ctx, s.store, "avatars", file)
		if err != nil {
			return nil, err
		}
		oldKey, newKey = account.ProfilePictureKey, key
		account.ProfilePicture, account.ProfilePictureKey = url, key
	}

	if err := s.u.UpdateProfile(ctx, account); err != nil {
		if newKey != "" {
			s.cleaner.Cleanup(ctx, newKey)
		}
		return nil, storageError(err, "User not found")
	}
	if oldKey != "" {
		s.cleaner.Cleanup(ctx, oldKey)
	}
	return account, nil
}

// Remove deletes username's account with everything it owns. Allowed for the
// account itself and for admins.
func (s *userService) Remove(ctx context.Context, viewer models.Identity, username string) error {
	if viewer.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}

	account, err := resolveAccount(ctx, s.u, username)
	if err != nil {
		return err
	}
	if account.ID != viewer.AccountID && !viewer.IsAdmin() {
		return apperr.Forbidden("You are not allowed to delete this user")
	}

	keys, err := s.u.Remove(ctx, account.ID)
	if err != nil {
		return storageError(err, "User not found")
	}
	slog.Info("account removed", "account_id", account.ID, "by", viewer.AccountID)
	if len(keys) > 0 {
		s.cleaner.Cleanup(ctx, keys...)
	}
	return nil
}

func (s *userService) List(ctx context.Context, viewer models.Identity) ([]*models.Account, error) {
	if !viewer.IsAdmin() {
		return nil, apperr.Forbidden("Admin access required")
	}
	accounts, err := s.u.List(ctx)
	if err != nil {
		return nil, storageError(err, "")
	}
	return accounts, nil
}
