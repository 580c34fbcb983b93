package service

import (
	"context"
	"strings"

	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/repository"
	"github.com/maheshrc27/social-api/internal/transfer"
)

// UnsplashService records viewer comments against external Unsplash image ids.
type UnsplashService interface {
	Create(ctx context.Context, viewer models.Identity, in *transfer.UnsplashInteractionCreation) (*models.UnsplashInteraction, error)
	Mine(ctx context.Context, viewer models.Identity, unsplashID string) ([]*models.UnsplashInteraction, error)
	All(ctx context.Context, unsplashID string) ([]*models.UnsplashInteraction, error)
	ByAccount(ctx context.Context, accountID int64) ([]*models.UnsplashInteraction, error)
}

type unsplashService struct {
	u  repository.AccountRepository
	ur repository.UnsplashRepository
}

func NewUnsplashService(u repository.AccountRepository, ur repository.UnsplashRepository) UnsplashService {
	return &unsplashService{
		u:  u,
		ur: ur,
	}
}

func (s *unsplashService) Create(ctx context.Context, viewer models.Identity, in *transfer.UnsplashInteractionCreation) (*models.UnsplashInteraction, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}
	if in == nil || strings.TrimSpace(in.UnsplashID) == "" {
		return nil, apperr.Validation("unsplashId is required")
	}

	interaction := &models.UnsplashInteraction{
		AccountID:  viewer.AccountID,
		UnsplashID: strings.TrimSpace(in.UnsplashID),
		Comment:    strings.TrimSpace(in.Comment),
	}
	if _, err := s.ur.Create(ctx, interaction); err != nil {
		return nil, storageError(err, "User not found")
	}
	return interaction, nil
}

func (s *unsplashService) Mine(ctx context.Context, viewer models.Identity, unsplashID string) ([]*models.UnsplashInteraction, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}
	interactions, err := s.ur.ListByAccountAndUnsplashID(ctx, viewer.AccountID, unsplashID)
	if err != nil {
		return nil, storageError(err, "")
	}
	return interactions, nil
}

// All lists every interaction on unsplashID with the commenting user attached.
func (s *unsplashService) All(ctx context.Context, unsplashID string) ([]*models.UnsplashInteraction, error) {
	interactions, err := s.ur.ListByUnsplashID(ctx, unsplashID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if len(interactions) == 0 {
		return interactions, nil
	}

	ids := make([]int64, 0, len(interactions))
	for _, i := range interactions {
		ids = append(ids, i.AccountID)
	}
	summaries, err := s.u.Summaries(ctx, ids)
	if err != nil {
		return nil, storageError(err, "")
	}
	for _, i := range interactions {
		summary := summaryOf(i.AccountID, summaries)
		i.User = &summary
	}
	return interactions, nil
}

func (s *unsplashService) ByAccount(ctx context.Context, accountID int64) ([]*models.UnsplashInteraction, error) {
	interactions, err := s.ur.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, storageError(err, "")
	}
	return interactions, nil
}
