package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/policy"
	"github.com/maheshrc27/social-api/internal/repository"
)

type FeedService interface {
	ProfilePosts(ctx context.Context, viewer models.Identity, targetUsername string) ([]*models.EnrichedPost, error)
	AccountPosts(ctx context.Context, viewer models.Identity, target *models.Account) ([]*models.EnrichedPost, error)
	Feed(ctx context.Context, viewer models.Identity) ([]*models.EnrichedPost, error)
	PublicPosts(ctx context.Context) ([]*models.EnrichedPost, error)
}

type feedService struct {
	u repository.AccountRepository
	f repository.FollowRepository
	p repository.PostRepository
	c repository.CommentRepository
	g GraphService
}

func NewFeedService(
	u repository.AccountRepository,
	f repository.FollowRepository,
	p repository.PostRepository,
	c repository.CommentRepository,
	g GraphService) FeedService {
	return &feedService{
		u: u,
		f: f,
		p: p,
		c: c,
		g: g,
	}
}

func (s *feedService) ProfilePosts(ctx context.Context, viewer models.Identity, targetUsername string) ([]*models.EnrichedPost, error) {
	target, err := resolveAccount(ctx, s.u, targetUsername)
	if err != nil {
		return nil, err
	}
	return s.AccountPosts(ctx, viewer, target)
}

// AccountPosts lists target's posts after the visibility check.
func (s *feedService) AccountPosts(ctx context.Context, viewer models.Identity, target *models.Account) ([]*models.EnrichedPost, error) {
	follows, err := s.g.IsFollowing(ctx, viewer, target)
	if err != nil {
		return nil, err
	}
	if !policy.CanListPosts(viewer, target, follows) {
		slog.Info("post listing denied", "viewer_id", viewer.AccountID, "target_id", target.ID)
		return nil, apperr.Forbidden("You must follow this user to view their posts.")
	}

	posts, err := s.p.ListByAuthor(ctx, target.ID)
	if err != nil {
		return nil, storageError(err, "")
	}
	return s.enrich(ctx, posts)
}

func (s *feedService) Feed(ctx context.Context, viewer models.Identity) ([]*models.EnrichedPost, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}

	following, err := s.f.FollowingIDs(ctx, viewer.AccountID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if len(following) == 0 {
		return []*models.EnrichedPost{}, nil
	}

	posts, err := s.p.ListByAuthors(ctx, following)
	if err != nil {
		return nil, storageError(err, "")
	}
	return s.enrich(ctx, posts)
}

func (s *feedService) PublicPosts(ctx context.Context) ([]*models.EnrichedPost, error) {
	posts, err := s.p.ListByAuthorRole(ctx, models.RolePublicUser)
	if err != nil {
		return nil, storageError(err, "")
	}
	return s.enrich(ctx, posts)
}

// enrich builds read-only views with author and comment-author summaries,
// newest activity first.
func (s *feedService) enrich(ctx context.Context, posts []*models.Post) ([]*models.EnrichedPost, error) {
	if len(posts) == 0 {
		return []*models.EnrichedPost{}, nil
	}

	postIDs := make([]int64, 0, len(posts))
	authorIDs := make([]int64, 0, len(posts))
	seen := make(map[int64]struct{})
	addAuthor := func(id int64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			authorIDs = append(authorIDs, id)
		}
	}
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		addAuthor(p.AuthorID)
	}

	comments, err := s.c.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, storageError(err, "")
	}
	for _, c := range comments {
		addAuthor(c.AuthorID)
	}

	summaries, err := s.u.Summaries(ctx, authorIDs)
	if err != nil {
		return nil, storageError(err, "")
	}

	byPost := make(map[int64][]*models.EnrichedComment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], enrichComment(c, summaries))
	}

	enriched := make([]*models.EnrichedPost, 0, len(posts))
	for _, p := range posts {
		postComments := byPost[p.ID]
		if postComments == nil {
			postComments = []*models.EnrichedComment{}
		}
		likes := append([]int64{}, p.Likes...)
		enriched = append(enriched, &models.EnrichedPost{
			ID:        p.ID,
			Author:    summaryOf(p.AuthorID, summaries),
			MediaURL:  p.MediaURL,
			Caption:   p.Caption,
			Likes:     likes,
			Comments:  postComments,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		if enriched[i].UpdatedAt.Equal(enriched[j].UpdatedAt) {
			return enriched[i].ID > enriched[j].ID
		}
		return enriched[i].UpdatedAt.After(enriched[j].UpdatedAt)
	})
	return enriched, nil
}

func summaryOf(id int64, summaries map[int64]models.AccountSummary) models.AccountSummary {
	if s, ok := summaries[id]; ok {
		return s
	}
	return models.AccountSummary{ID: id}
}

func enrichComment(c *models.Comment, summaries map[int64]models.AccountSummary) *models.EnrichedComment {
	return &models.EnrichedComment{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    summaryOf(c.AuthorID, summaries),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
