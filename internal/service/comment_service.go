package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/repository"
)

const maxCommentLength = 1000

type CommentService interface {
	Create(ctx context.Context, viewer models.Identity, postID int64, text string) (*models.Comment, error)
	ListForPost(ctx context.Context, postID int64) ([]*models.EnrichedComment, error)
	Update(ctx context.Context, viewer models.Identity, commentID int64, text string) (*models.Comment, error)
	Remove(ctx context.Context, viewer models.Identity, commentID int64) error
}

type commentService struct {
	u  repository.AccountRepository
	p  repository.PostRepository
	cr repository.CommentRepository
}

func NewCommentService(u repository.AccountRepository, p repository.PostRepository, cr repository.CommentRepository) CommentService {
	return &commentService{
		u:  u,
		p:  p,
		cr: cr,
	}
}

func checkCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperr.Validation("Comment text is required")
	}
	if len(text) > maxCommentLength {
		return "", apperr.Validation("Comment is too long")
	}
	return text, nil
}

func (s *commentService) Create(ctx context.Context, viewer models.Identity, postID int64, text string) (*models.Comment, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}
	text, err := checkCommentText(text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: viewer.AccountID,
		Text:     text,
	}
	comment.ID, err = s.cr.Create(ctx, comment)
	if err != nil {
		return nil, storageError(err, "Post not found")
	}

	slog.Info("comment created", "comment_id", comment.ID, "post_id", postID)
	return comment, nil
}

func (s *commentService) ListForPost(ctx context.Context, postID int64) ([]*models.EnrichedComment, error) {
	_, exists, err := s.p.GetByID(ctx, postID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists {
		return nil, apperr.NotFound("Post not found")
	}

	comments, err := s.cr.ListByPostID(ctx, postID)
	if err != nil {
		return nil, storageError(err, "")
	}

	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	summaries, err := s.u.Summaries(ctx, ids)
	if err != nil {
		return nil, storageError(err, "")
	}

	enriched := make([]*models.EnrichedComment, 0, len(comments))
	for _, c := range comments {
		enriched = append(enriched, enrichComment(c, summaries))
	}
	return enriched, nil
}

func (s *commentService) getComment(ctx context.Context, commentID int64) (*models.Comment, error) {
	comment, exists, err := s.cr.GetByID(ctx, commentID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists {
		return nil, apperr.NotFound("Comment not found")
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, viewer models.Identity, commentID int64, text string) (*models.Comment, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}
	text, err := checkCommentText(text)
	if err != nil {
		return nil, err
	}

	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != viewer.AccountID {
		return nil, apperr.Forbidden("You can only edit your own comments")
	}

	comment.Text = text
	if err := s.cr.UpdateText(ctx, comment); err != nil {
		return nil, storageError(err, "Comment not found")
	}
	return comment, nil
}

func (s *commentService) Remove(ctx context.Context, viewer models.Identity, commentID int64) error {
	if viewer.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}

	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != viewer.AccountID && !viewer.IsAdmin() {
		return apperr.Forbidden("You can only delete your own comments")
	}

	if err := s.cr.Remove(ctx, commentID); err != nil {
		return storageError(err, "Comment not found")
	}
	slog.Info("comment removed", "comment_id", commentID, "post_id", comment.PostID, "by", viewer.AccountID)
	return nil
}
