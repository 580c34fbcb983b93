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
)

const maxCaptionLength = 2200

type PostService interface {
	Create(ctx context.Context, viewer models.Identity, caption string, file *multipart.FileHeader) (*models.Post, error)
	UpdateCaption(ctx context.Context, viewer models.Identity, postID int64, caption string) (*models.Post, error)
	Like(ctx context.Context, viewer models.Identity, postID int64) error
	Unlike(ctx context.Context, viewer models.Identity, postID int64) error
	Remove(ctx context.Context, viewer models.Identity, postID int64) error
}

type postService struct {
	pr      repository.PostRepository
	store   ObjectStore
	cleaner MediaCleaner
}

func NewPostService(pr repository.PostRepository, store ObjectStore, cleaner MediaCleaner) PostService {
	return &postService{
		pr:      pr,
		store:   store,
		cleaner: cleaner,
	}
}

func checkCaption(caption string) (string, error) {
	caption = strings.TrimSpace(caption)
	if len(caption) > maxCaptionLength {
		return "", apperr.Validation("Caption is too long")
	}
	return caption, nil
}

func (s *postService) Create(ctx context.Context, viewer models.Identity, caption string, file *multipart.FileHeader) (*models.Post, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}
	caption, err := checkCaption(caption)
	if err != nil {
		return nil, err
	}

	url, key, err := uploadImage(ctx, s.store, "posts", file)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: viewer.AccountID,
		MediaURL: url,
		MediaKey: key,
		Caption:  caption,
		Likes:    []int64{},
		Comments: []int64{},
	}
	post.ID, err = s.pr.Create(ctx, post)
	if err != nil {
		s.cleaner.Cleanup(ctx, key)
		return nil, storageError(err, "User not found")
	}

	slog.Info("post created", "post_id", post.ID, "author_id", post.AuthorID)
	return post, nil
}

func (s *postService) getPost(ctx context.Context, postID int64) (*models.Post, error) {
	post, exists, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, storageError(err, "")
	}
	if !exists {
		return nil, apperr.NotFound("Post not found")
	}
	return post, nil
}

func (s *postService) UpdateCaption(ctx context.Context, viewer models.Identity, postID int64, caption string) (*models.Post, error) {
	if viewer.Anonymous() {
		return nil, apperr.Unauthorized("Access denied. No token provided.")
	}
	caption, err := checkCaption(caption)
	if err != nil {
		return nil, err
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != viewer.AccountID {
		return nil, apperr.Forbidden("You can only edit your own posts")
	}

	if err := s.pr.UpdateCaption(ctx, postID, caption); err != nil {
		return nil, storageError(err, "Post not found")
	}
	return s.getPost(ctx, postID)
}

func (s *postService) Like(ctx context.Context, viewer models.Identity, postID int64) error {
	if viewer.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}

	err := s.pr.Like(ctx, postID, viewer.AccountID)
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict("You have already liked this post")
	}
	return storageError(err, "Post not found")
}

// Unlike succeeds whether or not the viewer had liked the post.
func (s *postService) Unlike(ctx context.Context, viewer models.Identity, postID int64) error {
	if viewer.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}
	return storageError(s.pr.Unlike(ctx, postID, viewer.AccountID), "Post not found")
}

func (s *postService) Remove(ctx context.Context, viewer models.Identity, postID int64) error {
	if viewer.Anonymous() {
		return apperr.Unauthorized("Access denied. No token provided.")
	}

	post, err := s.getPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != viewer.AccountID && !viewer.IsAdmin() {
		return apperr.Forbidden("You can only delete your own posts")
	}

	key, err := s.pr.Remove(ctx, postID)
	if err != nil {
		return storageError(err, "Post not found")
	}
	slog.Info("post removed", "post_id", postID, "by", viewer.AccountID)
	if key != "" {
		s.cleaner.Cleanup(ctx, key)
	}
	return nil
}
