package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/service"
	"github.com/maheshrc27/social-api/internal/transfer"
)

type PostHandler struct {
	s    service.PostService
	feed service.FeedService
}

func NewPostHandler(service service.PostService, feed service.FeedService) *PostHandler {
	return &PostHandler{s: service, feed: feed}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	post, err := h.s.Create(c.Context(), GetIdentity(c), c.FormValue("caption"), formFile(c, "file"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) PublicPosts(c *fiber.Ctx) error {
	posts, err := h.feed.PublicPosts(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) Feed(c *fiber.Ctx) error {
	posts, err := h.feed.Feed(c.Context(), GetIdentity(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) ProfilePosts(c *fiber.Ctx) error {
	posts, err := h.feed.ProfilePosts(c.Context(), GetIdentity(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdateCaption(c *fiber.Ctx) error {
	postID, err := paramID(c, "postId")
	if err != nil {
		return err
	}

	var req transfer.CaptionUpdate
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return apperr.Validation("Invalid request body")
	}

	post, err := h.s.UpdateCaption(c.Context(), GetIdentity(c), postID, req.Caption)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) Like(c *fiber.Ctx) error {
	postID, err := paramID(c, "postId")
	if err != nil {
		return err
	}
	if err := h.s.Like(c.Context(), GetIdentity(c), postID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Post liked")
}

func (h *PostHandler) Unlike(c *fiber.Ctx) error {
	postID, err := paramID(c, "postId")
	if err != nil {
		return err
	}
	if err := h.s.Unlike(c.Context(), GetIdentity(c), postID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Post unliked")
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID, err := paramID(c, "postId")
	if err != nil {
		return err
	}
	if err := h.s.Remove(c.Context(), GetIdentity(c), postID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Post deleted successfully")
}
