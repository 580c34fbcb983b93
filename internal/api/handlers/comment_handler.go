package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/service"
	"github.com/maheshrc27/social-api/internal/transfer"
)

type CommentHandler struct {
	s service.CommentService
}

func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{s: service}
}

func commentText(c *fiber.Ctx) (string, error) {
	var req transfer.CommentText
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return "", apperr.Validation("Invalid request body")
	}
	return req.Text, nil
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	postID, err := paramID(c, "postId")
	if err != nil {
		return err
	}
	text, err := commentText(c)
	if err != nil {
		return err
	}

	comment, err := h.s.Create(c.Context(), GetIdentity(c), postID, text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	postID, err := paramID(c, "postId")
	if err != nil {
		return err
	}

	comments, err := h.s.ListForPost(c.Context(), postID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(comments)
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	text, err := commentText(c)
	if err != nil {
		return err
	}

	comment, err := h.s.Update(c.Context(), GetIdentity(c), commentID, text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(comment)
}

func (h *CommentHandler) Remove(c *fiber.Ctx) error {
	commentID, err := paramID(c, "commentId")
	if err != nil {
		return err
	}
	if err := h.s.Remove(c.Context(), GetIdentity(c), commentID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Comment deleted successfully")
}
