package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/service"
	"github.com/maheshrc27/social-api/internal/transfer"
)

type UnsplashHandler struct {
	s service.UnsplashService
}

func NewUnsplashHandler(service service.UnsplashService) *UnsplashHandler {
	return &UnsplashHandler{s: service}
}

func (h *UnsplashHandler) Create(c *fiber.Ctx) error {
	var req transfer.UnsplashInteractionCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return apperr.Validation("Invalid request body")
	}

	interaction, err := h.s.Create(c.Context(), GetIdentity(c), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(interaction)
}

func (h *UnsplashHandler) Mine(c *fiber.Ctx) error {
	interactions, err := h.s.Mine(c.Context(), GetIdentity(c), c.Params("unsplashId"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(interactions)
}

func (h *UnsplashHandler) All(c *fiber.Ctx) error {
	interactions, err := h.s.All(c.Context(), c.Params("unsplashId"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(interactions)
}

func (h *UnsplashHandler) ByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}

	interactions, err := h.s.ByAccount(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(interactions)
}
