package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/service"
	"github.com/maheshrc27/social-api/internal/transfer"
)

type AuthHandler struct {
	s service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var reg transfer.Registration
	if err := c.BodyParser(&reg); err != nil {
		slog.Info(err.Error())
		return apperr.Validation("Unable to parse form")
	}

	account, err := h.s.Register(c.Context(), &reg, formFile(c, "file"))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(account)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req transfer.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return apperr.Validation("Invalid request body")
	}

	res, err := h.s.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req transfer.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return apperr.Validation("Invalid request body")
	}

	pair, err := h.s.Refresh(c.Context(), req.Token)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(pair)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.s.Logout(c.Context(), GetIdentity(c)); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Logged out successfully")
}
