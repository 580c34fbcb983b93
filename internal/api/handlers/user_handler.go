package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
	"github.com/maheshrc27/social-api/internal/service"
	"github.com/maheshrc27/social-api/internal/transfer"
)

type UserHandler struct {
	s service.UserService
	g service.GraphService
}

func NewUserHandler(service service.UserService, graph service.GraphService) *UserHandler {
	return &UserHandler{s: service, g: graph}
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	accounts, err := h.s.List(c.Context(), GetIdentity(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(accounts)
}

func (h *UserHandler) Current(c *fiber.Ctx) error {
	profile, err := h.s.CurrentProfile(c.Context(), GetIdentity(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

// Profile is public, so the viewer is always anonymous here.
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	profile, err := h.s.PublicProfile(c.Context(), models.Identity{}, c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *UserHandler) Follow(c *fiber.Ctx) error {
	if err := h.g.Follow(c.Context(), GetIdentity(c), c.Params("username")); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "User followed successfully")
}

func (h *UserHandler) Unfollow(c *fiber.Ctx) error {
	if err := h.g.Unfollow(c.Context(), GetIdentity(c), c.Params("username")); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "User unfollowed successfully")
}

func (h *UserHandler) Followers(c *fiber.Ctx) error {
	followers, err := h.g.Followers(c.Context(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(followers)
}

func (h *UserHandler) Following(c *fiber.Ctx) error {
	following, err := h.g.Following(c.Context(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(following)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var pu transfer.ProfileUpdate
	if err := c.BodyParser(&pu); err != nil {
		slog.Info(err.Error())
		return apperr.Validation("Unable to parse form")
	}

	account, err := h.s.UpdateProfile(c.Context(), GetIdentity(c), &pu, formFile(c, "file"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(account)
}

func (h *UserHandler) Remove(c *fiber.Ctx) error {
	if err := h.s.Remove(c.Context(), GetIdentity(c), c.Params("username")); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "User deleted successfully")
}
