package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/social-api/internal/api/middleware"
	"github.com/maheshrc27/social-api/internal/apperr"
	"github.com/maheshrc27/social-api/internal/models"
)

// GetIdentity returns the caller resolved by the auth middleware, or the
// anonymous identity on public routes.
func GetIdentity(c *fiber.Ctx) models.Identity {
	identity, _ := c.Locals(middleware.IdentityKey).(models.Identity)
	return identity
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return id, nil
}

// formFile returns the named upload, or nil when the request carries none.
func formFile(c *fiber.Ctx, name string) *multipart.FileHeader {
	file, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return file
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": msg,
	})
}
