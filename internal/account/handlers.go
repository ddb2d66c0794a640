package account

import (
	"backend-inkwell/internal/auth"
	"backend-inkwell/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, authOptional fiber.Handler) {
	r.Patch("/me", authRequired, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		profile, err := svc.Update(c.Context(), auth.ViewerID(c), req)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(profile)
	})

	r.Get("/:handle", authOptional, func(c *fiber.Ctx) error {
		profile, err := svc.Profile(c.Context(), c.Params("handle"), auth.ViewerID(c))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(profile)
	})
}
