package social

import (
	"backend-inkwell/internal/auth"
	"backend-inkwell/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, authOptional fiber.Handler) {
	r.Post("/follow/:handle", authRequired, func(c *fiber.Ctx) error {
		state, err := svc.ToggleFollow(c.Context(), auth.ViewerID(c), c.Params("handle"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(state)
	})

	r.Get("/followers/:handle", authOptional, func(c *fiber.Ctx) error {
		list, err := svc.Followers(c.Context(), c.Params("handle"), auth.ViewerID(c))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(list)
	})

	r.Get("/following/:handle", authOptional, func(c *fiber.Ctx) error {
		list, err := svc.Following(c.Context(), c.Params("handle"), auth.ViewerID(c))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(list)
	})
}
