package post

import (
	"backend-inkwell/internal/auth"
	"backend-inkwell/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, authOptional fiber.Handler) {
	r.Post("/", authRequired, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		created, err := svc.Create(c.Context(), auth.ViewerID(c), req)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/search", func(c *fiber.Ctx) error {
		results, err := svc.Search(c.Context(), c.Query("q"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(results)
	})

	r.Get("/:id", authOptional, func(c *fiber.Ctx) error {
		detail, err := svc.Get(c.Context(), auth.ViewerID(c), c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(detail)
	})

	r.Patch("/:id", authRequired, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		updated, err := svc.Update(c.Context(), auth.ViewerID(c), c.Params("id"), req)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(updated)
	})

	r.Delete("/:id", authRequired, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), auth.ViewerID(c), c.Params("id")); err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/images", authRequired, func(c *fiber.Ctx) error {
		var body struct {
			URL string `json:"url"`
		}
		if err := c.BodyParser(&body); err != nil || body.URL == "" {
			return fiber.NewError(fiber.StatusBadRequest, "url required")
		}
		img, err := svc.AddImage(c.Context(), auth.ViewerID(c), c.Params("id"), body.URL)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(img)
	})
}
