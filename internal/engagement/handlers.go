package engagement

import (
	"backend-inkwell/internal/auth"
	"backend-inkwell/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, authOptional fiber.Handler) {
	r.Post("/:id/like", authRequired, func(c *fiber.Ctx) error {
		state, err := svc.ToggleLike(c.Context(), auth.ViewerID(c), c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(state)
	})

	r.Post("/:id/comments", authRequired, func(c *fiber.Ctx) error {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		comment, err := svc.AddComment(c.Context(), auth.ViewerID(c), c.Params("id"), body.Text)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	r.Delete("/:id/comments/:commentID", authRequired, func(c *fiber.Ctx) error {
		err := svc.DeleteComment(c.Context(), auth.ViewerID(c), c.Params("id"), c.Params("commentID"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/view", authOptional, func(c *fiber.Ctx) error {
		viewer := AnonymousViewer()
		if id := auth.ViewerID(c); id != "" {
			viewer = AuthenticatedViewer(id)
		}
		state, err := svc.TrackView(c.Context(), viewer, c.Params("id"))
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(state)
	})
}
