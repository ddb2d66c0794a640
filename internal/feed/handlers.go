package feed

import (
	"strconv"
	"time"

	"backend-inkwell/internal/auth"
	"backend-inkwell/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authRequired, authOptional fiber.Handler) {
	r.Get("/feed", func(c *fiber.Ctx) error {
		limit, before, err := pageParams(c)
		if err != nil {
			return err
		}
		page, err := svc.Public(c.Context(), limit, before)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(page)
	})

	r.Get("/feed/following", authRequired, func(c *fiber.Ctx) error {
		limit, before, err := pageParams(c)
		if err != nil {
			return err
		}
		page, err := svc.Following(c.Context(), auth.ViewerID(c), limit, before)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(page)
	})

	r.Get("/posts/by/:handle", authOptional, func(c *fiber.Ctx) error {
		limit, before, err := pageParams(c)
		if err != nil {
			return err
		}
		page, err := svc.User(c.Context(), c.Params("handle"), auth.ViewerID(c), limit, before)
		if err != nil {
			return fiber.NewError(apperr.HTTPStatus(err), err.Error())
		}
		return c.JSON(page)
	})
}

func pageParams(c *fiber.Ctx) (int, *time.Time, error) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
		}
		limit = parsed
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return 0, nil, fiber.NewError(fiber.StatusBadRequest, "before must be an RFC3339 timestamp")
		}
		before = &parsed
	}
	return limit, before, nil
}
