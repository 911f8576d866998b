package event

import (
	"errors"

	"backend-tourdesk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Event
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.CreatedBy == "" {
			req.CreatedBy, _ = c.Locals("operator_id").(string)
		}
		if err := validation.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validation.Message(err))
		}
		ev, err := svc.CreateEvent(c.UserContext(), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(ev)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		ev, err := svc.GetEvent(c.UserContext(), c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(ev)
	})

	r.Get("/:id/route", func(c *fiber.Ctx) error {
		route, err := svc.Route(c.UserContext(), c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{"cities": route})
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Event
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ev, err := svc.UpdateEvent(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(ev)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteEvent(c.UserContext(), c.Params("id")); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateCity):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
