package lead

import (
	"errors"

	"backend-tourdesk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Lead
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validation.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validation.Message(err))
		}
		l, err := svc.CreateLead(c.UserContext(), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		eventID := c.Query("event_id")
		if eventID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "event_id is required")
		}
		leads, err := svc.ListByEvent(c.UserContext(), eventID)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(leads)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		l, err := svc.GetLead(c.UserContext(), c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(l)
	})

	r.Patch("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Patch
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validation.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validation.Message(err))
		}
		l, err := svc.UpdateLead(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(l)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteLead(c.UserContext(), c.Params("id")); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func toFiberError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
