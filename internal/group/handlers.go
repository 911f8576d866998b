package group

import (
	"errors"

	"backend-tourdesk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validation.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validation.Message(err))
		}
		g, err := svc.CreateGroup(c.UserContext(), req)
		if err != nil {
			return toFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		g, err := svc.GetGroup(c.UserContext(), c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(g)
	})

	r.Post("/:id/members", authMiddleware, func(c *fiber.Ctx) error {
		var req AddMemberRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validation.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validation.Message(err))
		}
		if err := svc.AddMember(c.UserContext(), c.Params("id"), req.TouristID); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id/members/:touristID", authMiddleware, func(c *fiber.Ctx) error {
		dissolved, err := svc.RemoveMember(c.UserContext(), c.Params("id"), c.Params("touristID"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(fiber.Map{"dissolved": dissolved})
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteGroup(c.UserContext(), c.Params("id")); err != nil {
			return toFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTouristNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotMember):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
