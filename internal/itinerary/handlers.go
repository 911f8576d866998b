package itinerary

import (
	"bytes"
	"errors"

	"backend-tourdesk/internal/consolidate"
	"backend-tourdesk/internal/event"
	"backend-tourdesk/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RegisterRoutes mounts the roster endpoints under an /events router.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/:id/roster", authMiddleware, func(c *fiber.Ctx) error {
		roster, err := svc.Roster(c.UserContext(), c.Params("id"))
		if err != nil {
			return toFiberError(err)
		}
		return c.JSON(roster)
	})

	r.Post("/:id/edits", authMiddleware, func(c *fiber.Ctx) error {
		var req EditRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validation.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validation.Message(err))
		}
		results, err := svc.ApplyEdits(c.UserContext(), c.Params("id"), req.Edits)
		if err != nil {
			return toFiberError(err)
		}
		resp := toResponse(results)
		status := fiber.StatusOK
		if resp.Failed > 0 {
			status = fiber.StatusMultiStatus
		}
		return c.Status(status).JSON(resp)
	})

	r.Post("/:id/visits", authMiddleware, func(c *fiber.Ctx) error {
		var req consolidate.Edit
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, err := svc.CreateVisit(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return toFiberError(err)
		}
		if result.Err != nil {
			return toFiberError(result.Err)
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse([]consolidate.OpResult{result}).Results[0])
	})

	r.Get("/:id/export.xlsx", authMiddleware, func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := svc.Export(c.UserContext(), c.Params("id"), &buf); err != nil {
			return toFiberError(err)
		}
		c.Attachment("roster-" + c.Params("id") + ".xlsx")
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	})
}

func toFiberError(err error) error {
	switch {
	case errors.Is(err, event.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrVisitExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, consolidate.ErrUnknownParticipant),
		errors.Is(err, consolidate.ErrCityNotOnRoute),
		errors.Is(err, consolidate.ErrUnknownField):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
