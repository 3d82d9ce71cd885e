package run

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type startBody struct {
	TargetPace   string `json:"target_pace"`
	MaxHeartRate int    `json:"max_heart_rate"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var body startBody
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		cfg := DefaultConfig()
		cfg.TargetPace = body.TargetPace
		cfg.MaxHeartRate = body.MaxHeartRate

		sessionID, err := svc.Start(userID, cfg)
		if errors.Is(err, ErrSessionActive) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session_id": sessionID})
	})

	r.Post("/:sessionID/location", authMiddleware, func(c *fiber.Ctx) error {
		var fix GeoFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		return translate(c, svc.IngestFix(c.Params("sessionID"), fix))
	})

	r.Post("/:sessionID/heartrate", authMiddleware, func(c *fiber.Ctx) error {
		var sample HeartRateSample
		if err := c.BodyParser(&sample); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		return translate(c, svc.IngestHeartRate(c.Params("sessionID"), sample))
	})

	r.Get("/:sessionID", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := svc.Snapshot(c.Params("sessionID"))
		if err != nil {
			return translate(c, err)
		}
		return c.JSON(snap)
	})

	r.Post("/:sessionID/finish", authMiddleware, func(c *fiber.Ctx) error {
		session, err := svc.Finish(c.Context(), c.Params("sessionID"))
		if err != nil {
			return translate(c, err)
		}
		return c.JSON(session)
	})

	r.Post("/:sessionID/cancel", authMiddleware, func(c *fiber.Ctx) error {
		return translate(c, svc.Cancel(c.Params("sessionID")))
	})
}

func translate(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotTracking):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
