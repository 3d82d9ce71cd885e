package workout

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var body Completion
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		body.UserID = userID
		if body.Date == "" {
			body.Date = time.Now().Format("2006-01-02")
		}

		logged, err := svc.Log(c.Context(), body)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(logged)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		to := c.Query("to", time.Now().Format("2006-01-02"))
		from := c.Query("from", time.Now().AddDate(0, 0, -28).Format("2006-01-02"))

		list, err := svc.List(c.Context(), userID, from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(list)
	})
}
