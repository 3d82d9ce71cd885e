package plan

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type generateBody struct {
	StartDate   string `json:"start_date"`
	GoalDate    string `json:"goal_marathon_date"`
	DaysPerWeek int    `json:"days_per_week"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/generate", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var body generateBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.StartDate == "" {
			body.StartDate = time.Now().Format(DateLayout)
		}
		if body.DaysPerWeek == 0 {
			body.DaysPerWeek = 4
		}

		err := svc.StartGeneration(c.Context(), GenerationRequest{
			UserID:      userID,
			StartDate:   body.StartDate,
			GoalDate:    body.GoalDate,
			DaysPerWeek: body.DaysPerWeek,
		})
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return fiber.NewError(fiber.StatusBadRequest, verr.Reason)
		case errors.Is(err, ErrGenerationInFlight):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": StatusGenerating})
	})

	r.Get("/active", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		p, err := svc.ActivePlan(c.Context(), userID)
		if errors.Is(err, ErrNoActivePlan) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})

	r.Get("/today", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		date := c.Query("date", time.Now().Format(DateLayout))
		d, err := svc.TodaysWorkout(c.Context(), userID, date)
		switch {
		case errors.Is(err, ErrNoActivePlan):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case errors.Is(err, ErrNoWorkoutToday):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(d)
	})
}
