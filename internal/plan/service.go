package plan

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahulreddy97/freerunna/internal/db"
	"github.com/rahulreddy97/freerunna/internal/profile"
)

var (
	ErrGenerationInFlight = errors.New("plan generation already running")
	ErrNoActivePlan       = errors.New("no active plan")
	ErrNoWorkoutToday     = errors.New("no workout scheduled today")
)

// ProfileSource is the slice of the profile service the planner needs:
// derived metrics going in, generation progress going out.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (profile.Runner, error)
	Refresh(ctx context.Context, userID string) (profile.Derived, error)
	UpdateProgress(ctx context.Context, userID string, p profile.GenerationProgress) error
}

type Service struct {
	db        db.Querier
	generator *Generator
	profiles  ProfileSource

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(q db.Querier, generator *Generator, profiles ProfileSource) *Service {
	return &Service{
		db:        q,
		generator: generator,
		profiles:  profiles,
		inflight:  map[string]struct{}{},
	}
}

// Save persists a plan and makes it the runner's only active one.
func (s *Service) Save(ctx context.Context, p *Plan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	days, err := json.Marshal(p.Days)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE plans SET active=false WHERE user_id=$1 AND active
	`, p.UserID); err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO plans (id, user_id, start_date, goal_date, total_weeks, days_per_week, days, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
	`, p.ID, p.UserID, p.StartDate, p.GoalDate, p.TotalWeeks, p.DaysPerWeek, days)
	return err
}

func (s *Service) ActivePlan(ctx context.Context, userID string) (*Plan, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, start_date, goal_date, total_weeks, days_per_week, days, created_at
		FROM plans WHERE user_id=$1 AND active
	`, userID)

	var p Plan
	var days []byte
	err := row.Scan(&p.ID, &p.UserID, &p.StartDate, &p.GoalDate,
		&p.TotalWeeks, &p.DaysPerWeek, &days, &p.CreatedAt)
	if err != nil {
		return nil, ErrNoActivePlan
	}
	if err := json.Unmarshal(days, &p.Days); err != nil {
		return nil, err
	}
	p.Active = true
	return &p, nil
}

// TodaysWorkout returns the plan day matching the given date.
func (s *Service) TodaysWorkout(ctx context.Context, userID, date string) (Day, error) {
	p, err := s.ActivePlan(ctx, userID)
	if err != nil {
		return Day{}, err
	}
	for _, d := range p.Days {
		if d.Date == date {
			return d, nil
		}
	}
	return Day{}, ErrNoWorkoutToday
}

// StartGeneration kicks off plan generation in the background. At most
// one generation runs per runner; a second request while one is running
// returns ErrGenerationInFlight. Progress is persisted on the profile so
// clients can poll it.
func (s *Service) StartGeneration(ctx context.Context, req GenerationRequest) error {
	if _, err := s.generator.Validate(req); err != nil {
		return err
	}
	derived, err := s.profiles.Refresh(ctx, req.UserID)
	if err != nil {
		return err
	}
	runner, err := s.profiles.Get(ctx, req.UserID)
	if err != nil {
		return err
	}
	n := runner.Normalize()
	req.Athlete = AthleteSummary{
		Age:                   n.Age,
		Gender:                n.Gender,
		WeeklyMileage:         n.WeeklyMileage,
		VDOT:                  derived.VDOT,
		PredictedMarathonPace: derived.PredictedMarathonPace,
		TrainingPaces:         derived.TrainingPaces,
		MaxHeartRate:          derived.MaxHeartRate,
		DataQuality:           n.DataQuality(),
	}

	s.mu.Lock()
	if _, running := s.inflight[req.UserID]; running {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	s.inflight[req.UserID] = struct{}{}
	s.mu.Unlock()

	// The request context dies with the HTTP call; generation outlives it.
	go s.generate(context.Background(), req)
	return nil
}

func (s *Service) generate(ctx context.Context, req GenerationRequest) {
	defer func() {
		s.mu.Lock()
		delete(s.inflight, req.UserID)
		s.mu.Unlock()
	}()

	started := time.Now()
	progress := func(current, total int, status string) {
		err := s.profiles.UpdateProgress(ctx, req.UserID, profile.GenerationProgress{
			CurrentWeek: current,
			TotalWeeks:  total,
			Status:      status,
			StartedAt:   started,
		})
		if err != nil {
			log.Printf("plan generation: persist progress for %s: %v", req.UserID, err)
		}
	}

	p, err := s.generator.Generate(ctx, req, progress)
	if err != nil {
		log.Printf("plan generation failed for %s: %v", req.UserID, err)
		progress(0, 0, StatusFailed)
		return
	}
	if err := s.Save(ctx, p); err != nil {
		log.Printf("plan generation: save for %s: %v", req.UserID, err)
		progress(0, 0, StatusFailed)
		return
	}
	progress(p.TotalWeeks, p.TotalWeeks, StatusComplete)
}
