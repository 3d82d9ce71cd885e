package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rahulreddy97/freerunna/internal/db"
	"github.com/rahulreddy97/freerunna/internal/physiology"
)

type Service struct {
	db   db.Querier
	calc *physiology.Calculator
}

func NewService(q db.Querier, calc *physiology.Calculator) *Service {
	return &Service{db: q, calc: calc}
}

func (s *Service) Get(ctx context.Context, userID string) (Runner, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, age, gender, weekly_mileage, max_heart_rate,
		       COALESCE(strava_link,''), COALESCE(terra_api_key,''),
		       best_5k_minutes, COALESCE(manual_prs,'{}'), created_at, updated_at
		FROM runners WHERE id=$1
	`, userID)

	var r Runner
	var prs []byte
	if err := row.Scan(&r.ID, &r.Email, &r.Age, &r.Gender, &r.WeeklyMileage, &r.MaxHeartRate,
		&r.StravaLink, &r.TerraAPIKey, &r.Best5KMinutes, &prs, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Runner{}, err
	}
	if err := json.Unmarshal(prs, &r.ManualPRs); err != nil {
		return Runner{}, err
	}
	return r, nil
}

// Refresh recomputes derived metrics for a runner and writes them back.
// Called whenever the profile-management collaborator reports a change.
func (s *Service) Refresh(ctx context.Context, userID string) (Derived, error) {
	runner, err := s.Get(ctx, userID)
	if err != nil {
		return Derived{}, err
	}

	derived := ComputeDerived(runner.Normalize(), s.calc)

	_, err = s.db.Exec(ctx, `
		UPDATE runners
		SET vdot_score=$2, predicted_marathon_pace=$3, accuracy_score=$4, updated_at=now()
		WHERE id=$1
	`, userID, derived.VDOT, derived.PredictedMarathonPace, derived.AccuracyScore)
	if err != nil {
		return Derived{}, err
	}
	return derived, nil
}

func (s *Service) UpdateProgress(ctx context.Context, userID string, p GenerationProgress) error {
	if p.StartedAt.IsZero() {
		p.StartedAt = time.Now()
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		UPDATE runners SET generation_progress=$2, updated_at=now() WHERE id=$1
	`, userID, payload)
	return err
}

func (s *Service) Progress(ctx context.Context, userID string) (GenerationProgress, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(generation_progress,'{}') FROM runners WHERE id=$1
	`, userID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return GenerationProgress{}, err
	}
	var p GenerationProgress
	if err := json.Unmarshal(payload, &p); err != nil {
		return GenerationProgress{}, err
	}
	return p, nil
}
