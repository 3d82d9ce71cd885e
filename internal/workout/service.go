package workout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rahulreddy97/freerunna/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(q db.Querier) *Service {
	return &Service{db: q}
}

// Log records a completed workout. One completion per runner per date;
// logging the same date again replaces the earlier record.
func (s *Service) Log(ctx context.Context, c Completion) (Completion, error) {
	if c.UserID == "" || c.Date == "" {
		return Completion{}, fmt.Errorf("user id and date are required")
	}
	if c.Effort < 0 || c.Effort > 10 {
		return Completion{}, fmt.Errorf("effort must be 0-10, got %d", c.Effort)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO workout_completions
			(id, user_id, date, workout_type, distance_miles, duration_seconds,
			 avg_pace, avg_heart_rate, max_heart_rate, effort, notes, session_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (user_id, date) DO UPDATE SET
			workout_type=EXCLUDED.workout_type,
			distance_miles=EXCLUDED.distance_miles,
			duration_seconds=EXCLUDED.duration_seconds,
			avg_pace=EXCLUDED.avg_pace,
			avg_heart_rate=EXCLUDED.avg_heart_rate,
			max_heart_rate=EXCLUDED.max_heart_rate,
			effort=EXCLUDED.effort,
			notes=EXCLUDED.notes,
			session_id=EXCLUDED.session_id,
			updated_at=now()
	`, c.ID, c.UserID, c.Date, c.WorkoutType, c.DistanceMiles, c.DurationSeconds,
		c.AvgPace, c.AvgHeartRate, c.MaxHeartRate, c.Effort, c.Notes, c.SessionID)
	if err != nil {
		return Completion{}, err
	}
	return c, nil
}

// List returns completions in [from, to], newest first.
func (s *Service) List(ctx context.Context, userID, from, to string) ([]Completion, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, date, workout_type, distance_miles, duration_seconds,
		       COALESCE(avg_pace,''), COALESCE(avg_heart_rate,0), COALESCE(max_heart_rate,0),
		       COALESCE(effort,0), COALESCE(notes,''), COALESCE(session_id,''),
		       created_at, updated_at
		FROM workout_completions
		WHERE user_id=$1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		err := rows.Scan(&c.ID, &c.UserID, &c.Date, &c.WorkoutType, &c.DistanceMiles, &c.DurationSeconds,
			&c.AvgPace, &c.AvgHeartRate, &c.MaxHeartRate, &c.Effort, &c.Notes, &c.SessionID,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ForDate returns the completion for one calendar day, if any.
func (s *Service) ForDate(ctx context.Context, userID, date string) (Completion, bool, error) {
	list, err := s.List(ctx, userID, date, date)
	if err != nil {
		return Completion{}, false, err
	}
	if len(list) == 0 {
		return Completion{}, false, nil
	}
	return list[0], true, nil
}
