package workout

import "time"

// Completion is what actually happened on a training day, as opposed to
// what the plan prescribed. One record per runner per date; re-logging a
// day overwrites it.
type Completion struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"` // YYYY-MM-DD
	WorkoutType     string    `json:"workout_type"`
	DistanceMiles   float64   `json:"distance_miles"`
	DurationSeconds int       `json:"duration_seconds"`
	AvgPace         string    `json:"avg_pace"` // "M:SS" per mile
	AvgHeartRate    int       `json:"avg_heart_rate,omitempty"`
	MaxHeartRate    int       `json:"max_heart_rate,omitempty"`
	Effort          int       `json:"effort,omitempty"` // RPE 1-10
	Notes           string    `json:"notes,omitempty"`
	SessionID       string    `json:"session_id,omitempty"` // set when logged from a tracked run
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
