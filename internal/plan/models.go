package plan

import "time"

// WorkoutType is the vocabulary the producer may emit for a day.
type WorkoutType string

const (
	TypeRest         WorkoutType = "rest"
	TypeEasy         WorkoutType = "easy"
	TypeRecovery     WorkoutType = "recovery"
	TypeLong         WorkoutType = "long"
	TypeTempo        WorkoutType = "tempo"
	TypeInterval     WorkoutType = "interval"
	TypeMarathonPace WorkoutType = "marathonPace"
	TypeProgression  WorkoutType = "progression"
	TypeFartlek      WorkoutType = "fartlek"
	TypeHillRepeats  WorkoutType = "hillRepeats"
	TypeYasso800s    WorkoutType = "yasso800s"
)

// IsRun reports whether the day is a workout rather than rest. Unknown
// types from the producer count as runs and get corrected downstream.
func (t WorkoutType) IsRun() bool {
	return t != TypeRest && t != ""
}

// DateLayout is the calendar-date wire format used throughout plans.
const DateLayout = "2006-01-02"

// Day is one calendar day of a training plan. Week and DayInWeek are
// always recomputed from Date; producer-asserted indices are never
// trusted.
type Day struct {
	Date          string      `json:"date"`
	Week          int         `json:"week"`
	DayInWeek     int         `json:"day"`
	Type          WorkoutType `json:"type"`
	DistanceMiles float64     `json:"distance"`
	TargetPace    string      `json:"targetPace"`
	Description   string      `json:"description"`
	HRZone        string      `json:"hrZone,omitempty"`
}

// Plan is a fully reconciled training plan: exactly TotalWeeks*7 days,
// dates strictly incrementing, each week holding exactly DaysPerWeek
// runs. Persisted immutably; a new generation replaces the prior active
// plan.
type Plan struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	StartDate    string    `json:"start_date"`
	GoalDate     string    `json:"goal_marathon_date"`
	TotalWeeks   int       `json:"total_weeks"`
	DaysPerWeek  int       `json:"days_per_week"`
	Days         []Day     `json:"days"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// restDay builds the canonical rest-day record for a date.
func restDay(date time.Time, week, dayInWeek int, description string) Day {
	return Day{
		Date:        formatDate(date),
		Week:        week,
		DayInWeek:   dayInWeek,
		Type:        TypeRest,
		Description: description,
	}
}
