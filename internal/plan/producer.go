package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rahulreddy97/freerunna/internal/physiology"
)

// AthleteSummary is the profile slice the producer sees. Everything in
// it is already normalized and derived; the producer never recomputes
// physiology.
type AthleteSummary struct {
	Age                   int
	Gender                string
	WeeklyMileage         float64
	VDOT                  float64
	PredictedMarathonPace string
	TrainingPaces         physiology.TrainingPaces
	MaxHeartRate          int
	DataQuality           string
}

// ChunkRequest asks a producer for one contiguous slice of the plan.
type ChunkRequest struct {
	StartWeek      int
	EndWeek        int
	TotalWeeks     int
	DaysPerWeek    int
	ChunkStartDate string // date of StartWeek day 1
	GoalDate       string
	Athlete        AthleteSummary
	WeeklyTargets  []float64 // miles, one per week in the chunk
	Phases         []string  // one per week in the chunk
	PriorSummary   string    // last generated week, "" for the first chunk
}

func (r ChunkRequest) Weeks() int { return r.EndWeek - r.StartWeek + 1 }

// WorkoutProducer emits candidate days for a chunk. Output is untrusted:
// the caller reconciles indices, duplicates and quotas before keeping
// anything.
type WorkoutProducer interface {
	ProduceChunk(ctx context.Context, req ChunkRequest) ([]Day, error)
}

// ProducerFunc adapts a function to WorkoutProducer.
type ProducerFunc func(ctx context.Context, req ChunkRequest) ([]Day, error)

func (f ProducerFunc) ProduceChunk(ctx context.Context, req ChunkRequest) ([]Day, error) {
	return f(ctx, req)
}

// buildChunkPrompt renders the generation prompt for one chunk. The
// response contract is a bare JSON array of day objects.
func buildChunkPrompt(req ChunkRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a marathon coach writing weeks %d-%d of a %d-week training plan.\n\n",
		req.StartWeek, req.EndWeek, req.TotalWeeks)

	a := req.Athlete
	fmt.Fprintf(&b, "Athlete: %d-year-old %s, VDOT %.1f, current volume %.0f miles/week, data quality %s.\n",
		a.Age, a.Gender, a.VDOT, a.WeeklyMileage, a.DataQuality)
	fmt.Fprintf(&b, "Predicted marathon pace: %s/mile. Easy %s, tempo %s, interval %s. Max HR %d bpm.\n",
		a.PredictedMarathonPace, a.TrainingPaces.Easy, a.TrainingPaces.Tempo, a.TrainingPaces.Interval, a.MaxHeartRate)
	fmt.Fprintf(&b, "Race day: %s.\n\n", req.GoalDate)

	fmt.Fprintf(&b, "Schedule %d runs per week, the rest of each week is rest days. Put the long run on the last day of each week.\n", req.DaysPerWeek)
	b.WriteString("Weekly mileage targets (hit each within 10%):\n")
	for i := 0; i < req.Weeks(); i++ {
		fmt.Fprintf(&b, "- Week %d (%s phase): %.0f miles\n", req.StartWeek+i, req.Phases[i], req.WeeklyTargets[i])
	}

	if req.PriorSummary != "" {
		fmt.Fprintf(&b, "\nThe previous week looked like this, continue the progression from it:\n%s\n", req.PriorSummary)
	}

	fmt.Fprintf(&b, "\nWeek %d day 1 falls on %s. Cover every calendar day through the end of week %d.\n",
		req.StartWeek, req.ChunkStartDate, req.EndWeek)
	b.WriteString(`
Respond with ONLY a JSON array, no prose and no markdown fences. One object per day:
{"date":"YYYY-MM-DD","week":N,"day":N,"type":"easy|recovery|long|tempo|interval|marathonPace|progression|fartlek|hillRepeats|yasso800s|rest","distance":miles,"targetPace":"M:SS","description":"short coaching note","hrZone":"Zone N"}
Rest days use type "rest" with distance 0 and an empty targetPace.
`)
	return b.String()
}

// summarizeWeek renders the closing week of a chunk for the next
// chunk's prompt, so pacing and structure stay continuous across the
// chunk boundary.
func summarizeWeek(days []Day, week int) string {
	var b strings.Builder
	total := 0.0
	for _, d := range days {
		if d.Week != week {
			continue
		}
		if d.Type.IsRun() {
			fmt.Fprintf(&b, "%s: %s %.1f mi @ %s\n", d.Date, d.Type, d.DistanceMiles, d.TargetPace)
			total += d.DistanceMiles
		}
	}
	fmt.Fprintf(&b, "Week %d total: %.1f miles", week, total)
	return b.String()
}

var trailingComma = regexp.MustCompile(`,\s*([\]}])`)

// parseProducedDays recovers a day array from raw model output. Models
// wrap JSON in fences, prepend prose and leave trailing commas often
// enough that all three repairs are routine.
func parseProducedDays(raw string) ([]Day, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	// Cut everything outside the outermost array.
	open := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if open < 0 || end <= open {
		return nil, fmt.Errorf("no JSON array in producer output")
	}
	s = trailingComma.ReplaceAllString(s[open:end+1], "$1")

	var days []Day
	if err := json.Unmarshal([]byte(s), &days); err != nil {
		return nil, fmt.Errorf("decode producer output: %w", err)
	}
	return days, nil
}
