package plan

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Generation status values reported through the progress callback and
// persisted alongside the runner profile.
const (
	StatusGenerating  = "generating"
	StatusReconciling = "reconciling"
	StatusFinalizing  = "finalizing"
	StatusComplete    = "complete"
	StatusFailed      = "failed"
)

// GeneratorConfig tunes the chunked generation loop.
type GeneratorConfig struct {
	ChunkWeeks       int           // max weeks requested per producer call
	ChunkDelay       time.Duration // pause between producer calls
	MinChunkFraction float64       // minimum usable share of a chunk's days
}

func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		ChunkWeeks:       4,
		ChunkDelay:       10 * time.Second,
		MinChunkFraction: 0.25,
	}
}

// ValidationError rejects a generation request before any producer call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// GenerationError identifies the week range a producer call failed on,
// so the caller can surface exactly which slice of the plan is missing.
type GenerationError struct {
	StartWeek int
	EndWeek   int
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating weeks %d-%d: %v", e.StartWeek, e.EndWeek, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GenerationRequest describes one plan to build.
type GenerationRequest struct {
	UserID      string
	StartDate   string // day 1 of week 1
	GoalDate    string // race day
	DaysPerWeek int
	Athlete     AthleteSummary
}

// ProgressFunc receives generation progress. Called from the generation
// goroutine; implementations do their own synchronization.
type ProgressFunc func(currentWeek, totalWeeks int, status string)

// Generator builds complete training plans chunk by chunk: schedule the
// weekly targets, ask the producer for at most ChunkWeeks at a time,
// reconcile each chunk, and reconcile the assembled whole once more
// before returning. Producer output never reaches the plan unreconciled.
type Generator struct {
	producer WorkoutProducer
	sched    SchedulerParams
	cfg      GeneratorConfig
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewGenerator(producer WorkoutProducer, sched SchedulerParams, cfg GeneratorConfig) *Generator {
	return &Generator{
		producer: producer,
		sched:    sched,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Validate checks a request without calling the producer. Returns the
// plan length in weeks.
func (g *Generator) Validate(req GenerationRequest) (int, error) {
	start, ok := parseDate(req.StartDate)
	if !ok {
		return 0, &ValidationError{Reason: fmt.Sprintf("invalid start date %q", req.StartDate)}
	}
	goal, ok := parseDate(req.GoalDate)
	if !ok {
		return 0, &ValidationError{Reason: fmt.Sprintf("invalid goal date %q", req.GoalDate)}
	}
	days := int(goal.Sub(start).Hours() / 24)
	totalWeeks := (days + 6) / 7 // partial weeks still need training
	if totalWeeks < 12 {
		return 0, &ValidationError{
			Reason: fmt.Sprintf("%d weeks to race day; at least 12 are required", totalWeeks),
		}
	}
	if req.DaysPerWeek < 3 || req.DaysPerWeek > 6 {
		return 0, &ValidationError{Reason: fmt.Sprintf("days per week must be 3-6, got %d", req.DaysPerWeek)}
	}
	return totalWeeks, nil
}

// Generate runs the full pipeline and returns a reconciled plan. The
// progress callback may be nil.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest, progress ProgressFunc) (*Plan, error) {
	if progress == nil {
		progress = func(int, int, string) {}
	}

	totalWeeks, err := g.Validate(req)
	if err != nil {
		return nil, err
	}
	start, _ := parseDate(req.StartDate)

	var all []Day
	priorSummary := ""
	for startWeek := 1; startWeek <= totalWeeks; startWeek += g.cfg.ChunkWeeks {
		endWeek := startWeek + g.cfg.ChunkWeeks - 1
		if endWeek > totalWeeks {
			endWeek = totalWeeks
		}

		if startWeek > 1 {
			if err := g.sleep(ctx, g.cfg.ChunkDelay); err != nil {
				return nil, &GenerationError{StartWeek: startWeek, EndWeek: endWeek, Err: err}
			}
		}
		progress(startWeek, totalWeeks, StatusGenerating)

		chunkWeeks := endWeek - startWeek + 1
		chunkReq := ChunkRequest{
			StartWeek:      startWeek,
			EndWeek:        endWeek,
			TotalWeeks:     totalWeeks,
			DaysPerWeek:    req.DaysPerWeek,
			ChunkStartDate: formatDate(start.Add(time.Duration(startWeek-1) * 7 * 24 * time.Hour)),
			GoalDate:       req.GoalDate,
			Athlete:        req.Athlete,
			WeeklyTargets:  make([]float64, chunkWeeks),
			Phases:         make([]string, chunkWeeks),
			PriorSummary:   priorSummary,
		}
		for i := 0; i < chunkWeeks; i++ {
			week := startWeek + i
			chunkReq.WeeklyTargets[i] = g.sched.WeeklyTargetMiles(week, totalWeeks, req.Athlete.WeeklyMileage)
			chunkReq.Phases[i] = Phase(week, totalWeeks)
		}

		produced, err := g.producer.ProduceChunk(ctx, chunkReq)
		if err != nil {
			return nil, &GenerationError{StartWeek: startWeek, EndWeek: endWeek, Err: err}
		}

		progress(startWeek, totalWeeks, StatusReconciling)
		chunkDays, report := Reconcile(produced, chunkReq.ChunkStartDate, chunkWeeks, req.DaysPerWeek)
		if !report.Clean() {
			log.Printf("plan generation: weeks %d-%d corrected: %+v", startWeek, endWeek, report)
		}

		expected := chunkWeeks * 7
		usable := expected - report.MissingDaysFilled
		if float64(usable) < g.cfg.MinChunkFraction*float64(expected) {
			return nil, &GenerationError{
				StartWeek: startWeek,
				EndWeek:   endWeek,
				Err:       fmt.Errorf("producer covered %d of %d days", usable, expected),
			}
		}

		// Chunk reconciliation is anchored locally; lift the week
		// indices into plan coordinates.
		for i := range chunkDays {
			chunkDays[i].Week += startWeek - 1
		}
		all = append(all, chunkDays...)
		priorSummary = summarizeWeek(all, endWeek)
	}

	// One global pass over the assembled plan. Chunks are individually
	// clean, so this only catches cross-chunk drift.
	progress(totalWeeks, totalWeeks, StatusFinalizing)
	days, report := Reconcile(all, req.StartDate, totalWeeks, req.DaysPerWeek)
	if !report.Clean() {
		log.Printf("plan generation: final pass corrected: %+v", report)
	}

	return &Plan{
		UserID:      req.UserID,
		StartDate:   req.StartDate,
		GoalDate:    req.GoalDate,
		TotalWeeks:  totalWeeks,
		DaysPerWeek: req.DaysPerWeek,
		Days:        days,
		Active:      true,
	}, nil
}
