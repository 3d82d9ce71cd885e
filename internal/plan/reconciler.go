package plan

import (
	"sort"
	"time"
)

// ReconcileReport records every correction the reconciler applied, so
// callers can log how far the producer strayed without failing the plan.
type ReconcileReport struct {
	DuplicatesDropped int         `json:"duplicates_dropped"`
	OutOfRangeDropped int         `json:"out_of_range_dropped"`
	IndicesRewritten  int         `json:"indices_rewritten"`
	ExcessRunsRested  int         `json:"excess_runs_rested"`
	MissingDaysFilled int         `json:"missing_days_filled"`
	LongRunsMoved     int         `json:"long_runs_moved"`
	RunShortfalls     map[int]int `json:"run_shortfalls,omitempty"` // week -> missing run count
}

func (r ReconcileReport) Clean() bool {
	return r.DuplicatesDropped == 0 && r.OutOfRangeDropped == 0 &&
		r.IndicesRewritten == 0 && r.ExcessRunsRested == 0 &&
		r.MissingDaysFilled == 0 && r.LongRunsMoved == 0 &&
		len(r.RunShortfalls) == 0
}

// Reconcile normalizes producer output into a calendar that holds the
// plan invariants: exactly totalWeeks*7 days anchored at startDate, one
// entry per date, week/day indices derived from the date, and at most
// daysPerWeek runs per week. Runs beyond the weekly quota become rest
// days (earliest-dated runs are kept); missing dates are filled with
// rest; a week's long run is pinned to its seventh day. It never
// invents workouts, so a week can come up short on runs; shortfalls are
// reported, not repaired. Running it on its own output is a no-op.
func Reconcile(days []Day, startDate string, totalWeeks, daysPerWeek int) ([]Day, ReconcileReport) {
	report := ReconcileReport{}
	start, ok := parseDate(startDate)
	if !ok {
		return nil, report
	}
	totalDays := totalWeeks * 7

	// One entry per date, first occurrence wins. Anything outside the
	// plan window is dropped outright.
	byOffset := make(map[int]Day, totalDays)
	for _, d := range days {
		date, ok := parseDate(d.Date)
		if !ok {
			report.OutOfRangeDropped++
			continue
		}
		offset := int(date.Sub(start).Hours() / 24)
		if offset < 0 || offset >= totalDays {
			report.OutOfRangeDropped++
			continue
		}
		if _, seen := byOffset[offset]; seen {
			report.DuplicatesDropped++
			continue
		}
		week := offset/7 + 1
		dayInWeek := offset%7 + 1
		if d.Week != week || d.DayInWeek != dayInWeek {
			report.IndicesRewritten++
		}
		d.Week = week
		d.DayInWeek = dayInWeek
		byOffset[offset] = d
	}

	// Per week: keep the earliest daysPerWeek runs, rest the excess,
	// fill the gaps.
	out := make([]Day, 0, totalDays)
	for week := 1; week <= totalWeeks; week++ {
		runs := 0
		for dayInWeek := 1; dayInWeek <= 7; dayInWeek++ {
			offset := (week-1)*7 + dayInWeek - 1
			date := start.Add(time.Duration(offset) * 24 * time.Hour)

			d, ok := byOffset[offset]
			if !ok {
				report.MissingDaysFilled++
				out = append(out, restDay(date, week, dayInWeek, "Rest day"))
				continue
			}
			if d.Type.IsRun() {
				if runs >= daysPerWeek {
					report.ExcessRunsRested++
					d = restDay(date, week, dayInWeek, "Rest day")
				} else {
					runs++
				}
			}
			out = append(out, d)
		}

		// The long run belongs on the week's last day. Swap workout
		// payloads, not dates, so the calendar stays intact.
		weekStart := len(out) - 7
		last := len(out) - 1
		for i := weekStart; i < last && out[last].Type != TypeLong; i++ {
			if out[i].Type != TypeLong {
				continue
			}
			out[i].Type, out[last].Type = out[last].Type, out[i].Type
			out[i].DistanceMiles, out[last].DistanceMiles = out[last].DistanceMiles, out[i].DistanceMiles
			out[i].TargetPace, out[last].TargetPace = out[last].TargetPace, out[i].TargetPace
			out[i].Description, out[last].Description = out[last].Description, out[i].Description
			out[i].HRZone, out[last].HRZone = out[last].HRZone, out[i].HRZone
			report.LongRunsMoved++
			break
		}

		if runs < daysPerWeek {
			if report.RunShortfalls == nil {
				report.RunShortfalls = map[int]int{}
			}
			report.RunShortfalls[week] = daysPerWeek - runs
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].Date < out[j].Date
	})
	return out, report
}
