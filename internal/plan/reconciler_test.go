package plan

import (
	"reflect"
	"testing"
	"time"
)

func runDay(date string, miles float64) Day {
	return Day{Date: date, Type: TypeEasy, DistanceMiles: miles, TargetPace: "9:30", Description: "Easy run"}
}

func planDates(start string, n int) []string {
	t0, _ := parseDate(start)
	dates := make([]string, n)
	for i := range dates {
		dates[i] = formatDate(t0.Add(time.Duration(i) * 24 * time.Hour))
	}
	return dates
}

func TestReconcileRecomputesIndices(t *testing.T) {
	days := []Day{
		{Date: "2026-03-09", Week: 7, DayInWeek: 3, Type: TypeEasy, DistanceMiles: 4},
	}
	out, report := Reconcile(days, "2026-03-02", 2, 3)

	if len(out) != 14 {
		t.Fatalf("expected 14 days, got %d", len(out))
	}
	got := out[7]
	if got.Date != "2026-03-09" || got.Week != 2 || got.DayInWeek != 1 {
		t.Fatalf("indices not recomputed from date: %+v", got)
	}
	if report.IndicesRewritten != 1 {
		t.Fatalf("expected 1 rewritten index, got %d", report.IndicesRewritten)
	}
}

func TestReconcileDropsDuplicatesFirstWins(t *testing.T) {
	days := []Day{
		runDay("2026-03-02", 4),
		runDay("2026-03-02", 9),
	}
	out, report := Reconcile(days, "2026-03-02", 1, 3)

	if out[0].DistanceMiles != 4 {
		t.Fatalf("first occurrence should win, got %v miles", out[0].DistanceMiles)
	}
	if report.DuplicatesDropped != 1 {
		t.Fatalf("duplicates = %d", report.DuplicatesDropped)
	}
}

func TestReconcileRestsExcessRuns(t *testing.T) {
	dates := planDates("2026-03-02", 7)
	days := make([]Day, 0, 7)
	for _, d := range dates {
		days = append(days, runDay(d, 5)) // 7 runs, quota 4
	}
	out, report := Reconcile(days, "2026-03-02", 1, 4)

	runs := 0
	for _, d := range out {
		if d.Type.IsRun() {
			runs++
		}
	}
	if runs != 4 {
		t.Fatalf("expected 4 runs after reconciliation, got %d", runs)
	}
	// Earliest runs survive; the back of the week is rested.
	for i := 0; i < 4; i++ {
		if !out[i].Type.IsRun() {
			t.Fatalf("day %d should have kept its run", i+1)
		}
	}
	for i := 4; i < 7; i++ {
		if out[i].Type != TypeRest {
			t.Fatalf("day %d should be rested, got %s", i+1, out[i].Type)
		}
	}
	if report.ExcessRunsRested != 3 {
		t.Fatalf("excess rested = %d", report.ExcessRunsRested)
	}
}

func TestReconcileFillsMissingDatesAndReportsShortfall(t *testing.T) {
	// Producer delivered 2 runs for a 4-run week; missing dates become
	// rest, the shortfall is reported but never synthesized.
	days := []Day{
		runDay("2026-03-03", 4),
		runDay("2026-03-06", 6),
	}
	out, report := Reconcile(days, "2026-03-02", 1, 4)

	if len(out) != 7 {
		t.Fatalf("expected a full week, got %d days", len(out))
	}
	if report.MissingDaysFilled != 5 {
		t.Fatalf("filled = %d", report.MissingDaysFilled)
	}
	if report.RunShortfalls[1] != 2 {
		t.Fatalf("shortfall = %+v", report.RunShortfalls)
	}
	runs := 0
	for _, d := range out {
		if d.Type.IsRun() {
			runs++
		}
	}
	if runs != 2 {
		t.Fatalf("reconciler must not invent runs, got %d", runs)
	}
}

func TestReconcileDropsOutOfRangeDays(t *testing.T) {
	days := []Day{
		runDay("2026-02-20", 4),  // before start
		runDay("2026-03-02", 4),  // in range
		runDay("2026-04-01", 4),  // past the final week
		{Date: "not-a-date", Type: TypeEasy},
	}
	out, report := Reconcile(days, "2026-03-02", 1, 3)

	if report.OutOfRangeDropped != 3 {
		t.Fatalf("dropped = %d", report.OutOfRangeDropped)
	}
	if len(out) != 7 {
		t.Fatalf("expected 7 days, got %d", len(out))
	}
}

func TestReconcileDatesStrictlyIncrement(t *testing.T) {
	days := []Day{
		runDay("2026-03-10", 5),
		runDay("2026-03-04", 4),
		runDay("2026-03-21", 12),
	}
	out, _ := Reconcile(days, "2026-03-02", 4, 3)

	if len(out) != 28 {
		t.Fatalf("expected 28 days, got %d", len(out))
	}
	want := planDates("2026-03-02", 28)
	for i, d := range out {
		if d.Date != want[i] {
			t.Fatalf("day %d date = %s, want %s", i, d.Date, want[i])
		}
		if d.Week != i/7+1 || d.DayInWeek != i%7+1 {
			t.Fatalf("day %d indices wrong: %+v", i, d)
		}
	}
}

func TestReconcilePinsLongRunToWeekEnd(t *testing.T) {
	days := []Day{
		{Date: "2026-03-03", Type: TypeLong, DistanceMiles: 10, TargetPace: "10:15", Description: "Long run"},
		runDay("2026-03-05", 4),
	}
	out, report := Reconcile(days, "2026-03-02", 1, 3)

	if out[6].Type != TypeLong || out[6].DistanceMiles != 10 {
		t.Fatalf("long run not pinned to day 7: %+v", out[6])
	}
	if out[1].Type != TypeRest {
		t.Fatalf("long run's old slot should hold the swapped rest day: %+v", out[1])
	}
	if out[6].Date != "2026-03-08" || out[1].Date != "2026-03-03" {
		t.Fatalf("swap must not touch dates: %+v", out)
	}
	if report.LongRunsMoved != 1 {
		t.Fatalf("moved = %d", report.LongRunsMoved)
	}

	// Already pinned: nothing to do.
	again, report := Reconcile(out, "2026-03-02", 1, 3)
	if report.LongRunsMoved != 0 {
		t.Fatalf("second pass moved %d long runs", report.LongRunsMoved)
	}
	if !reflect.DeepEqual(out, again) {
		t.Fatalf("pinning not idempotent")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	days := []Day{
		runDay("2026-03-02", 4),
		runDay("2026-03-02", 9),
		runDay("2026-03-04", 5),
		runDay("2026-03-05", 5),
		runDay("2026-03-06", 5),
		runDay("2026-03-07", 5),
		runDay("2026-03-15", 10),
	}
	first, _ := Reconcile(days, "2026-03-02", 3, 4)
	second, report := Reconcile(first, "2026-03-02", 3, 4)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reconcile not idempotent")
	}
	if report.DuplicatesDropped != 0 || report.ExcessRunsRested != 0 ||
		report.MissingDaysFilled != 0 || report.IndicesRewritten != 0 {
		t.Fatalf("second pass should be correction-free: %+v", report)
	}
}
