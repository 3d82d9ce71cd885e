package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/rahulreddy97/freerunna/internal/physiology"
)

var errProfile = errors.New("profile error")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func runnerRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "age", "gender", "weekly_mileage", "max_heart_rate",
		"strava_link", "terra_api_key", "best_5k_minutes", "manual_prs", "created_at", "updated_at",
	})
}

func TestGet(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, physiology.NewCalculator(physiology.DefaultParams()))

	age := 45
	mock.ExpectQuery(`SELECT id, email, age, gender, weekly_mileage`).
		WithArgs("runner-1").
		WillReturnRows(runnerRows().AddRow(
			"runner-1", "a@b.c", &age, nil, nil, nil,
			"", "", nil, []byte(`{"five_k":"22:30"}`), time.Now(), time.Now(),
		))

	runner, err := svc.Get(context.Background(), "runner-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if runner.ManualPRs.FiveK != "22:30" {
		t.Fatalf("manual prs not decoded: %+v", runner.ManualPRs)
	}
	if *runner.Age != 45 {
		t.Fatalf("age not scanned")
	}
}

func TestRefreshPersistsDerived(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, physiology.NewCalculator(physiology.DefaultParams()))

	mock.ExpectQuery(`SELECT id, email, age, gender, weekly_mileage`).
		WithArgs("runner-1").
		WillReturnRows(runnerRows().AddRow(
			"runner-1", "a@b.c", nil, nil, nil, nil,
			"", "", nil, []byte(`{}`), time.Now(), time.Now(),
		))
	mock.ExpectExec(`UPDATE runners`).
		WithArgs("runner-1", pgxmock.AnyArg(), pgxmock.AnyArg(), 50).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	derived, err := svc.Refresh(context.Background(), "runner-1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if derived.AccuracyScore != 50 {
		t.Fatalf("accuracy = %d", derived.AccuracyScore)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshGetError(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, physiology.NewCalculator(physiology.DefaultParams()))

	mock.ExpectQuery(`SELECT id, email, age, gender, weekly_mileage`).
		WithArgs("runner-9").
		WillReturnError(errProfile)

	if _, err := svc.Refresh(context.Background(), "runner-9"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestProgressRoundTrip(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock, physiology.NewCalculator(physiology.DefaultParams()))

	mock.ExpectExec(`UPDATE runners SET generation_progress`).
		WithArgs("runner-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.UpdateProgress(context.Background(), "runner-1", GenerationProgress{
		CurrentWeek: 4, TotalWeeks: 16, Status: "generating",
	})
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}

	mock.ExpectQuery(`SELECT COALESCE\(generation_progress`).
		WithArgs("runner-1").
		WillReturnRows(pgxmock.NewRows([]string{"generation_progress"}).
			AddRow([]byte(`{"current_week":4,"total_weeks":16,"status":"generating"}`)))

	p, err := svc.Progress(context.Background(), "runner-1")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.CurrentWeek != 4 || p.Status != "generating" {
		t.Fatalf("unexpected progress: %+v", p)
	}
}
