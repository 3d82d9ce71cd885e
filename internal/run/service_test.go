package run

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/rahulreddy97/freerunna/internal/workout"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

type stubBroadcaster struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

func newStubBroadcaster() *stubBroadcaster {
	return &stubBroadcaster{payloads: map[string][][]byte{}}
}

func (b *stubBroadcaster) Broadcast(sessionID string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads[sessionID] = append(b.payloads[sessionID], payload)
}

func (b *stubBroadcaster) forSession(sessionID string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.payloads[sessionID]...)
}

type stubCompletions struct {
	mu     sync.Mutex
	logged []workout.Completion
}

func (s *stubCompletions) Log(_ context.Context, c workout.Completion) (workout.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logged = append(s.logged, c)
	return c, nil
}

func TestStartOneSessionPerRunner(t *testing.T) {
	svc := NewService(newMock(t), nil, nil)

	id, err := svc.Start("runner-1", DefaultConfig())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a session id")
	}
	if _, err := svc.Start("runner-1", DefaultConfig()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second start should be rejected, got %v", err)
	}
	// Another runner is unaffected.
	if _, err := svc.Start("runner-2", DefaultConfig()); err != nil {
		t.Fatalf("other runner blocked: %v", err)
	}

	if err := svc.Cancel(id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Start("runner-1", DefaultConfig()); err != nil {
		t.Fatalf("slot not released after cancel: %v", err)
	}
}

func TestIngestRouting(t *testing.T) {
	svc := NewService(newMock(t), nil, nil)

	id, _ := svc.Start("runner-1", DefaultConfig())
	if err := svc.IngestFix(id, GeoFix{Lat: 40, Lng: -74, Timestamp: time.Now()}); err != nil {
		t.Fatalf("ingest fix: %v", err)
	}
	if err := svc.IngestHeartRate(id, HeartRateSample{BPM: 150}); err != nil {
		t.Fatalf("ingest hr: %v", err)
	}
	snap, err := svc.Snapshot(id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.HeartRate != 150 {
		t.Fatalf("hr not routed: %+v", snap)
	}

	if err := svc.IngestFix("missing", GeoFix{}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFinishPersistsAndLogsCompletion(t *testing.T) {
	mock := newMock(t)
	completions := &stubCompletions{}
	svc := NewService(mock, nil, completions)

	id, _ := svc.Start("runner-1", DefaultConfig())
	now := time.Now()
	svc.IngestFix(id, GeoFix{Lat: 40.0, Lng: -74.0, Timestamp: now})
	svc.IngestFix(id, GeoFix{Lat: 40.003, Lng: -74.0, Timestamp: now.Add(2 * time.Minute)})

	mock.ExpectExec(`INSERT INTO run_sessions`).
		WithArgs(id, "runner-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), 0, 0,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	session, err := svc.Finish(context.Background(), id)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if session.DistanceMiles <= 0 {
		t.Fatalf("distance missing: %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}

	if len(completions.logged) != 1 {
		t.Fatalf("expected one completion, got %d", len(completions.logged))
	}
	c := completions.logged[0]
	if c.SessionID != id || c.WorkoutType != "run" || c.DistanceMiles != session.DistanceMiles {
		t.Fatalf("completion wrong: %+v", c)
	}

	// The session is gone afterwards.
	if _, err := svc.Snapshot(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session should be released, got %v", err)
	}
}

func TestFinishRetriesAfterPersistFailure(t *testing.T) {
	mock := newMock(t)
	completions := &stubCompletions{}
	svc := NewService(mock, nil, completions)

	id, _ := svc.Start("runner-1", DefaultConfig())
	now := time.Now()
	svc.IngestFix(id, GeoFix{Lat: 40.0, Lng: -74.0, Timestamp: now})
	svc.IngestFix(id, GeoFix{Lat: 40.003, Lng: -74.0, Timestamp: now.Add(2 * time.Minute)})

	mock.ExpectExec(`INSERT INTO run_sessions`).
		WithArgs(id, "runner-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), 0, 0,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	if _, err := svc.Finish(context.Background(), id); err == nil {
		t.Fatalf("expected the persistence error to surface")
	}
	if len(completions.logged) != 0 {
		t.Fatalf("failed finish must not log a completion")
	}
	// The session survives the failure and can be finished again.
	if _, err := svc.Snapshot(id); err != nil {
		t.Fatalf("session lost after failed persist: %v", err)
	}

	mock.ExpectExec(`INSERT INTO run_sessions`).
		WithArgs(id, "runner-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), 0, 0,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	session, err := svc.Finish(context.Background(), id)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if session.DistanceMiles <= 0 {
		t.Fatalf("distance missing: %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
	if len(completions.logged) != 1 {
		t.Fatalf("expected one completion, got %d", len(completions.logged))
	}
	if _, err := svc.Snapshot(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session should be released after the retry, got %v", err)
	}
}

func TestCuesReachTheStream(t *testing.T) {
	hub := newStubBroadcaster()
	svc := NewService(newMock(t), hub, nil)

	cfg := DefaultConfig()
	cfg.MaxHeartRate = 200
	id, _ := svc.Start("runner-1", cfg)
	svc.IngestHeartRate(id, HeartRateSample{BPM: 185})

	// Cues are delivered off the ingest path; wait for the envelope to
	// land among the broadcasts.
	deadline := time.Now().Add(2 * time.Second)
	for {
		for _, payload := range hub.forSession(id) {
			var env struct {
				Type string `json:"type"`
				Data Cue    `json:"data"`
			}
			if err := json.Unmarshal(payload, &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Type == "cue" {
				if env.Data.Kind != CueHeartRate {
					t.Fatalf("unexpected cue: %+v", env.Data)
				}
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("cue never reached the stream")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCancelLeavesNoTrace(t *testing.T) {
	mock := newMock(t)
	completions := &stubCompletions{}
	svc := NewService(mock, nil, completions)

	id, _ := svc.Start("runner-1", DefaultConfig())
	if err := svc.Cancel(id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.Cancel(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("double cancel should be not found, got %v", err)
	}
	if len(completions.logged) != 0 {
		t.Fatalf("cancel must not log a completion")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("cancel must not touch the database: %v", err)
	}
}
