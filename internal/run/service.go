package run

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rahulreddy97/freerunna/internal/db"
	"github.com/rahulreddy97/freerunna/internal/workout"
)

var (
	ErrSessionActive   = errors.New("a run is already being tracked")
	ErrSessionNotFound = errors.New("session not found")
)

// Broadcaster pushes live payloads to stream subscribers.
type Broadcaster interface {
	Broadcast(sessionID string, payload []byte)
}

// CompletionLogger records a finished run as a workout completion.
type CompletionLogger interface {
	Log(ctx context.Context, c workout.Completion) (workout.Completion, error)
}

type activeSession struct {
	userID   string
	tracker  *Tracker
	stop     chan struct{}
	stopOnce sync.Once
	record   *Session // finalized but not yet persisted
}

func (a *activeSession) halt() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// Service owns the live trackers: one per runner, addressable by
// session id. Each session gets a 1-second tick loop that advances the
// tracker and pushes a snapshot to the stream.
type Service struct {
	db          db.Querier
	hub         Broadcaster
	completions CompletionLogger

	mu       sync.Mutex
	sessions map[string]*activeSession // by session id
	byUser   map[string]string         // user id -> session id

	tickInterval time.Duration
}

func NewService(q db.Querier, hub Broadcaster, completions CompletionLogger) *Service {
	return &Service{
		db:           q,
		hub:          hub,
		completions:  completions,
		sessions:     map[string]*activeSession{},
		byUser:       map[string]string{},
		tickInterval: time.Second,
	}
}

// Start opens a tracking session for the runner. One live session per
// runner; starting a second returns ErrSessionActive.
func (s *Service) Start(userID string, cfg Config) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.byUser[userID]; busy {
		return "", ErrSessionActive
	}

	sessionID := uuid.NewString()
	session := &activeSession{
		userID:  userID,
		tracker: NewTracker(sessionID, userID, cfg, s),
		stop:    make(chan struct{}),
	}
	s.sessions[sessionID] = session
	s.byUser[userID] = sessionID

	go s.tickLoop(session)
	return sessionID, nil
}

func (s *Service) tickLoop(session *activeSession) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-session.stop:
			return
		case <-ticker.C:
			session.tracker.Tick()
			s.publish(session.tracker.sessionID, "snapshot", session.tracker.Snapshot())
		}
	}
}

// Cue implements CueSink: tracker cues go straight to the live stream.
func (s *Service) Cue(sessionID string, cue Cue) {
	s.publish(sessionID, "cue", cue)
}

func (s *Service) publish(sessionID, kind string, payload any) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: kind, Data: payload})
	if err != nil {
		log.Printf("run stream: marshal %s: %v", kind, err)
		return
	}
	s.hub.Broadcast(sessionID, msg)
}

func (s *Service) lookup(sessionID string) (*activeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) IngestFix(sessionID string, fix GeoFix) error {
	session, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now()
	}
	return session.tracker.IngestFix(fix)
}

func (s *Service) IngestHeartRate(sessionID string, sample HeartRateSample) error {
	session, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}
	return session.tracker.IngestHeartRate(sample)
}

func (s *Service) Snapshot(sessionID string) (Snapshot, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.tracker.Snapshot(), nil
}

// Finish closes the session, persists it, and logs the run as that
// day's workout completion. The session stays registered until the
// insert succeeds; a failed Finish can be retried and persists the
// same record.
func (s *Service) Finish(ctx context.Context, sessionID string) (Session, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return Session{}, err
	}

	rec, err := s.finalize(session)
	if err != nil {
		return Session{}, err
	}

	track, _ := json.Marshal(rec.Track)
	hr, _ := json.Marshal(rec.HeartRateSamples)
	paces, _ := json.Marshal(rec.PaceSamples)
	_, err = s.db.Exec(ctx, `
		INSERT INTO run_sessions
			(id, user_id, started_at, ended_at, elapsed_seconds, distance_miles,
			 avg_pace, avg_heart_rate, max_heart_rate, gps_track, heart_rate_samples, pace_samples)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, rec.ID, rec.UserID, rec.StartedAt, rec.EndedAt, rec.ElapsedSeconds,
		rec.DistanceMiles, rec.AvgPace, rec.AvgHeartRate, rec.MaxHeartRate,
		track, hr, paces)
	if err != nil {
		return Session{}, err
	}
	s.release(session, sessionID)

	if s.completions != nil {
		_, err := s.completions.Log(ctx, workout.Completion{
			UserID:          rec.UserID,
			Date:            rec.StartedAt.Format("2006-01-02"),
			WorkoutType:     "run",
			DistanceMiles:   rec.DistanceMiles,
			DurationSeconds: rec.ElapsedSeconds,
			AvgPace:         rec.AvgPace,
			AvgHeartRate:    rec.AvgHeartRate,
			MaxHeartRate:    rec.MaxHeartRate,
			SessionID:       rec.ID,
		})
		if err != nil {
			log.Printf("run finish: log completion for %s: %v", rec.UserID, err)
		}
	}

	s.publish(sessionID, "finished", rec)
	return rec, nil
}

// Cancel discards the session without persisting anything.
func (s *Service) Cancel(sessionID string) error {
	session, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	if err := session.tracker.Cancel(); err != nil {
		return err
	}
	s.release(session, sessionID)
	return nil
}

// finalize stops the tracker exactly once and caches its record, so a
// retried Finish does not hit ErrNotTracking.
func (s *Service) finalize(session *activeSession) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.record != nil {
		return *session.record, nil
	}
	rec, err := session.tracker.Finish()
	if err != nil {
		return Session{}, err
	}
	session.record = &rec
	session.halt()
	return rec, nil
}

func (s *Service) release(session *activeSession, sessionID string) {
	session.halt()
	s.mu.Lock()
	delete(s.sessions, sessionID)
	delete(s.byUser, session.userID)
	s.mu.Unlock()
}
