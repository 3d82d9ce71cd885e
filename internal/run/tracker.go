package run

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rahulreddy97/freerunna/internal/physiology"
	"github.com/rahulreddy97/freerunna/internal/shared/geo"
	"github.com/rahulreddy97/freerunna/internal/shared/pace"
)

var ErrNotTracking = errors.New("session is not tracking")

// Config tunes a live tracking session.
type Config struct {
	TargetPace        string        // "M:SS"/mile, "" disables pace alerts
	MaxHeartRate      int           // 0 disables zone classification
	PaceToleranceSecs int           // deviation that triggers a pace alert
	AlertInterval     time.Duration // minimum gap between repeat alerts
	SmoothingWindow   time.Duration // trailing window for the smoothed pace
}

func DefaultConfig() Config {
	return Config{
		PaceToleranceSecs: 20,
		AlertInterval:     30 * time.Second,
		SmoothingWindow:   10 * time.Second,
	}
}

type state int

const (
	stateTracking state = iota
	stateFinished
	stateCancelled
)

type paceSample struct {
	at         time.Time
	secPerMile float64
}

// Tracker accumulates GPS and heart-rate input for one live run and
// emits audio cues. All methods are safe for concurrent use; the ingest
// paths and the tick loop contend on one mutex. Cues are handed to the
// sink on a dedicated goroutine: delivery can reach the network, and it
// must never hold up ingestion.
type Tracker struct {
	mu sync.Mutex

	sessionID string
	userID    string
	cfg       Config
	sink      CueSink
	cues      chan Cue
	now       func() time.Time

	state     state
	startedAt time.Time
	elapsed   int // seconds, advanced by Tick

	lastFix       *GeoFix
	distanceMiles float64
	samples       []paceSample // trailing window only
	smoothed      float64      // sec/mile, 0 until enough data

	track   []GeoFix
	paceLog []PaceSample
	hrLog   []HeartRateSample

	hrSum, hrMax, hrLatest int
	zone                   int

	nextMile, nextKm           int
	lastPaceAlert, lastHRAlert time.Time
	targetSecs                 int
}

func NewTracker(sessionID, userID string, cfg Config, sink CueSink) *Tracker {
	t := &Tracker{
		sessionID: sessionID,
		userID:    userID,
		cfg:       cfg,
		sink:      sink,
		cues:      make(chan Cue, 64),
		now:       time.Now,
		nextMile:  1,
		nextKm:    1,
	}
	t.targetSecs, _ = pace.ToSeconds(cfg.TargetPace)
	t.startedAt = t.now()
	if sink != nil {
		go t.dispatchCues()
	}
	return t
}

func (t *Tracker) dispatchCues() {
	for c := range t.cues {
		t.sink.Cue(t.sessionID, c)
	}
}

// IngestFix folds one GPS reading into the session: distance grows by
// the haversine leg from the previous fix, the instantaneous pace is
// the leg time over the leg distance, and crossing a whole mile or
// kilometer fires a milestone cue exactly once.
func (t *Tracker) IngestFix(fix GeoFix) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateTracking {
		return ErrNotTracking
	}

	t.track = append(t.track, fix)
	if t.lastFix == nil {
		t.lastFix = &fix
		return nil
	}

	dMiles := geo.HaversineMiles(t.lastFix.Lat, t.lastFix.Lng, fix.Lat, fix.Lng)
	dt := fix.Timestamp.Sub(t.lastFix.Timestamp)
	t.lastFix = &fix
	if dMiles <= 0 || dt <= 0 {
		return nil
	}

	t.distanceMiles += dMiles
	secPerMile := dt.Seconds() / dMiles
	t.samples = append(t.samples, paceSample{at: fix.Timestamp, secPerMile: secPerMile})
	t.paceLog = append(t.paceLog, PaceSample{SecPerMile: secPerMile, Timestamp: fix.Timestamp})

	for int(t.distanceMiles) >= t.nextMile {
		t.cue(Cue{
			Kind:    CueMilestone,
			Message: fmt.Sprintf("Mile %d. %s elapsed.", t.nextMile, formatElapsed(t.elapsed)),
			At:      t.now(),
		})
		t.nextMile++
	}
	for int(geo.MilesToKm(t.distanceMiles)) >= t.nextKm {
		t.cue(Cue{
			Kind:    CueMilestone,
			Message: fmt.Sprintf("Kilometer %d.", t.nextKm),
			At:      t.now(),
		})
		t.nextKm++
	}
	return nil
}

// IngestHeartRate records a reading and raises an alert when the runner
// sits in zone 4 or above, at most once per alert interval.
func (t *Tracker) IngestHeartRate(s HeartRateSample) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateTracking {
		return ErrNotTracking
	}

	t.hrSum += s.BPM
	t.hrLatest = s.BPM
	if s.BPM > t.hrMax {
		t.hrMax = s.BPM
	}
	if t.cfg.MaxHeartRate > 0 {
		t.zone = physiologyZone(s.BPM, t.cfg.MaxHeartRate)
	}
	s.Zone = t.zone
	t.hrLog = append(t.hrLog, s)
	if t.cfg.MaxHeartRate <= 0 {
		return nil
	}

	now := t.now()
	if t.zone >= 4 && now.Sub(t.lastHRAlert) >= t.cfg.AlertInterval {
		t.lastHRAlert = now
		t.cue(Cue{
			Kind:    CueHeartRate,
			Message: fmt.Sprintf("Heart rate %d, zone %d. Consider easing off.", s.BPM, t.zone),
			At:      now,
		})
	}
	return nil
}

// Tick advances the clock one second: elapsed time, the trailing-mean
// smoothed pace, and the pace alert check.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateTracking {
		return
	}

	t.elapsed++
	now := t.now()

	cutoff := now.Add(-t.cfg.SmoothingWindow)
	sum, n := 0.0, 0
	for i := len(t.samples) - 1; i >= 0; i-- {
		if t.samples[i].at.Before(cutoff) {
			break
		}
		sum += t.samples[i].secPerMile
		n++
	}
	if n == 0 {
		t.smoothed = 0
		return
	}
	t.smoothed = sum / float64(n)

	// Old samples never matter again; drop them.
	if n < len(t.samples) {
		t.samples = append(t.samples[:0], t.samples[len(t.samples)-n:]...)
	}

	if t.targetSecs == 0 || now.Sub(t.lastPaceAlert) < t.cfg.AlertInterval {
		return
	}
	dev := int(t.smoothed) - t.targetSecs
	switch {
	case dev > t.cfg.PaceToleranceSecs:
		t.lastPaceAlert = now
		t.cue(Cue{
			Kind:    CuePace,
			Message: fmt.Sprintf("Pace %s, target %s. Pick it up.", pace.FromSeconds(t.smoothed), t.cfg.TargetPace),
			At:      now,
		})
	case dev < -t.cfg.PaceToleranceSecs:
		t.lastPaceAlert = now
		t.cue(Cue{
			Kind:    CuePace,
			Message: fmt.Sprintf("Pace %s, target %s. Ease off.", pace.FromSeconds(t.smoothed), t.cfg.TargetPace),
			At:      now,
		})
	}
}

// Snapshot returns the current live view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := pace.None
	if len(t.samples) > 0 {
		current = pace.FromSeconds(t.samples[len(t.samples)-1].secPerMile)
	}
	smoothed := pace.None
	if t.smoothed > 0 {
		smoothed = pace.FromSeconds(t.smoothed)
	}
	avg := pace.None
	if t.distanceMiles > 0 {
		avg = pace.FromSeconds(float64(t.elapsed) / t.distanceMiles)
	}
	return Snapshot{
		SessionID:      t.sessionID,
		ElapsedSeconds: t.elapsed,
		DistanceMiles:  t.distanceMiles,
		CurrentPace:    current,
		SmoothedPace:   smoothed,
		AvgPace:        avg,
		HeartRate:      t.hrLatest,
		Zone:           t.zone,
	}
}

// Finish closes the session and returns its record. Average pace falls
// back to the smoothed pace when no distance accumulated, and to "0:00"
// when there is no pace data at all. Heart-rate aggregates are omitted
// when no samples arrived.
func (t *Tracker) Finish() (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateTracking {
		return Session{}, ErrNotTracking
	}
	t.state = stateFinished
	close(t.cues)

	avg := "0:00"
	switch {
	case t.distanceMiles > 0 && t.elapsed > 0:
		avg = pace.FromSeconds(float64(t.elapsed) / t.distanceMiles)
	case t.smoothed > 0:
		avg = pace.FromSeconds(t.smoothed)
	}

	s := Session{
		ID:               t.sessionID,
		UserID:           t.userID,
		StartedAt:        t.startedAt,
		EndedAt:          t.now(),
		ElapsedSeconds:   t.elapsed,
		DistanceMiles:    t.distanceMiles,
		AvgPace:          avg,
		Track:            t.track,
		HeartRateSamples: t.hrLog,
		PaceSamples:      t.paceLog,
	}
	if len(t.hrLog) > 0 {
		s.AvgHeartRate = t.hrSum / len(t.hrLog)
		s.MaxHeartRate = t.hrMax
	}
	return s, nil
}

// Cancel discards the session.
func (t *Tracker) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != stateTracking {
		return ErrNotTracking
	}
	t.state = stateCancelled
	close(t.cues)
	return nil
}

// cue queues a cue for delivery. Fire-and-forget: when the dispatcher
// cannot keep up the cue is dropped rather than stalling the caller.
func (t *Tracker) cue(c Cue) {
	if t.sink == nil {
		return
	}
	select {
	case t.cues <- c:
	default:
	}
}

var zoneCalc = physiology.NewCalculator(physiology.DefaultParams())

func physiologyZone(bpm, maxHR int) int {
	return zoneCalc.Zone(bpm, maxHR)
}

func formatElapsed(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
