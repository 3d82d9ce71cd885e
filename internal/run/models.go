package run

import "time"

// GeoFix is one GPS reading from the device.
type GeoFix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// HeartRateSample is one heart-rate reading in beats per minute. Zone
// is assigned on ingest from the runner's max heart rate.
type HeartRateSample struct {
	BPM       int       `json:"bpm"`
	Timestamp time.Time `json:"timestamp"`
	Zone      int       `json:"zone,omitempty"`
}

// PaceSample is one instantaneous pace reading derived from a GPS leg.
type PaceSample struct {
	SecPerMile float64   `json:"sec_per_mile"`
	Timestamp  time.Time `json:"timestamp"`
}

// Cue kinds. Milestones fire once per mile/kilometer boundary; pace and
// heart-rate alerts are rate limited.
const (
	CueMilestone = "milestone"
	CuePace      = "pace"
	CueHeartRate = "heart_rate"
)

// Cue is an audio prompt for the runner, delivered over the live stream.
type Cue struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// CueSink receives cues as the tracker emits them.
type CueSink interface {
	Cue(sessionID string, cue Cue)
}

// Snapshot is the live view of a tracked run, pushed to subscribers on
// every tick.
type Snapshot struct {
	SessionID      string  `json:"session_id"`
	ElapsedSeconds int     `json:"elapsed_seconds"`
	DistanceMiles  float64 `json:"distance_miles"`
	CurrentPace    string  `json:"current_pace"`  // instantaneous, "M:SS"/mile
	SmoothedPace   string  `json:"smoothed_pace"` // trailing-window mean
	AvgPace        string  `json:"avg_pace"`      // session-to-date, "--:--" until distance > 0
	HeartRate      int     `json:"heart_rate,omitempty"`
	Zone           int     `json:"zone,omitempty"`
}

// Session is the immutable record of a finished run.
type Session struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	StartedAt        time.Time         `json:"started_at"`
	EndedAt          time.Time         `json:"ended_at"`
	ElapsedSeconds   int               `json:"elapsed_seconds"`
	DistanceMiles    float64           `json:"distance_miles"`
	AvgPace          string            `json:"avg_pace"`
	AvgHeartRate     int               `json:"avg_heart_rate,omitempty"`
	MaxHeartRate     int               `json:"max_heart_rate,omitempty"`
	Track            []GeoFix          `json:"gps_track,omitempty"`
	HeartRateSamples []HeartRateSample `json:"heart_rate_samples,omitempty"`
	PaceSamples      []PaceSample      `json:"pace_samples,omitempty"`
}
