// Package status provides a thread-safe status tracker for the
// gear-controller daemon. It is designed to be read by HTTP handlers and the
// MQTT heartbeat path.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/gear-controller/internal/gear"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs        int64
	HeartbeatMs   int64
	RequirementMs int64
	Realtime      bool // whether deploy phases run at wall-clock speed
	Broker        string
	HTTPAddr      string
	WSBroker      string // Websocket broker URL for browser MQTT (empty = disabled)
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	GearState     gear.State
	FaultDetected bool
	ElapsedMs     int
	MarginMs      int
	AttemptID     string
	LastCommand   string // e.g., "GEAR_DOWN"
	LastOutcome   gear.Outcome
	Timeline      []gear.Event // audit trail of the last deployment attempt
	Counts        gear.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			GearState: gear.StateUpLocked,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the controller-derived fields.
// Called from runLoop on every tick.
func (t *Tracker) Update(state gear.State, fault bool, elapsedMs, marginMs int, counts gear.Counts) {
	t.mu.Lock()
	t.snap.GearState = state
	t.snap.FaultDetected = fault
	t.snap.ElapsedMs = elapsedMs
	t.snap.MarginMs = marginMs
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetLastCommand records the most recent command outcome and its audit
// timeline. The timeline slice must already be a copy the caller gives up.
func (t *Tracker) SetLastCommand(command string, outcome gear.Outcome, attemptID string, timeline []gear.Event) {
	t.mu.Lock()
	t.snap.LastCommand = command
	t.snap.LastOutcome = outcome
	t.snap.AttemptID = attemptID
	t.snap.Timeline = timeline
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
