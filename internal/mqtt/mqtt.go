// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gear-controller/internal/gear"
)

// Topic is the MQTT topic for gear command reports.
const Topic = "avionics/gear/controller/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "avionics/gear/controller/system"

// Report is published after every completed gear command. It carries the
// controller's exposed state plus the audit timeline so downstream consumers
// can render logs or charts without touching the controller.
type Report struct {
	Timestamp time.Time
	Command   string // e.g., "GEAR_DOWN", "GEAR_UP", "RESET"
	AttemptID string
	Outcome   gear.Outcome
	Reason    string // rejection reason, if any
	State     gear.State
	ElapsedMs int
	MarginMs  int
	Timeline  []gear.Event
}

// Publisher publishes gear telemetry to MQTT.
type Publisher interface {
	// Publish sends a command report to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(report Report) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Gear GearPayload `json:"gear"`
}

// GearPayload contains the gear command report details.
type GearPayload struct {
	Timestamp string          `json:"timestamp"`
	Command   string          `json:"command"`
	AttemptID string          `json:"attempt_id,omitempty"`
	Outcome   string          `json:"outcome"`
	Reason    string          `json:"reason,omitempty"`
	State     string          `json:"state"`
	ElapsedMs int             `json:"elapsed_ms"`
	MarginMs  int             `json:"margin_ms"`
	Timeline  []TimelineEntry `json:"timeline,omitempty"`
}

// TimelineEntry is the JSON form of one audit trail event.
type TimelineEntry struct {
	TimeMs int    `json:"time_ms"`
	State  string `json:"state"`
	Event  string `json:"event"`
}

// FormatPayload creates the JSON payload for a command report.
func FormatPayload(report Report) ([]byte, error) {
	p := Payload{
		Gear: GearPayload{
			Timestamp: report.Timestamp.UTC().Format(time.RFC3339),
			Command:   report.Command,
			AttemptID: report.AttemptID,
			Outcome:   string(report.Outcome),
			Reason:    report.Reason,
			State:     string(report.State),
			ElapsedMs: report.ElapsedMs,
			MarginMs:  report.MarginMs,
		},
	}
	for _, e := range report.Timeline {
		p.Gear.Timeline = append(p.Gear.Timeline, TimelineEntry{
			TimeMs: e.TimeMs,
			State:  string(e.State),
			Event:  e.Description,
		})
	}
	return json.Marshal(p)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
