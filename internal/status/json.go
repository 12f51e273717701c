package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details. System events published over MQTT
// deliberately omit the attempt timeline to keep heartbeat payloads small;
// the web endpoint carries it.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Gear          string       `json:"gear"`
	Fault         bool         `json:"fault"`
	ElapsedMs     int          `json:"elapsed_ms"`
	MarginMs      int          `json:"margin_ms"`
	AttemptID     string       `json:"attempt_id,omitempty"`
	LastCommand   string       `json:"last_command,omitempty"`
	LastOutcome   string       `json:"last_outcome,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"command_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of command counts.
type CountsJSON struct {
	Deployments int `json:"deployments"`
	Retractions int `json:"retractions"`
	Breaches    int `json:"breaches"`
	Rejections  int `json:"rejections"`
	Resets      int `json:"resets"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs        int64  `json:"poll_ms"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	RequirementMs int64  `json:"requirement_ms"`
	Realtime      bool   `json:"realtime"`
	Broker        string `json:"broker"`
	HTTPAddr      string `json:"http_addr"`
	WSBroker      string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.GearState)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		Gear:          state,
		Fault:         snap.FaultDetected,
		ElapsedMs:     snap.ElapsedMs,
		MarginMs:      snap.MarginMs,
		AttemptID:     snap.AttemptID,
		LastCommand:   snap.LastCommand,
		LastOutcome:   string(snap.LastOutcome),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Deployments: snap.Counts.Deployments,
			Retractions: snap.Counts.Retractions,
			Breaches:    snap.Counts.Breaches,
			Rejections:  snap.Counts.Rejections,
			Resets:      snap.Counts.Resets,
		},
		Config: ConfigJSON{
			PollMs:        snap.Config.PollMs,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			RequirementMs: snap.Config.RequirementMs,
			Realtime:      snap.Config.Realtime,
			Broker:        snap.Config.Broker,
			HTTPAddr:      snap.Config.HTTPAddr,
			WSBroker:      snap.Config.WSBroker,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for programmatic consumers (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
