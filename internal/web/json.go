package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gear-controller/internal/status"
)

// StatusJSON is the JSON representation of the daemon status served at
// /index.json. Unlike the MQTT system event payload it includes the full
// audit timeline of the last deployment attempt.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Gear          string          `json:"gear"`
	Fault         bool            `json:"fault"`
	ElapsedMs     int             `json:"elapsed_ms"`
	MarginMs      int             `json:"margin_ms"`
	AttemptID     string          `json:"attempt_id,omitempty"`
	LastCommand   string          `json:"last_command,omitempty"`
	LastOutcome   string          `json:"last_outcome,omitempty"`
	Timeline      []TimelineJSON  `json:"timeline,omitempty"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	StartTime     string          `json:"start_time"`
	Timestamp     string          `json:"timestamp"`
	MQTT          MQTTStatus      `json:"mqtt"`
	Counts        CountsJSON      `json:"command_counts"`
	Network       *NetworkJSON    `json:"network,omitempty"`
	Config        ConfigJSON      `json:"config"`
}

// TimelineJSON is one audit trail entry.
type TimelineJSON struct {
	TimeMs int    `json:"time_ms"`
	State  string `json:"state"`
	Event  string `json:"event"`
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
}

func formatJSON(snap status.Snapshot) []byte {
	state := string(snap.GearState)
	if state == "" {
		state = "UNKNOWN"
	}

	sj := StatusJSON{
		Status: StatusInner{
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
			},
		},
	}

	for _, e := range snap.Timeline {
		sj.Status.Timeline = append(sj.Status.Timeline, TimelineJSON{
			TimeMs: e.TimeMs,
			State:  string(e.State),
			Event:  e.Description,
		})
	}

	if snap.Network != nil {
		sj.Status.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}
