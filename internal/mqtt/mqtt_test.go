package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/gear-controller/internal/gear"
)

func sampleReport() Report {
	return Report{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Command:   "GEAR_DOWN",
		AttemptID: "cnh38ka2p0001",
		Outcome:   gear.OutcomeSuccess,
		State:     gear.StateDownLocked,
		ElapsedMs: 7500,
		MarginMs:  500,
		Timeline: []gear.Event{
			{TimeMs: 0, State: gear.StateUpLocked, Description: "Deployment command issued"},
			{TimeMs: 200, State: gear.StateTransitioningDown, Description: "Pump ready (200ms)"},
			{TimeMs: 7200, State: gear.StateTransitioningDown, Description: "Extension complete (7000ms)"},
			{TimeMs: 7500, State: gear.StateTransitioningDown, Description: "Lock engaged (300ms)"},
			{TimeMs: 7500, State: gear.StateDownLocked, Description: "Deployment complete - SUCCESS"},
		},
	}
}

func TestFormatPayload(t *testing.T) {
	data, err := FormatPayload(sampleReport())
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if p.Gear.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp: got %q, want 2026-03-14T09:26:53Z", p.Gear.Timestamp)
	}
	if p.Gear.Command != "GEAR_DOWN" {
		t.Errorf("command: got %q, want GEAR_DOWN", p.Gear.Command)
	}
	if p.Gear.Outcome != "SUCCESS" {
		t.Errorf("outcome: got %q, want SUCCESS", p.Gear.Outcome)
	}
	if p.Gear.State != "DOWN_LOCKED" {
		t.Errorf("state: got %q, want DOWN_LOCKED", p.Gear.State)
	}
	if p.Gear.ElapsedMs != 7500 {
		t.Errorf("elapsed_ms: got %d, want 7500", p.Gear.ElapsedMs)
	}
	if p.Gear.MarginMs != 500 {
		t.Errorf("margin_ms: got %d, want 500", p.Gear.MarginMs)
	}
	if len(p.Gear.Timeline) != 5 {
		t.Fatalf("timeline length: got %d, want 5", len(p.Gear.Timeline))
	}
	if p.Gear.Timeline[1].Event != "Pump ready (200ms)" {
		t.Errorf("timeline[1] event: got %q", p.Gear.Timeline[1].Event)
	}
	if p.Gear.Timeline[1].TimeMs != 200 {
		t.Errorf("timeline[1] time: got %d, want 200", p.Gear.Timeline[1].TimeMs)
	}
	if p.Gear.Timeline[3].State != "TRANSITIONING_DOWN" {
		t.Errorf("timeline[3] state: got %q", p.Gear.Timeline[3].State)
	}
}

func TestFormatPayloadRejection(t *testing.T) {
	report := Report{
		Timestamp: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Command:   "GEAR_DOWN",
		Outcome:   gear.OutcomeRejected,
		Reason:    "already deployed",
		State:     gear.StateDownLocked,
	}
	data, err := FormatPayload(report)
	if err != nil {
		t.Fatalf("FormatPayload: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.Gear.Reason != "already deployed" {
		t.Errorf("reason: got %q, want %q", p.Gear.Reason, "already deployed")
	}
	if p.Gear.Timeline != nil {
		t.Errorf("rejection should carry no timeline, got %d entries", len(p.Gear.Timeline))
	}

	// attempt_id and timeline must be omitted entirely, not null/empty.
	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, present := raw["gear"]["attempt_id"]; present {
		t.Error("attempt_id should be omitted when empty")
	}
	if _, present := raw["gear"]["timeline"]; present {
		t.Error("timeline should be omitted when empty")
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}
	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}

	var p SystemPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal system payload: %v", err)
	}
	if p.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", p.System.Event)
	}
	if p.System.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", p.System.Reason)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "HEARTBEAT",
		RawPayload: raw,
	}
	data, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("FormatSystemPayload: %v", err)
	}
	if string(data) != string(raw) {
		t.Errorf("raw payload not returned directly: got %s", data)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()
	report := sampleReport()

	if err := f.Publish(report); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(f.Reports) != 1 {
		t.Fatalf("reports: got %d, want 1", len(f.Reports))
	}
	if f.Reports[0].AttemptID != report.AttemptID {
		t.Errorf("attempt ID: got %q, want %q", f.Reports[0].AttemptID, report.AttemptID)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("payloads: got %d, want 1", len(f.Payloads))
	}

	if err := f.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	if len(f.SystemEvents) != 1 {
		t.Fatalf("system events: got %d, want 1", len(f.SystemEvents))
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	if err := f.Publish(sampleReport()); err == nil {
		t.Error("expected configured publish error")
	}
	if len(f.Reports) != 0 {
		t.Error("failed publish should not be recorded")
	}

	f.PublishSystemError = errors.New("broker down")
	if err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}); err == nil {
		t.Error("expected configured system publish error")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(sampleReport())
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()
	if len(f.Reports) != 0 || len(f.SystemEvents) != 0 || f.Closed || f.Connected {
		t.Error("Reset should clear all recorded state")
	}
}
