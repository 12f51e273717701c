package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/gear-controller/internal/gear"
	"github.com/sweeney/gear-controller/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:        250,
		HeartbeatMs:   900000,
		RequirementMs: 8000,
		Broker:        "tcp://192.168.1.200:1883",
		HTTPAddr:      ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(gear.StateDownLocked, false, 7500, 500, gear.Counts{Deployments: 2})
	tr.SetLastCommand("GEAR_DOWN", gear.OutcomeSuccess, "cnh38ka2p0001", []gear.Event{
		{TimeMs: 0, State: gear.StateUpLocked, Description: "Deployment command issued"},
		{TimeMs: 200, State: gear.StateTransitioningDown, Description: "Pump ready (200ms)"},
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Gear != "DOWN_LOCKED" {
		t.Errorf("gear: got %q, want DOWN_LOCKED", sj.Status.Gear)
	}
	if sj.Status.ElapsedMs != 7500 {
		t.Errorf("elapsed_ms: got %d, want 7500", sj.Status.ElapsedMs)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.Deployments != 2 {
		t.Errorf("deployments: got %d, want 2", sj.Status.Counts.Deployments)
	}
	if len(sj.Status.Timeline) != 2 {
		t.Fatalf("timeline length: got %d, want 2", len(sj.Status.Timeline))
	}
	if sj.Status.Timeline[1].Event != "Pump ready (200ms)" {
		t.Errorf("timeline[1]: got %q", sj.Status.Timeline[1].Event)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(gear.StateFailureDetected, true, 14500, -6500, gear.Counts{Breaches: 1})
	tr.SetLastCommand("GEAR_DOWN", gear.OutcomeBreach, "cnh38ka2p0002", []gear.Event{
		{TimeMs: 14500, State: gear.StateFailureDetected, Description: "Requirement breach detected"},
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	html := string(body)
	if !strings.Contains(html, "FAILURE_DETECTED") {
		t.Error("page should show the fault state")
	}
	if !strings.Contains(html, "Requirement breach detected") {
		t.Error("page should show the audit trail")
	}
	if !strings.Contains(html, "14500") {
		t.Error("page should show the elapsed time")
	}
}

func TestIndexPageNoTimeline(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "Audit Trail") {
		t.Error("audit trail section should be absent before any deployment")
	}
}

func TestNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
