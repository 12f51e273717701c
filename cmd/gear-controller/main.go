// Command gear-controller runs the landing gear deployment controller: it
// polls the gear selector lever, sequences deployments against the timing
// requirement, drives the indicator lamps, and publishes command reports to
// MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/gear-controller/internal/gear"
	"github.com/sweeney/gear-controller/internal/mqtt"
	"github.com/sweeney/gear-controller/internal/panel"
	"github.com/sweeney/gear-controller/internal/status"
	"github.com/sweeney/gear-controller/internal/web"
)

func main() {
	poll := flag.Duration("poll", 250*time.Millisecond, "Lever polling interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	pinLever := flag.Int("pin-lever", panel.DefaultPinLever, "BCM pin number for the gear selector lever")
	pinDownLamp := flag.Int("pin-down-lamp", panel.DefaultPinDownLamp, "BCM pin number for the down-and-locked lamp")
	pinWarnLamp := flag.Int("pin-warn-lamp", panel.DefaultPinWarnLamp, "BCM pin number for the gear fault lamp")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	pump := flag.Int("pump", gear.BaselineConfig.PumpLatencyMs, "Hydraulic pump latency (ms)")
	speed := flag.Float64("speed", gear.BaselineConfig.ActuatorSpeedPer100ms, "Actuator speed (mm per 100ms)")
	distance := flag.Int("distance", gear.BaselineConfig.ExtensionDistanceMm, "Extension distance (mm)")
	lock := flag.Int("lock", gear.BaselineConfig.LockTimeMs, "Down-lock engagement time (ms)")
	requirement := flag.Int("requirement", gear.BaselineConfig.RequirementTimeMs, "Maximum cumulative deployment time (ms)")

	realtime := flag.Bool("realtime", true, "Pace deploy phases at wall-clock speed")
	printState := flag.Bool("print-state", false, "Print current lever position and exit")
	report := flag.Bool("report", false, "Run one deployment against the configured profile, print the verification report, and exit")

	flag.Parse()

	cfg := gear.Config{
		PumpLatencyMs:         *pump,
		ActuatorSpeedPer100ms: *speed,
		ExtensionDistanceMm:   *distance,
		LockTimeMs:            *lock,
		RequirementTimeMs:     *requirement,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid profile: %v", err)
	}

	if *report {
		if !runReport(os.Stdout, cfg) {
			os.Exit(1)
		}
		return
	}

	ws := resolveWSBroker(*wsBroker, *broker)
	if err := run(cfg, *poll, *heartbeat, *broker, *httpAddr, ws, *pinLever, *pinDownLamp, *pinWarnLamp, *realtime, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg gear.Config, poll, heartbeat time.Duration, broker, httpAddr, wsBroker string, pinLever, pinDownLamp, pinWarnLamp int, realtime, printState bool) error {
	// Initialize panel hardware
	pnl, err := panel.NewRealPanel(pinLever, pinDownLamp, pinWarnLamp)
	if err != nil {
		return fmt.Errorf("init panel: %w", err)
	}
	defer pnl.Close()

	// Print state mode
	if printState {
		lever, err := pnl.Read()
		if err != nil {
			return fmt.Errorf("read lever: %w", err)
		}
		fmt.Printf("Lever: %s\n", lever)
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize the controller. Realtime pacing reproduces the physical
	// actuation timing; without it the phases complete instantly.
	var pace gear.PaceFunc
	if realtime {
		pace = time.Sleep
	}
	ctrl := gear.NewController(cfg, pace)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:        poll.Milliseconds(),
		HeartbeatMs:   heartbeat.Milliseconds(),
		RequirementMs: int64(cfg.RequirementTimeMs),
		Realtime:      realtime,
		Broker:        broker,
		HTTPAddr:      httpAddr,
		WSBroker:      wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: poll=%v requirement=%dms realtime=%v broker=%s heartbeat=%v",
		poll, cfg.RequirementTimeMs, realtime, broker, heartbeat)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, pnl, pnl, publisher, publisher, tracker, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *gear.Controller, lever panel.Reader, lamps panel.Lamps, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()
	var lastLever panel.Lever
	baselined := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			pos, err := lever.Read()
			if err != nil {
				log.Printf("lever read error: %v", err)
				continue
			}

			if !baselined {
				// First sample establishes the lever baseline; commands
				// fire on changes only, so a lever already in DOWN at
				// startup does not trigger a deployment by itself.
				lastLever = pos
				baselined = true
			} else if pos != lastLever {
				lastLever = pos
				command, res := dispatch(ctrl, pos)
				log.Printf("%s: %s state=%s elapsed=%dms", command, res.Outcome, res.State, res.ElapsedMs)

				report := mqtt.Report{
					Timestamp: now(),
					Command:   command,
					AttemptID: ctrl.AttemptID(),
					Outcome:   res.Outcome,
					Reason:    res.Reason,
					State:     res.State,
					ElapsedMs: res.ElapsedMs,
					MarginMs:  ctrl.MarginMs(),
					Timeline:  ctrl.Timeline(),
				}
				if err := publisher.Publish(report); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
				if tracker != nil {
					tracker.SetLastCommand(command, res.Outcome, ctrl.AttemptID(), ctrl.Timeline())
				}
			}

			if err := lamps.Set(ctrl.State() == gear.StateDownLocked, ctrl.State() == gear.StateFailureDetected); err != nil {
				log.Printf("lamp error: %v", err)
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				counts := ctrl.CountsSnapshot()
				log.Printf("heartbeat: state=%s deployments=%d retractions=%d breaches=%d rejections=%d",
					ctrl.State(), counts.Deployments, counts.Retractions, counts.Breaches, counts.Rejections)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(ctrl.State(), ctrl.FaultDetected(), ctrl.ElapsedMs(), ctrl.MarginMs(), counts)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(ctrl.State(), ctrl.FaultDetected(), ctrl.ElapsedMs(), ctrl.MarginMs(), ctrl.CountsSnapshot())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// dispatch maps a lever movement to a controller command. Moving the lever
// UP while a fault is latched is the operator's acknowledgment and maps to
// Reset; otherwise UP retracts and DOWN deploys.
func dispatch(ctrl *gear.Controller, pos panel.Lever) (string, gear.Result) {
	if pos == panel.LeverDown {
		return "GEAR_DOWN", ctrl.Deploy()
	}
	if ctrl.State() == gear.StateFailureDetected {
		return "RESET", ctrl.Reset()
	}
	return "GEAR_UP", ctrl.Retract()
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
