package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gear-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"stateClass": func(s string) string {
		switch s {
		case "DOWN_LOCKED":
			return "down"
		case "UP_LOCKED":
			return "up"
		case "FAILURE_DETECTED":
			return "fault"
		case "TRANSITIONING_DOWN", "TRANSITIONING_UP":
			return "transit"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Gear Controller</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.down { color: green; font-weight: bold; }
.up { color: #444; font-weight: bold; }
.transit { color: orange; font-weight: bold; }
.fault { color: red; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Gear Controller{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Gear</h2>
<table>
<tr><th>State</th><td id="gear-state" class="{{stateClass (stateOrUnknown (printf "%s" .GearState))}}">{{stateOrUnknown (printf "%s" .GearState)}}</td></tr>
<tr><th>Fault</th><td class="{{if .FaultDetected}}fault{{end}}">{{if .FaultDetected}}DETECTED{{else}}none{{end}}</td></tr>
<tr><th>Deployment Time</th><td>{{.ElapsedMs}}ms</td></tr>
<tr><th>Margin</th><td>{{.MarginMs}}ms</td></tr>
{{if .LastCommand}}<tr><th>Last Command</th><td>{{.LastCommand}} — {{.LastOutcome}}</td></tr>{{end}}
{{if .AttemptID}}<tr><th>Attempt</th><td>{{.AttemptID}}</td></tr>{{end}}
</table>

{{if .Timeline}}
<h2>Audit Trail (last attempt)</h2>
<table>
<tr><th>t (ms)</th><th>State</th><th>Event</th></tr>
{{range .Timeline}}<tr><td>{{.TimeMs}}</td><td>{{.State}}</td><td>{{.Description}}</td></tr>
{{end}}</table>
{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Command Counts</h2>
<table>
<tr><th>Deployments</th><td>{{.Counts.Deployments}}</td></tr>
<tr><th>Retractions</th><td>{{.Counts.Retractions}}</td></tr>
<tr><th>Breaches</th><td>{{.Counts.Breaches}}</td></tr>
<tr><th>Rejections</th><td>{{.Counts.Rejections}}</td></tr>
<tr><th>Resets</th><td>{{.Counts.Resets}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Requirement</th><td>{{.Config.RequirementMs}}ms</td></tr>
<tr><th>Pacing</th><td>{{if .Config.Realtime}}realtime{{else}}instant{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "avionics/gear/controller/events";
  var dot = document.getElementById("live-dot");
  var gearEl = document.getElementById("gear-state");

  function classFor(state) {
    if (state === "DOWN_LOCKED") return "down";
    if (state === "UP_LOCKED") return "up";
    if (state === "FAILURE_DETECTED") return "fault";
    if (state === "TRANSITIONING_DOWN" || state === "TRANSITIONING_UP") return "transit";
    return "unknown";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.gear) {
        gearEl.textContent = msg.gear.state;
        gearEl.className = classFor(msg.gear.state);
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
