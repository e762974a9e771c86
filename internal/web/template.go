package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/countdown-timer/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Countdown Timer</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.remaining { font-size: 2em; font-weight: bold; }
.paused { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Countdown Timer<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Timer</h2>
<table>
<tr><th>State</th><td id="state">{{stateOrUnknown (printf "%s" .State)}}</td></tr>
<tr><th>Remaining</th><td id="remaining" class="remaining">{{.Remaining}}</td></tr>
<tr><th>Paused</th><td id="paused" class="{{if .Paused}}paused{{end}}">{{if .Paused}}yes{{else}}no{{end}}</td></tr>
<tr><th>Session</th><td id="session">{{if .SessionID}}{{.SessionID}}{{else}}-{{end}}</td></tr>
</table>

<h2>Indicator</h2>
<table>
<tr><th>ADC</th><td id="adc">{{.ADC}}</td></tr>
<tr><th>Duty</th><td id="duty">{{.Duty}}</td></tr>
<tr><th>Mode</th><td id="mode">{{.Display.IndicatorName}}</td></tr>
</table>

<h2>Sessions</h2>
<table>
<tr><th>Started</th><td id="started">{{.Counts.Started}}</td></tr>
<tr><th>Completed</th><td id="completed">{{.Counts.Completed}}</td></tr>
<tr><th>Aborted</th><td id="aborted">{{.Counts.Aborted}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>PWM tick</th><td>{{.Config.PWMTickUs}}us</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
<tr><th>Hardware</th><td>{{if .Config.Simulate}}simulated{{else}}gpio{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function set(id, v) { document.getElementById(id).textContent = v; }
  function setDot(cls, title) { dot.className = "live-dot " + cls; dot.title = title; }

  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws?interval=500ms");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() { setDot("err", "offline"); setTimeout(connect, 5000); };
    ws.onmessage = function(ev) {
      try {
        var msg = JSON.parse(ev.data);
        if (msg.type !== "status") { return; }
        var s = msg.data.status;
        set("state", s.state);
        set("remaining", s.remaining);
        set("paused", s.paused ? "yes" : "no");
        document.getElementById("paused").className = s.paused ? "paused" : "";
        set("session", s.session || "-");
        set("adc", s.indicator.adc);
        set("duty", s.indicator.duty_ticks);
        set("mode", s.indicator.mode);
        set("started", s.session_counts.started);
        set("completed", s.session_counts.completed);
        set("aborted", s.session_counts.aborted);
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
