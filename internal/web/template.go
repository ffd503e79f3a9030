package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rotary-dial/internal/status"
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
	"orDash": func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Rotary Dial</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.dial { color: green; font-weight: bold; }
.menu { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Rotary Dial</h1>

<h2>Dialer</h2>
<table>
<tr><th>Mode</th><td id="state" class="{{if eq .State.String "DIAL"}}dial{{else}}menu{{end}}">{{.State}}</td></tr>
<tr><th>Pending</th><td>{{orDash .Pending.String}} ({{.PendingCount}} digits, slot {{.Target}})</td></tr>
<tr><th>Last digit</th><td>{{if ge .LastDigit 0}}{{.LastDigit}}{{else}}—{{end}}</td></tr>
<tr><th>Last wake</th><td>{{orDash .LastWake}}</td></tr>
</table>
{{if .Slots}}
<h2>Speed Dial</h2>
<table>
{{range .Slots}}<tr><th>{{if .Volatile}}Redial{{else}}Slot {{.Slot}}{{end}} (dial {{.Position}})</th><td>{{orDash .Number}}</td></tr>
{{end}}</table>
{{end}}
<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{orDash .Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Gestures</th><td>{{.Counts.Gestures}}</td></tr>
<tr><th>Digits</th><td>{{.Counts.Digits}}</td></tr>
<tr><th>Discarded</th><td>{{.Counts.Discarded}}</td></tr>
<tr><th>Escalations</th><td>{{.Counts.Escalations}}</td></tr>
<tr><th>Commits</th><td>{{.Counts.Commits}}</td></tr>
<tr><th>Dial outs</th><td>{{.Counts.DialOuts}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sampling</th><td>{{.Config.SampleUs}}µs</td></tr>
<tr><th>Settle</th><td>{{.Config.SettleMs}}ms</td></tr>
<tr><th>Hold</th><td>{{.Config.HoldMs}}ms</td></tr>
<tr><th>Inactivity</th><td>{{.Config.InactivityMs}}ms</td></tr>
<tr><th>Dial</th><td>{{if .Config.Reversed}}reversed{{else}}standard{{end}}{{if not .Config.SpecialFunctions}}, no special functions{{end}}</td></tr>
<tr><th>GPIO</th><td>{{.Config.Chip}} dial={{.Config.PinDial}} pulse={{.Config.PinPulse}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/slots.json">Slots</a> · <a href="/metrics">Metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, slots []SlotJSON) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Slots  []SlotJSON
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Slots:    slots,
	}
	indexTmpl.Execute(w, data)
}
