package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/mist-controller/internal/status"
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
	"label": status.Label,
	"onoff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
	"okempty": func(empty bool) string {
		if empty {
			return "EMPTY"
		}
		return "OK"
	},
}).Parse(indexHTML))

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("render status page: %v", err)
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="2">
<title>mist-controller</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
h1 { font-size: 1.2em; }
table { border-collapse: collapse; }
td { padding: 0.2em 1em 0.2em 0; }
td.v { color: #8f8; }
td.warn { color: #f88; }
.dim { color: #777; }
</style>
</head>
<body>
<h1>mist-controller</h1>
<table>
<tr><td>TEMP</td><td class="v">{{printf "%.1f" .Reading.Temperature}} C</td></tr>
<tr><td>HUMI</td><td class="v">{{printf "%.1f" .Reading.Humidity}} %</td></tr>
<tr><td>PRESET</td><td class="v">{{printf "%.1f" .Config.Preset}} %</td></tr>
<tr><td>WATER</td><td class="{{if .Empty}}warn{{else}}v{{end}}">{{okempty .Empty}}</td></tr>
<tr><td>STATUS</td><td class="v">{{label .}}</td></tr>
</table>
<p class="dim">
pump {{onoff .Actuators.PumpOn}} (duty {{.Actuators.PumpDuty}}) ·
valve {{onoff .Actuators.ValveOpen}} ·
phase {{.Actuators.Phase}} ·
countdown {{.Actuators.Countdown}}s
</p>
<p class="dim">
uptime {{uptime .Uptime}} ·
mqtt {{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}}) ·
pump on/off {{.Counts.PumpOn}}/{{.Counts.PumpOff}} ·
fills {{.Counts.ValveOpen}} ·
empty/ok {{.Counts.WaterEmpty}}/{{.Counts.WaterOK}}
</p>
<p class="dim"><a href="/index.json">json</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`
