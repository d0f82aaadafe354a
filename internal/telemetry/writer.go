// Package telemetry records readings and transitions to InfluxDB. It is
// optional: a nil *Writer is a no-op, so the daemon runs unchanged without
// a configured Influx endpoint. Writes go through the async WriteAPI and
// never block the control path.
package telemetry

import (
	"log"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/sweeney/mist-controller/internal/logic"
	"github.com/sweeney/mist-controller/internal/sensor"
)

// Config selects the InfluxDB endpoint. An empty URL disables telemetry.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Writer wraps the async write API and listens for its errors.
type Writer struct {
	client influxdb2.Client
	api    api.WriteAPI
}

// NewWriter connects the async writer, or returns nil when no URL is
// configured. Influx being down is not a startup failure: the client
// buffers and retries internally.
func NewWriter(cfg Config) *Writer {
	if cfg.URL == "" {
		return nil
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	w := &Writer{
		client: client,
		api:    client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	go func() {
		for err := range w.api.Errors() {
			if err != nil {
				log.Printf("influx write error: %v", err)
			}
		}
	}()
	return w
}

// WriteReading records one calibrated climate sample.
func (w *Writer) WriteReading(r sensor.Reading, ts time.Time) {
	if w == nil {
		return
	}
	p := influxdb2.NewPoint("climate",
		nil,
		map[string]interface{}{
			"temperature": r.Temperature,
			"humidity":    r.Humidity,
		},
		ts)
	w.api.WritePoint(p)
}

// WriteEvent records one transition event.
func (w *Writer) WriteEvent(e logic.Event) {
	if w == nil {
		return
	}
	p := influxdb2.NewPoint("transition",
		map[string]string{"type": string(e.Type)},
		map[string]interface{}{
			"humidity":    e.Humidity,
			"water_empty": e.Empty,
			"countdown":   e.Countdown,
		},
		e.Timestamp)
	w.api.WritePoint(p)
}

// Close flushes pending points and shuts the client down.
func (w *Writer) Close() {
	if w == nil {
		return
	}
	w.api.Flush()
	w.client.Close()
}
