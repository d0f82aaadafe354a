// Package metrics exposes the daemon's Prometheus instrumentation. The
// collectors are package-level: the daemon is a single process and the
// loops record into them directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Temperature is the last calibrated temperature in degrees Celsius.
	Temperature = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mist",
		Name:      "temperature_celsius",
		Help:      "Last calibrated temperature reading.",
	})

	// Humidity is the last calibrated relative humidity in percent.
	Humidity = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mist",
		Name:      "humidity_percent",
		Help:      "Last calibrated relative humidity reading.",
	})

	// WaterEmpty is 1 while the debounced reservoir state is empty.
	WaterEmpty = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mist",
		Name:      "water_empty",
		Help:      "Debounced reservoir-empty state (0/1).",
	})

	// PumpDuty is the commanded pump PWM duty (0-255).
	PumpDuty = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mist",
		Name:      "pump_duty",
		Help:      "Commanded pump PWM duty, 0-255.",
	})

	// ValveOpen is 1 while the refill valve is commanded open.
	ValveOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mist",
		Name:      "valve_open",
		Help:      "Refill valve state (0/1).",
	})

	// PumpStarts counts pump run phases started.
	PumpStarts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mist",
		Name:      "pump_starts_total",
		Help:      "Pump run phases started.",
	})

	// ValveFills counts refill cycles started.
	ValveFills = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mist",
		Name:      "valve_fills_total",
		Help:      "Reservoir refill cycles started.",
	})

	// SensorErrors counts discarded sensor samples.
	SensorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mist",
		Name:      "sensor_errors_total",
		Help:      "Sensor samples discarded as invalid or unreadable.",
	})

	// LevelFlips counts debounced level-state changes.
	LevelFlips = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mist",
		Name:      "level_flips_total",
		Help:      "Debounced reservoir-state changes.",
	})

	// PublishFailures counts MQTT publishes that returned an error.
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mist",
		Name:      "mqtt_publish_failures_total",
		Help:      "MQTT publishes that failed after retry/buffering.",
	})

	// Ticks counts control-loop iterations.
	Ticks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mist",
		Name:      "control_ticks_total",
		Help:      "Control loop iterations.",
	})
)

// SetBool sets a 0/1 gauge from a bool.
func SetBool(g prometheus.Gauge, v bool) {
	if v {
		g.Set(1)
	} else {
		g.Set(0)
	}
}
