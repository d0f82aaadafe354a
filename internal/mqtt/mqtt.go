// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/mist-controller/internal/logic"
)

// Topic is the MQTT topic for actuator and level transition events.
const Topic = "garden/mist/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "garden/mist/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a transition event to the broker.
	// Returns error if publishing fails (must not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the broker should retain the message
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Mist MistPayload `json:"mist"`
}

// MistPayload contains the transition event details.
type MistPayload struct {
	Timestamp   string  `json:"timestamp"`
	Event       string  `json:"event"`
	Temperature float64 `json:"temperature_c"`
	Humidity    float64 `json:"humidity_pct"`
	WaterEmpty  bool    `json:"water_empty"`
	Countdown   int     `json:"countdown"`
}

// FormatPayload creates the JSON payload for a transition event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Mist: MistPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339),
			Event:       string(event.Type),
			Temperature: event.Temperature,
			Humidity:    event.Humidity,
			WaterEmpty:  event.Empty,
			Countdown:   event.Countdown,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for simple system
// events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
