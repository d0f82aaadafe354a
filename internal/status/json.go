package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Temperature   float64    `json:"temperature_c"`
	Humidity      float64    `json:"humidity_pct"`
	Preset        float64    `json:"preset_pct"`
	WaterEmpty    bool       `json:"water_empty"`
	Actuator      string     `json:"actuator"`
	Phase         string     `json:"phase"`
	PumpDuty      uint8      `json:"pump_duty"`
	ValveOpen     bool       `json:"valve_open"`
	Countdown     int        `json:"countdown"`
	Ready         bool       `json:"ready"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	PumpOn      int `json:"pump_on"`
	PumpOff     int `json:"pump_off"`
	ValveOpen   int `json:"valve_open"`
	ValveClosed int `json:"valve_closed"`
	WaterEmpty  int `json:"water_empty"`
	WaterOK     int `json:"water_ok"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs         int64   `json:"tick_ms"`
	SenseMs        int64   `json:"sense_ms"`
	DebounceCount  int     `json:"debounce_count"`
	Preset         float64 `json:"preset_pct"`
	HumidityOffset float64 `json:"humidity_offset"`
	PumpDuty       uint8   `json:"pump_duty"`
	PumpRunTicks   int     `json:"pump_run_ticks"`
	PumpRestTicks  int     `json:"pump_rest_ticks"`
	ValveRunTicks  int     `json:"valve_run_ticks"`
	Broker         string  `json:"broker"`
	HTTPAddr       string  `json:"http_addr"`
	InfluxURL      string  `json:"influx_url,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Temperature:   snap.Reading.Temperature,
		Humidity:      snap.Reading.Humidity,
		Preset:        snap.Config.Preset,
		WaterEmpty:    snap.Empty,
		Actuator:      Label(snap),
		Phase:         snap.Actuators.Phase.String(),
		PumpDuty:      snap.Actuators.PumpDuty,
		ValveOpen:     snap.Actuators.ValveOpen,
		Countdown:     snap.Actuators.Countdown,
		Ready:         snap.HaveReading,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			PumpOn:      snap.Counts.PumpOn,
			PumpOff:     snap.Counts.PumpOff,
			ValveOpen:   snap.Counts.ValveOpen,
			ValveClosed: snap.Counts.ValveClosed,
			WaterEmpty:  snap.Counts.WaterEmpty,
			WaterOK:     snap.Counts.WaterOK,
		},
		Config: ConfigJSON{
			TickMs:         snap.Config.TickMs,
			SenseMs:        snap.Config.SenseMs,
			DebounceCount:  snap.Config.DebounceCount,
			Preset:         snap.Config.Preset,
			HumidityOffset: snap.Config.HumidityOffset,
			PumpDuty:       snap.Config.PumpDuty,
			PumpRunTicks:   snap.Config.PumpRunTicks,
			PumpRestTicks:  snap.Config.PumpRestTicks,
			ValveRunTicks:  snap.Config.ValveRunTicks,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
			InfluxURL:      snap.Config.InfluxURL,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status payload for a system lifecycle
// event (STARTUP, SHUTDOWN, HEARTBEAT) with the full snapshot attached.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
