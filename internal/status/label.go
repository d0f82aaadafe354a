package status

import "fmt"

// Label renders the single-line actuator status shown on the display and
// in the JSON output: target-reached, valve-on, pump-on, waiting, standby.
func Label(s Snapshot) string {
	a := s.Actuators
	switch {
	case a.TargetReached:
		return "TARGET REACHED"
	case a.ValveOpen:
		return fmt.Sprintf("VALVE: ON %ds", a.Countdown)
	case a.PumpOn():
		return fmt.Sprintf("PUMP: ON %ds", a.Countdown)
	case !s.Empty:
		return fmt.Sprintf("WAIT: %ds", a.Countdown)
	default:
		return "STANDBY"
	}
}
