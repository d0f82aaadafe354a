// Package display renders the five-line status view. The console
// implementation writes to any io.Writer (typically stdout or a serial
// console); the fake records frames for tests.
package display

import (
	"fmt"

	"github.com/sweeney/mist-controller/internal/status"
)

// Lines is one rendered status frame.
type Lines [5]string

// Display shows a status frame.
type Display interface {
	// Render shows one frame, replacing the previous one.
	Render(frame Lines) error
}

// Frame builds the five-line status view from a snapshot: temperature,
// humidity, preset, reservoir state, and the actuator status line.
func Frame(snap status.Snapshot) Lines {
	water := "OK"
	if snap.Empty {
		water = "EMPTY"
	}
	return Lines{
		fmt.Sprintf("TEMP: %.1fC", snap.Reading.Temperature),
		fmt.Sprintf("HUMI: %.1f%%", snap.Reading.Humidity),
		fmt.Sprintf("PRESET: %.1f%%", snap.Config.Preset),
		fmt.Sprintf("WATER: %s", water),
		status.Label(snap),
	}
}
