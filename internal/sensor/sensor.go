// Package sensor provides temperature/humidity acquisition with hardware
// abstraction. The real implementation drives a DHT20 over the Linux I2C
// character device. The fake implementation allows testing without hardware.
package sensor

import "math"

// Reading is one calibrated sample pair. The previous good value is
// retained on invalid input, so consumers never observe a transient NaN.
type Reading struct {
	// Temperature in degrees Celsius.
	Temperature float64
	// Humidity in percent relative humidity, calibration offset applied.
	Humidity float64
}

// Reader reads raw temperature/humidity samples.
type Reader interface {
	// Read returns one uncalibrated sample. A non-nil error means the
	// sample must be discarded; the device stays usable.
	Read() (Reading, error)

	// Close releases the device.
	Close() error
}

// DefaultHumidityOffset is the additive humidity calibration, determined
// against a reference hygrometer.
const DefaultHumidityOffset = -10.0

// Valid reports whether a raw reading can be accepted. NaN components
// are the DHT20's way of signalling a bad transfer.
func Valid(r Reading) bool {
	return !math.IsNaN(r.Temperature) && !math.IsNaN(r.Humidity)
}

// Calibrate applies the humidity offset to a raw reading.
func Calibrate(r Reading, humidityOffset float64) Reading {
	r.Humidity += humidityOffset
	return r
}
