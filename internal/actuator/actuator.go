// Package actuator drives the misting pump and the refill valve with
// hardware abstraction. The real pump uses the Pi's hardware PWM through
// go-rpio; the real valve is a digital line on the GPIO character device.
// Fakes record writes for tests.
package actuator

// Pump delivers power to the misting pump as an 8-bit PWM duty.
type Pump interface {
	// SetDuty sets the duty cycle, 0 (off) to 255 (full power).
	SetDuty(duty uint8) error

	// Close stops the pump and releases the output.
	Close() error
}

// Valve switches the refill valve on or off.
type Valve interface {
	// Set opens (true) or closes (false) the valve.
	Set(open bool) error

	// Close shuts the valve and releases the output.
	Close() error
}

// Default BCM pins. Pin 18 carries hardware PWM0 on all Pi models.
const (
	DefaultPinPump  = 18
	DefaultPinValve = 27
)
