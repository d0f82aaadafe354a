//go:build linux

package actuator

import (
	"fmt"

	rpio "github.com/stianeikeland/go-rpio/v4"
	"github.com/warthog618/go-gpiocdev"
)

// pwmClockHz gives roughly 1 kHz output at 8-bit resolution (255 steps per
// cycle), suitable for brushed motor control.
const pwmClockHz = 255000

// RealPump drives the pump through the Pi's hardware PWM.
type RealPump struct {
	pin rpio.Pin
}

// NewRealPump opens /dev/gpiomem and configures the pin for PWM, starting
// with the pump off.
func NewRealPump(pin int) (*RealPump, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio mem: %w", err)
	}

	p := rpio.Pin(pin)
	p.Mode(rpio.Pwm)
	p.Freq(pwmClockHz)
	p.DutyCycle(0, 255)

	return &RealPump{pin: p}, nil
}

// SetDuty sets the PWM duty out of 255.
func (p *RealPump) SetDuty(duty uint8) error {
	p.pin.DutyCycle(uint32(duty), 255)
	return nil
}

// Close stops the pump and releases /dev/gpiomem.
func (p *RealPump) Close() error {
	p.pin.DutyCycle(0, 255)
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close gpio mem: %w", err)
	}
	return nil
}

// RealValve drives the valve line through the GPIO character device.
type RealValve struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealValve requests the valve pin as output, initially low (closed).
func NewRealValve(pin int) (*RealValve, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request valve pin %d: %w", pin, err)
	}

	return &RealValve{chip: chip, line: line}, nil
}

// Set drives the valve line.
func (v *RealValve) Set(open bool) error {
	val := 0
	if open {
		val = 1
	}
	if err := v.line.SetValue(val); err != nil {
		return fmt.Errorf("set valve pin: %w", err)
	}
	return nil
}

// Close shuts the valve before releasing the line, so a daemon restart
// never leaves water flowing.
func (v *RealValve) Close() error {
	var errs []error
	if v.line != nil {
		if err := v.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("shut valve: %w", err))
		}
		if err := v.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close valve pin: %w", err))
		}
	}
	if v.chip != nil {
		if err := v.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
