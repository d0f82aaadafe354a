//go:build !linux

package actuator

import "errors"

// RealPump is not available on non-Linux platforms.
type RealPump struct{}

// NewRealPump returns an error on non-Linux platforms.
func NewRealPump(pin int) (*RealPump, error) {
	return nil, errors.New("actuator: not supported on this platform (requires Linux)")
}

// SetDuty is not implemented on non-Linux platforms.
func (p *RealPump) SetDuty(duty uint8) error {
	return errors.New("actuator: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPump) Close() error { return nil }

// RealValve is not available on non-Linux platforms.
type RealValve struct{}

// NewRealValve returns an error on non-Linux platforms.
func NewRealValve(pin int) (*RealValve, error) {
	return nil, errors.New("actuator: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (v *RealValve) Set(open bool) error {
	return errors.New("actuator: not supported")
}

// Close is not implemented on non-Linux platforms.
func (v *RealValve) Close() error { return nil }
