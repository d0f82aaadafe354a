//go:build !linux

package sensor

import "errors"

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(device string, addr int) (*RealReader, error) {
	return nil, errors.New("sensor: not supported on this platform (requires Linux i2c-dev)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (Reading, error) {
	return Reading{}, errors.New("sensor: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
