//go:build linux

package sensor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// i2cSlave is the i2c-dev ioctl that binds the fd to a peripheral address.
const i2cSlave = 0x0703

// RealReader reads a DHT20 over the Linux I2C character device. There is no
// DHT20 driver in our GPIO libraries; the transfer protocol is three bytes
// out, seven bytes back, so raw i2c-dev access keeps it simple.
type RealReader struct {
	fd int
}

// NewRealReader opens the I2C bus (e.g. "/dev/i2c-1") and binds the DHT20
// address. It verifies the device responds and is calibrated, so a missing
// or wedged sensor fails at startup rather than in the acquisition loop.
func NewRealReader(device string, addr int) (*RealReader, error) {
	fd, err := unix.Open(device, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind i2c address 0x%02x: %w", addr, err)
	}

	r := &RealReader{fd: fd}
	status := make([]byte, 1)
	if _, err := unix.Read(fd, status); err != nil {
		r.Close()
		return nil, fmt.Errorf("probe dht20: %w", err)
	}
	if status[0]&statusCalibBit == 0 {
		r.Close()
		return nil, fmt.Errorf("dht20 not calibrated (status 0x%02x)", status[0])
	}
	return r, nil
}

// Read triggers one measurement and decodes the result. The DHT20 needs
// about 80 ms to convert; the acquisition period (2 s) dwarfs that.
func (r *RealReader) Read() (Reading, error) {
	if _, err := unix.Write(r.fd, measureCmd); err != nil {
		return Reading{}, fmt.Errorf("trigger measurement: %w", err)
	}

	time.Sleep(85 * time.Millisecond)

	frame := make([]byte, dht20FrameLen)
	n, err := unix.Read(r.fd, frame)
	if err != nil {
		return Reading{}, fmt.Errorf("read measurement: %w", err)
	}
	if n != dht20FrameLen {
		return Reading{}, fmt.Errorf("short read: %d bytes", n)
	}

	reading, err := decodeFrame(frame)
	if err != nil {
		return Reading{}, fmt.Errorf("decode measurement: %w", err)
	}
	return reading, nil
}

// Close releases the I2C bus fd.
func (r *RealReader) Close() error {
	if err := unix.Close(r.fd); err != nil {
		return fmt.Errorf("close i2c: %w", err)
	}
	return nil
}
