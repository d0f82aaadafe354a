// Package gpio provides the water-level switch input with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device. The fake implementation allows testing without hardware.
package gpio

// LevelReader samples the water-level switch line.
type LevelReader interface {
	// Read returns the raw line state: true = line high = reservoir
	// empty. The value is unfiltered; callers debounce it.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultPinLevel is the BCM pin for the level switch.
const DefaultPinLevel = 17
