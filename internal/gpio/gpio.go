// Package gpio provides rotary dial line reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the two dial lines.
type Reader interface {
	// Read returns the logical states of the dial and pulse lines.
	// dialActive is true while the dial is off its rest position (raw low);
	// pulse is true while the pulse contact is open (raw high).
	// Returns (dialActive, pulse, error).
	Read() (bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinDial  = 17
	DefaultPinPulse = 27
)

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"
