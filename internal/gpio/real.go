//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Consumer is the label attached to requested lines.
const Consumer = "rotary-dial"

// RealReader reads the dial lines from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip       *gpiocdev.Chip
	dialPin    *gpiocdev.Line
	pulsePin   *gpiocdev.Line
	onAsserted func()
}

// NewRealReader creates a reader for the dial and pulse pins on the given chip.
// onAsserted, if non-nil, is called from the edge watcher goroutine whenever
// the dial line falls (dial leaves its rest position). It must only record
// the wake; all decoding happens in the foreground loop.
func NewRealReader(chipName string, pinDial, pinPulse int, onAsserted func()) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{chip: chip, onAsserted: onAsserted}

	// Both contacts switch to ground; pull-ups hold them high at rest.
	dialLine, err := chip.RequestLine(pinDial,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(r.handleDialEdge),
	)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request dial pin %d: %w", pinDial, err)
	}

	pulseLine, err := chip.RequestLine(pinPulse, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		dialLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request pulse pin %d: %w", pinPulse, err)
	}

	r.dialPin = dialLine
	r.pulsePin = pulseLine
	return r, nil
}

func (r *RealReader) handleDialEdge(evt gpiocdev.LineEvent) {
	if evt.Type == gpiocdev.LineEventFallingEdge && r.onAsserted != nil {
		r.onAsserted()
	}
}

// Read returns the logical states of the dial and pulse lines.
// The dial line is active low; the pulse line is asserted while high.
func (r *RealReader) Read() (bool, bool, error) {
	dialRaw, err := r.dialPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read dial pin: %w", err)
	}

	pulseRaw, err := r.pulsePin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read pulse pin: %w", err)
	}

	return dialRaw == 0, pulseRaw == 1, nil
}

// DialActive reports the current dial line level, for level-triggered wakeups.
func (r *RealReader) DialActive() bool {
	v, err := r.dialPin.Value()
	return err == nil && v == 0
}

// Close releases GPIO resources.
// Pins are reconfigured to plain inputs without edge detection before closing.
func (r *RealReader) Close() error {
	var errs []error

	if r.dialPin != nil {
		if err := r.dialPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithoutEdges); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure dial pin: %w", err))
		}
		if err := r.dialPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dial pin: %w", err))
		}
	}
	if r.pulsePin != nil {
		if err := r.pulsePin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pulse pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
