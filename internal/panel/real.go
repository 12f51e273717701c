//go:build linux

package panel

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPanel drives actual panel hardware through the Linux GPIO character
// device. It implements both Reader and Lamps.
type RealPanel struct {
	chip     *gpiocdev.Chip
	lever    *gpiocdev.Line
	downLamp *gpiocdev.Line
	warnLamp *gpiocdev.Line
}

// NewRealPanel opens the GPIO chip and claims the lever input and the two
// lamp output lines.
func NewRealPanel(pinLever, pinDownLamp, pinWarnLamp int) (*RealPanel, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// The lever switch shorts the line to ground when DOWN is selected,
	// so request with pull-up and invert in Read.
	lever, err := chip.RequestLine(pinLever, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request lever pin %d: %w", pinLever, err)
	}

	downLamp, err := chip.RequestLine(pinDownLamp, gpiocdev.AsOutput(0))
	if err != nil {
		lever.Close()
		chip.Close()
		return nil, fmt.Errorf("request down lamp pin %d: %w", pinDownLamp, err)
	}

	warnLamp, err := chip.RequestLine(pinWarnLamp, gpiocdev.AsOutput(0))
	if err != nil {
		downLamp.Close()
		lever.Close()
		chip.Close()
		return nil, fmt.Errorf("request warn lamp pin %d: %w", pinWarnLamp, err)
	}

	return &RealPanel{
		chip:     chip,
		lever:    lever,
		downLamp: downLamp,
		warnLamp: warnLamp,
	}, nil
}

// Read returns the logical lever position.
// Inverts raw GPIO: raw low (0) = DOWN selected, raw high (1) = UP.
func (p *RealPanel) Read() (Lever, error) {
	raw, err := p.lever.Value()
	if err != nil {
		return LeverUp, fmt.Errorf("read lever pin: %w", err)
	}
	if raw == 0 {
		return LeverDown, nil
	}
	return LeverUp, nil
}

// Set drives the indicator lamps.
func (p *RealPanel) Set(downLocked, warn bool) error {
	if err := p.downLamp.SetValue(boolToValue(downLocked)); err != nil {
		return fmt.Errorf("set down lamp: %w", err)
	}
	if err := p.warnLamp.SetValue(boolToValue(warn)); err != nil {
		return fmt.Errorf("set warn lamp: %w", err)
	}
	return nil
}

// Close turns both lamps off, reconfigures the lever line to input with
// pull-up (matching boot defaults), and releases the chip.
func (p *RealPanel) Close() error {
	var errs []error

	if p.downLamp != nil {
		if err := p.downLamp.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear down lamp: %w", err))
		}
		if err := p.downLamp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close down lamp: %w", err))
		}
	}
	if p.warnLamp != nil {
		if err := p.warnLamp.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear warn lamp: %w", err))
		}
		if err := p.warnLamp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close warn lamp: %w", err))
		}
	}
	if p.lever != nil {
		if err := p.lever.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure lever pin: %w", err))
		}
		if err := p.lever.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lever pin: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func boolToValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
