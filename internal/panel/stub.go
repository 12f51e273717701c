//go:build !linux

package panel

import "errors"

// RealPanel is not available on non-Linux platforms.
type RealPanel struct{}

// NewRealPanel returns an error on non-Linux platforms.
func NewRealPanel(pinLever, pinDownLamp, pinWarnLamp int) (*RealPanel, error) {
	return nil, errors.New("panel: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (p *RealPanel) Read() (Lever, error) {
	return LeverUp, errors.New("panel: not supported")
}

// Set is not implemented on non-Linux platforms.
func (p *RealPanel) Set(downLocked, warn bool) error {
	return errors.New("panel: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPanel) Close() error {
	return nil
}
