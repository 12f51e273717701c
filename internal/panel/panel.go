// Package panel provides the cockpit panel hardware with abstraction for
// testing: the gear selector lever as input and the indicator lamps as
// output. The real implementation uses the Linux GPIO character device;
// the fakes allow testing without hardware.
package panel

// Lever is the position of the gear selector lever.
type Lever string

const (
	LeverUp   Lever = "UP"
	LeverDown Lever = "DOWN"
)

// Reader reads the gear selector lever position.
type Reader interface {
	// Read returns the logical lever position. The raw GPIO value is
	// inverted: raw active = lever UP (lever switch pulls the line low
	// when selected DOWN).
	Read() (Lever, error)

	// Close releases GPIO resources.
	Close() error
}

// Lamps drives the gear indicator lamps.
type Lamps interface {
	// Set drives the lamps: green when the gear is down and locked, red
	// when a fault is latched. Both off in transit and when up and locked.
	Set(downLocked, warn bool) error

	// Close turns the lamps off and releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinLever    = 26 // gear selector lever switch
	DefaultPinDownLamp = 16 // green down-and-locked lamp
	DefaultPinWarnLamp = 21 // red gear fault lamp
)
