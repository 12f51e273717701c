package gear

import "fmt"

// DefaultRequirementTimeMs is the certification limit on cumulative
// deployment time when no profile overrides it.
const DefaultRequirementTimeMs = 8000

// Config holds the physical and timing parameters for one deployment
// profile. It is a value type and is fixed for the lifetime of a Controller;
// model a different airframe or a degraded actuator by constructing a new
// Controller with a different Config.
type Config struct {
	// PumpLatencyMs is the hydraulic pressurization time.
	PumpLatencyMs int
	// ActuatorSpeedPer100ms is the linear actuator speed in mm per 100ms.
	ActuatorSpeedPer100ms float64
	// ExtensionDistanceMm is the travel distance to full extension.
	ExtensionDistanceMm int
	// LockTimeMs is the mechanical down-lock engagement time.
	LockTimeMs int
	// RequirementTimeMs is the maximum allowed cumulative deployment time.
	RequirementTimeMs int
}

// BaselineConfig is the approved simulation baseline profile.
var BaselineConfig = Config{
	PumpLatencyMs:         200,
	ActuatorSpeedPer100ms: 10.0,
	ExtensionDistanceMm:   700,
	LockTimeMs:            300,
	RequirementTimeMs:     DefaultRequirementTimeMs,
}

// Validate checks that the profile is physically meaningful.
func (c Config) Validate() error {
	if c.PumpLatencyMs < 0 {
		return fmt.Errorf("pump latency must be non-negative, got %d", c.PumpLatencyMs)
	}
	if c.ActuatorSpeedPer100ms <= 0 {
		return fmt.Errorf("actuator speed must be positive, got %g", c.ActuatorSpeedPer100ms)
	}
	if c.ExtensionDistanceMm <= 0 {
		return fmt.Errorf("extension distance must be positive, got %d", c.ExtensionDistanceMm)
	}
	if c.LockTimeMs < 0 {
		return fmt.Errorf("lock time must be non-negative, got %d", c.LockTimeMs)
	}
	if c.RequirementTimeMs <= 0 {
		return fmt.Errorf("requirement time must be positive, got %d", c.RequirementTimeMs)
	}
	return nil
}

// ExtensionTimeMs returns the actuator extension phase duration.
// Truncation toward zero is deliberate: it matches the approved simulation
// baseline, and reproducibility matters more than the sub-millisecond.
func (c Config) ExtensionTimeMs() int {
	speedPerMs := c.ActuatorSpeedPer100ms / 100.0
	return int(float64(c.ExtensionDistanceMm) / speedPerMs)
}
