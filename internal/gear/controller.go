package gear

import (
	"fmt"
	"time"

	"github.com/rs/xid"
)

// PaceFunc is called with each phase duration before the elapsed time is
// accumulated. A nil PaceFunc advances time instantly, which is what tests
// and report generation want; the daemon passes time.Sleep to reproduce the
// mechanism's real actuation timing.
type PaceFunc func(time.Duration)

// Controller is the landing gear deployment/retraction state machine.
//
// A Controller is single-owner: commands run to completion before returning
// and no second command may be issued concurrently against the same instance.
type Controller struct {
	config Config
	pace   PaceFunc

	state         State
	elapsedMs     int
	faultDetected bool
	timeline      []Event
	attemptID     string
	counts        Counts
}

// NewController creates a Controller in UP_LOCKED with zeroed bookkeeping.
// pace may be nil for instant (unpaced) phase execution.
func NewController(config Config, pace PaceFunc) *Controller {
	return &Controller{
		config: config,
		pace:   pace,
		state:  StateUpLocked,
	}
}

// Deploy commands the gear down: pump pressurization, actuator extension,
// then down-lock engagement. The cumulative elapsed time is checked against
// the requirement after EVERY phase, not just at the end, so a breach halts
// the sequence instead of letting the mechanism actuate past the deadline.
func (c *Controller) Deploy() Result {
	if c.state == StateDownLocked {
		return c.reject("already deployed")
	}
	if c.state != StateUpLocked {
		return c.reject("invalid state for deployment")
	}

	// New attempt: reset bookkeeping, keep counts.
	c.elapsedMs = 0
	c.faultDetected = false
	c.timeline = nil
	c.attemptID = xid.New().String()
	c.record("Deployment command issued")

	c.state = StateTransitioningDown

	// Phase 1: hydraulic pump activation
	pumpTime := c.config.PumpLatencyMs
	c.advance(pumpTime)
	c.record(fmt.Sprintf("Pump ready (%dms)", pumpTime))
	if !c.checkRequirement() {
		return c.breach()
	}

	// Phase 2: actuator extension
	extensionTime := c.config.ExtensionTimeMs()
	c.advance(extensionTime)
	c.record(fmt.Sprintf("Extension complete (%dms)", extensionTime))
	if !c.checkRequirement() {
		return c.breach()
	}

	// Phase 3: down-lock engagement
	lockTime := c.config.LockTimeMs
	c.advance(lockTime)
	c.record(fmt.Sprintf("Lock engaged (%dms)", lockTime))
	if !c.checkRequirement() {
		return c.breach()
	}

	c.state = StateDownLocked
	c.record("Deployment complete - SUCCESS")
	c.counts.Deployments++
	return Result{Outcome: OutcomeSuccess, State: c.state, ElapsedMs: c.elapsedMs}
}

// Retract commands the gear up. Retraction has no timing model and no
// requirement check, and writes no timeline events; the timeline continues
// to hold the last deployment attempt.
func (c *Controller) Retract() Result {
	if c.state != StateDownLocked {
		return c.reject("invalid state for retraction")
	}

	c.state = StateTransitioningUp
	c.state = StateUpLocked
	c.counts.Retractions++
	return Result{Outcome: OutcomeSuccess, State: c.state, ElapsedMs: c.elapsedMs}
}

// Reset acknowledges a detected fault and restores the controller to its
// initial condition. It is the only transition out of FAILURE_DETECTED and
// is rejected from every other state; recovery must be an explicit operator
// action, never a side effect of another command.
func (c *Controller) Reset() Result {
	if c.state != StateFailureDetected {
		return c.reject("no fault to reset")
	}

	c.state = StateUpLocked
	c.elapsedMs = 0
	c.faultDetected = false
	c.timeline = nil
	c.attemptID = ""
	c.counts.Resets++
	return Result{Outcome: OutcomeSuccess, State: c.state, ElapsedMs: c.elapsedMs}
}

// advance pushes the deployment clock forward by a phase duration.
func (c *Controller) advance(ms int) {
	if c.pace != nil {
		c.pace(time.Duration(ms) * time.Millisecond)
	}
	c.elapsedMs += ms
}

// record appends an audit event at the current elapsed time and state.
func (c *Controller) record(description string) {
	c.timeline = append(c.timeline, Event{
		TimeMs:      c.elapsedMs,
		State:       c.state,
		Description: description,
	})
}

// checkRequirement compares cumulative elapsed time against the requirement.
// On breach the controller enters the terminal fault state and the breach is
// recorded; on pass nothing is mutated (the remaining margin is informational
// only).
func (c *Controller) checkRequirement() bool {
	if c.elapsedMs > c.config.RequirementTimeMs {
		c.state = StateFailureDetected
		c.faultDetected = true
		c.record("Requirement breach detected")
		return false
	}
	return true
}

func (c *Controller) reject(reason string) Result {
	c.counts.Rejections++
	return Result{Outcome: OutcomeRejected, Reason: reason, State: c.state, ElapsedMs: c.elapsedMs}
}

func (c *Controller) breach() Result {
	c.counts.Breaches++
	return Result{Outcome: OutcomeBreach, State: c.state, ElapsedMs: c.elapsedMs}
}

// Config returns the deployment profile the controller was built with.
func (c *Controller) Config() Config {
	return c.config
}

// State returns the current gear state.
func (c *Controller) State() State {
	return c.state
}

// ElapsedMs returns the cumulative time of the current deployment attempt.
func (c *Controller) ElapsedMs() int {
	return c.elapsedMs
}

// FaultDetected reports whether the current attempt breached the requirement.
func (c *Controller) FaultDetected() bool {
	return c.faultDetected
}

// MarginMs returns the remaining requirement margin. Negative after a breach.
func (c *Controller) MarginMs() int {
	return c.config.RequirementTimeMs - c.elapsedMs
}

// AttemptID identifies the current deployment attempt. Empty before the
// first Deploy and after a Reset.
func (c *Controller) AttemptID() string {
	return c.attemptID
}

// Timeline returns a copy of the audit trail for the current attempt.
// The timeline is exclusively owned by the controller; callers get a copy
// so no external consumer can mutate the record.
func (c *Controller) Timeline() []Event {
	if c.timeline == nil {
		return nil
	}
	out := make([]Event, len(c.timeline))
	copy(out, c.timeline)
	return out
}

// CountsSnapshot returns command totals since the controller was created.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}
