// Package gear contains pure control logic for landing gear deployment and
// retraction. This package has NO external collaborators (no GPIO, MQTT, OS,
// or wall-clock reads). Phase timing is modeled as explicit duration
// bookkeeping; pacing is injectable for callers that want real-time behavior.
package gear

// State represents the position of the landing gear mechanism.
type State string

const (
	StateUpLocked          State = "UP_LOCKED"
	StateTransitioningDown State = "TRANSITIONING_DOWN"
	StateDownLocked        State = "DOWN_LOCKED"
	StateTransitioningUp   State = "TRANSITIONING_UP"
	StateFailureDetected   State = "FAILURE_DETECTED"
)

// Stable reports whether the state is one of the two rest states.
// Transitioning states and the fault state are not stable.
func (s State) Stable() bool {
	return s == StateUpLocked || s == StateDownLocked
}

// Outcome classifies the result of a gear command.
type Outcome string

const (
	// OutcomeSuccess means the command ran to completion.
	OutcomeSuccess Outcome = "SUCCESS"
	// OutcomeRejected means a guard condition failed; nothing was mutated.
	OutcomeRejected Outcome = "REJECTED"
	// OutcomeBreach means the timing requirement was exceeded mid-sequence
	// and the controller entered FAILURE_DETECTED.
	OutcomeBreach Outcome = "BREACH"
)

// Result is what a gear command returns to the caller.
type Result struct {
	Outcome   Outcome
	Reason    string // set for rejections
	State     State  // controller state after the command
	ElapsedMs int    // cumulative deployment time after the command
}

// Event is a single entry in the deployment audit timeline.
type Event struct {
	// TimeMs is the cumulative deployment time when the event was recorded.
	TimeMs int
	// State is the controller state at the moment of recording.
	State State
	// Description is the event text (e.g. "Pump ready (200ms)").
	Description string
}

// Counts tracks command totals since the controller was created.
// Unlike the timeline, these survive across deployment attempts.
type Counts struct {
	Deployments int // successful deployments
	Retractions int // successful retractions
	Breaches    int // deployments aborted by a requirement breach
	Rejections  int // commands rejected by a guard condition
	Resets      int // fault acknowledgments
}
