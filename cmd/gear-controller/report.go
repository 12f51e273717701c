package main

import (
	"fmt"
	"io"

	"github.com/sweeney/gear-controller/internal/gear"
)

// runReport runs a single unpaced deployment against the given profile and
// writes a verification report with the full audit trail. Returns true if
// the deployment succeeded within the requirement.
func runReport(w io.Writer, cfg gear.Config) bool {
	ctrl := gear.NewController(cfg, nil)
	res := ctrl.Deploy()

	fmt.Fprintf(w, "Landing Gear Deployment Verification Report\n")
	fmt.Fprintf(w, "===========================================\n")
	fmt.Fprintf(w, "Profile: pump=%dms speed=%.1fmm/100ms distance=%dmm lock=%dms\n",
		cfg.PumpLatencyMs, cfg.ActuatorSpeedPer100ms, cfg.ExtensionDistanceMm, cfg.LockTimeMs)
	fmt.Fprintf(w, "Attempt: %s\n\n", ctrl.AttemptID())

	fmt.Fprintf(w, "Final State:     %s\n", ctrl.State())
	fmt.Fprintf(w, "Deployment Time: %dms (%.2fs)\n", ctrl.ElapsedMs(), float64(ctrl.ElapsedMs())/1000)
	fmt.Fprintf(w, "Requirement:     %dms (%.1fs)\n", cfg.RequirementTimeMs, float64(cfg.RequirementTimeMs)/1000)

	success := res.Outcome == gear.OutcomeSuccess && !ctrl.FaultDetected()
	if success {
		margin := ctrl.MarginMs()
		fmt.Fprintf(w, "Margin:          %dms (%.1f%% safety buffer)\n\n", margin,
			float64(margin)/float64(cfg.RequirementTimeMs)*100)
		fmt.Fprintf(w, "DEPLOYMENT SUCCESSFUL\n")
		fmt.Fprintf(w, "  - All phases completed within requirement\n")
		fmt.Fprintf(w, "  - Continuous monitoring confirmed compliance\n")
	} else {
		fmt.Fprintf(w, "\nDEPLOYMENT FAILED\n")
		fmt.Fprintf(w, "  - Requirement breach detected\n")
		fmt.Fprintf(w, "  - Controller entered %s\n", gear.StateFailureDetected)
	}

	fmt.Fprintf(w, "\nEvent Timeline (Audit Trail)\n")
	for _, e := range ctrl.Timeline() {
		fmt.Fprintf(w, "  t=%5dms  [%-20s]  %s\n", e.TimeMs, e.State, e.Description)
	}

	return success
}
