package sim

import "errors"

// Error taxonomy for a simulation run. All three abort the run immediately;
// a run either completes fully or fails outright.
var (
	// ErrInput marks malformed, missing or inconsistent input series.
	ErrInput = errors.New("input error")
	// ErrConfig marks invalid or physically infeasible site parameters.
	ErrConfig = errors.New("config error")
	// ErrStateInvariant marks an internal bookkeeping violation. It must never
	// surface in correct operation.
	ErrStateInvariant = errors.New("state invariant violated")
)
