package dynamics

import "errors"

/*
Failure classes of the backend. Every error returned by this package wraps exactly one
of these, so callers can branch with errors.Is while the message still names the
offending value.

Integration failures are not errors: they are recorded on the SolverResult and
ExperimentResult of the experiment that failed.
*/
var (
	// ErrConfiguration marks an invalid option value, detected when it is set.
	ErrConfiguration = errors.New("configuration error")

	// ErrInputValidation marks malformed run input, detected before simulation.
	ErrInputValidation = errors.New("invalid run input")

	// ErrLookup marks a missing calibration, frequency, or channel-map entry.
	ErrLookup = errors.New("lookup failure")

	// ErrUnsupported marks an operation the backend was never configured for.
	ErrUnsupported = errors.New("unsupported operation")
)
