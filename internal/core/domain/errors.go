package domain

import "errors"

var (
	// ErrInvalidCoordinate marks a latitude or longitude outside its range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// Engine invocation failures. All of them degrade to empty metadata.
	ErrEngineUnavailable = errors.New("engine unavailable")
	ErrEngineExit        = errors.New("engine exited with non-zero status")
	ErrEngineNoOutput    = errors.New("engine produced no output")
	ErrEngineTimeout     = errors.New("engine timed out")
	ErrEngineMalformed   = errors.New("engine output is not a JSON object")
)

// Lookup outcomes, used as log fields, metric labels and event subjects.
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeExitError   = "exit_error"
	OutcomeNoOutput    = "no_output"
	OutcomeTimeout     = "timeout"
	OutcomeMalformed   = "malformed"
	OutcomeError       = "error"
)

// Outcome classifies an engine error. A nil error is OutcomeOK.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrEngineUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, ErrEngineTimeout):
		return OutcomeTimeout
	case errors.Is(err, ErrEngineExit):
		return OutcomeExitError
	case errors.Is(err, ErrEngineNoOutput):
		return OutcomeNoOutput
	case errors.Is(err, ErrEngineMalformed):
		return OutcomeMalformed
	default:
		return OutcomeError
	}
}
