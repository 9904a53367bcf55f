package installer

import "fmt"

// State is a stage of the installation flow.
type State int

// Installation stages in execution order.
const (
	StateIdle State = iota
	StateResetting
	StateLocating
	StateDownloading
	StateExtracting
	StateVerifying
	StatePostStep
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResetting:
		return "resetting"
	case StateLocating:
		return "locating"
	case StateDownloading:
		return "downloading"
	case StateExtracting:
		return "extracting"
	case StateVerifying:
		return "verifying"
	case StatePostStep:
		return "post-step"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StageError is returned when a stage fails; the run ends in StateFailed.
type StageError struct {
	// Stage is the stage that failed.
	Stage State
	// Err is the underlying failure, matching one of the setup sentinels.
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
