package domain

// State represents the lifecycle state of a room
type State string

const (
	StateWaiting  State = "waiting"  // Players joining, game not started
	StatePlaying  State = "playing"  // Rounds in progress
	StateFinished State = "finished" // Game over, terminal
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from current state to target state is valid.
// Room state is monotonic: waiting -> playing -> finished, never backward.
func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateWaiting:
		return target == StatePlaying || target == StateFinished
	case StatePlaying:
		return target == StateFinished
	default:
		return false
	}
}
