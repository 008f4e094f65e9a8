package processor

import "fmt"

// BuildState is the stage a Builder has reached.
type BuildState int

const (
	StateEmpty BuildState = iota
	StateConfigured
	StateExtracted
	StateAssembled
	StateMasked
	StateConsumed
)

var stateNames = [...]string{"empty", "configured", "extracted", "assembled", "masked", "consumed"}

func (s BuildState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StateError reports a builder call made out of order.
type StateError struct {
	Op    string
	State BuildState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("builder: cannot %s in %s state", e.Op, e.State)
}
