package state

import "time"

// State identifies a conversation step.
type State string

// StateIdle indicates there is no active conversation with the user.
const StateIdle State = "idle"

// Session is the conversation state of one user: the current step plus
// whatever data the flow collected so far.
type Session[T any] struct {
	State     State
	Data      T
	UpdatedAt time.Time
}

// Active reports whether the session is somewhere inside a flow.
func (s Session[T]) Active() bool {
	return s.State != "" && s.State != StateIdle
}
