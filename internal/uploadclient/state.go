package uploadclient

import "fmt"

// State is a step of the client side of the upload handshake.
type State int

const (
	StateIdle State = iota
	StateFileChosen
	StateTicketReady
	StateUploading
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileChosen:
		return "file_chosen"
	case StateTicketReady:
		return "ticket_ready"
	case StateUploading:
		return "uploading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// allowed lists every legal edge. Failed may restart by choosing a file again.
var allowed = map[State][]State{
	StateIdle:        {StateFileChosen},
	StateFileChosen:  {StateFileChosen, StateTicketReady, StateFailed},
	StateTicketReady: {StateUploading, StateFailed},
	StateUploading:   {StateDone, StateFailed},
	StateDone:        {StateFileChosen},
	StateFailed:      {StateFileChosen},
}

func canTransition(from, to State) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is returned when an operation is called in the wrong state.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("upload: cannot move from %s to %s", e.From, e.To)
}
