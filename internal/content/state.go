package content

type State int32

const (
	Unloaded State = iota
	Loading
	Processing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "UNLOADED"
	case Loading:
		return "LOADING"
	case Processing:
		return "PROCESSING"
	case Ready:
		return "READY"
	case Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Returns true once the state can no longer change
func (s State) IsTerminal() bool {
	return s == Ready || s == Failed
}

// States only move forward, FAILED is reachable from LOADING and PROCESSING only
func canTransition(from, to State) bool {
	switch to {
	case Loading:
		return from == Unloaded
	case Processing:
		return from == Loading
	case Ready:
		return from == Processing
	case Failed:
		return from == Loading || from == Processing
	}
	return false
}
