package progressive

// State is the phase of a progressive load.
type State int

const (
	// StateIdle means nothing has been loaded yet.
	StateIdle State = iota

	// StateInitialRender means the first prefix is being parsed.
	StateInitialRender

	// StateGrowing means larger prefixes are being parsed in batches.
	StateGrowing

	// StateComplete means the whole document is displayed.
	StateComplete

	// StateCancelled means the load stopped before completing.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitialRender:
		return "initial-render"
	case StateGrowing:
		return "growing"
	case StateComplete:
		return "complete"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateCancelled
}
