// Package vim implements the modal editing engine for the prompt input:
// a per-keystroke interpreter with NORMAL/INSERT modes, numeric counts,
// operator+motion composition, and a data-based "repeat last change".
package vim

// Mode represents the current editing mode.
type Mode int

const (
	// ModeNormal is the default mode for navigation and commands.
	ModeNormal Mode = iota
	// ModeInsert is the mode for inserting text.
	ModeInsert
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	default:
		return "UNKNOWN"
	}
}

// Operator is a NORMAL-mode key awaiting a second key (a motion, a
// line-range partner, or itself) to complete a compound command.
type Operator int

const (
	// OpNone means no operator is pending.
	OpNone Operator = iota
	// OpGoto is a pending 'g' (completed by a second 'g').
	OpGoto
	// OpDelete is a pending 'd'.
	OpDelete
	// OpChange is a pending 'c'.
	OpChange
)

// String returns the operator's trigger key, or "" for OpNone.
func (o Operator) String() string {
	switch o {
	case OpGoto:
		return "g"
	case OpDelete:
		return "d"
	case OpChange:
		return "c"
	default:
		return ""
	}
}
