package registry

import "fmt"

// StateKind is the position of a working copy's HEAD
type StateKind int

const (
	// Uninitialized means no working copy has been established
	Uninitialized StateKind = iota
	// AtBranchTip means the resolved branch is checked out at its tip
	AtBranchTip
	// AtCommit means HEAD is detached at a historical commit
	AtCommit
)

// State is the working copy state of a Handle. Commit is set only for AtCommit.
type State struct {
	Kind   StateKind
	Commit string
}

func (s State) String() string {
	switch s.Kind {
	case AtBranchTip:
		return "AtBranchTip"
	case AtCommit:
		return fmt.Sprintf("AtCommit(%s)", s.Commit)
	default:
		return "Uninitialized"
	}
}
