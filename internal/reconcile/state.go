package reconcile

import (
	"fmt"

	"github.com/masmgr/gitpace/internal/git"
)

// StateKind enumerates the reconciler states.
type StateKind int

const (
	// Idle means no checkout is known to match the tree.
	Idle StateKind = iota
	// CheckedOut means the tree exactly matches Commit.
	CheckedOut
	// Previewing means the tree matches Commit plus the uncommitted diff of Previewed.
	Previewing
)

// State is the reconciler's view of the working tree. It is derived, never
// persisted.
type State struct {
	Kind      StateKind
	Commit    string
	Previewed string
}

func (s State) String() string {
	switch s.Kind {
	case CheckedOut:
		return fmt.Sprintf("CheckedOut(%s)", short(s.Commit))
	case Previewing:
		return fmt.Sprintf("Previewing(%s, %s)", short(s.Commit), short(s.Previewed))
	default:
		return "Idle"
	}
}

func short(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// PreviewStatus tags the outcome of PreviewNext.
type PreviewStatus string

const (
	// PreviewApplied means the next commit's diff is visible in the tree.
	PreviewApplied PreviewStatus = "applied"
	// PreviewSkipped means the diff could not be applied and was rolled back.
	PreviewSkipped PreviewStatus = "skipped"
	// PreviewNone means there is no next commit to preview.
	PreviewNone PreviewStatus = "none"
)

// Preview describes the speculative application of the next commit.
type Preview struct {
	Status PreviewStatus    `json:"status"`
	Commit string           `json:"commit,omitempty"`
	Reason string           `json:"reason,omitempty"`
	Files  []git.FileChange `json:"files,omitempty"`
}

// Applied reports whether the preview is visible in the tree.
func (p Preview) Applied() bool { return p.Status == PreviewApplied }
