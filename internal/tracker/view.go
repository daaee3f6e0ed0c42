package tracker

import (
	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/pace"
	"github.com/masmgr/gitpace/internal/reconcile"
)

// View is the result of every engine operation: the reviewer's position,
// the preview of the next commit and the pace figures.
type View struct {
	Repository      model.Repository  `json:"repository"`
	CurrentCommit   *git.Commit       `json:"current_commit,omitempty"`
	TargetCommit    *git.Commit       `json:"target_commit,omitempty"`
	NextCommit      *git.Commit       `json:"next_commit,omitempty"`
	CurrentIndex    int               `json:"current_index"`
	TargetIndex     int               `json:"target_index"` // -1 when the target does not resolve
	TotalCommits    int               `json:"total_commits"`
	Progress        float64           `json:"progress_percent"`
	CanStepForward  bool              `json:"can_step_forward"`
	CanStepBackward bool              `json:"can_step_backward"`
	Pace            pace.Data         `json:"pace"`
	PeakPace        float64           `json:"peak_pace"`
	Chart           pace.Chart        `json:"chart"`
	Preview         reconcile.Preview `json:"preview"`
	Warnings        []string          `json:"warnings,omitempty"`
}

// HasTarget reports whether the target reference resolved on the branch.
func (v *View) HasTarget() bool { return v.TargetIndex >= 0 }

// Remaining is the number of commits between the current position and the
// target, or 0 without a target.
func (v *View) Remaining() int {
	if !v.HasTarget() || v.TargetIndex <= v.CurrentIndex {
		return 0
	}
	return v.TargetIndex - v.CurrentIndex
}

func (v *View) warn(msg string) {
	v.Warnings = append(v.Warnings, msg)
}
