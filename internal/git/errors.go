package git

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPath is returned when the repository path does not exist or is not a directory.
	ErrInvalidPath = errors.New("path does not exist")
	// ErrNotARepository is returned when the path is not a git repository.
	ErrNotARepository = errors.New("not a git repository")
	// ErrBareRepository is returned for repositories without a working tree.
	ErrBareRepository = errors.New("bare repositories are not supported")
	// ErrBranchNotFound is returned when a branch reference cannot be resolved.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrReferenceNotFound is returned when a commit reference cannot be resolved.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrNoDefaultBranch is returned when HEAD is detached and none of the
	// conventional branch names exist.
	ErrNoDefaultBranch = errors.New("repository HEAD is detached and no default branch (main, master, develop, trunk) could be found")
	// ErrCommandFailed is wrapped by every CommandError.
	ErrCommandFailed = errors.New("git command failed")
)

// CommandError describes a failed git invocation, including the tool's
// diagnostic output.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// Unwrap exposes both ErrCommandFailed and the underlying cause
// (exec.ExitError, context.DeadlineExceeded, ...).
func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}
