package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// showFormat separates fields with NUL, which cannot appear in commit
// messages, so subjects and bodies containing newlines split reliably.
const showFormat = "%H%x00%an%x00%aI%x00%s%x00%b"

// run executes git in the repository and returns trimmed stdout.
// A non-zero exit or timeout yields a *CommandError carrying stderr.
func (c *CLIClient) run(ctx context.Context, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", c.path}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &CommandError{
			Args:   args,
			Output: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// verifyCommit resolves rev to a full commit SHA, or returns false.
func (c *CLIClient) verifyCommit(ctx context.Context, rev string) (string, bool, error) {
	if rev == "" || strings.HasPrefix(rev, "-") {
		return "", false, nil
	}
	out, err := c.run(ctx, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		if isExitError(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return out, out != "", nil
}

// ListCommits runs `rev-list --reverse` on branch.
func (c *CLIClient) ListCommits(ctx context.Context, branch string) ([]string, error) {
	branch = strings.TrimSpace(branch)
	if _, ok, err := c.verifyCommit(ctx, branch); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, branch)
	}

	out, err := c.run(ctx, "rev-list", "--reverse", branch, "--")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}

// ResolveRef resolves a SHA, abbreviated SHA or tag to a full commit SHA.
func (c *CLIClient) ResolveRef(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	sha, ok, err := c.verifyCommit(ctx, ref)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrReferenceNotFound, ref)
	}
	return sha, nil
}

// ShowCommit reads commit metadata with `git show --quiet`.
func (c *CLIClient) ShowCommit(ctx context.Context, sha string) (*Commit, error) {
	out, err := c.run(ctx, "show", "--quiet", "--no-color", "--format="+showFormat, sha, "--")
	if err != nil {
		return nil, err
	}
	return parseShowOutput(out)
}

func parseShowOutput(out string) (*Commit, error) {
	fields := strings.SplitN(out, "\x00", 5)
	if len(fields) < 4 {
		return nil, fmt.Errorf("unexpected git show format: %d fields", len(fields))
	}

	when, err := time.Parse(time.RFC3339, fields[2])
	if err != nil {
		return nil, fmt.Errorf("parse author date: %w", err)
	}

	message := fields[3]
	if len(fields) == 5 {
		if body := strings.TrimSpace(fields[4]); body != "" {
			message += "\n\n" + body
		}
	}

	commit := NewCommit(fields[0], strings.TrimSpace(message), fields[1], when)
	return &commit, nil
}

// Checkout runs `checkout --force`.
func (c *CLIClient) Checkout(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "checkout", "--force", ref, "--")
	return err
}

// ResetHard runs `reset --hard`.
func (c *CLIClient) ResetHard(ctx context.Context, ref string) error {
	_, err := c.run(ctx, "reset", "--hard", ref)
	return err
}

// CherryPickNoCommit runs `cherry-pick --no-commit`.
func (c *CLIClient) CherryPickNoCommit(ctx context.Context, sha string) error {
	_, err := c.run(ctx, "cherry-pick", "--no-commit", sha)
	return err
}

// AbortCherryPick runs `cherry-pick --abort`.
func (c *CLIClient) AbortCherryPick(ctx context.Context) error {
	_, err := c.run(ctx, "cherry-pick", "--abort")
	return err
}

// Fetch runs `fetch <remote>`.
func (c *CLIClient) Fetch(ctx context.Context, remote string) error {
	_, err := c.run(ctx, "fetch", remote)
	return err
}

// Clean runs `clean -dfx`.
func (c *CLIClient) Clean(ctx context.Context) error {
	_, err := c.run(ctx, "clean", "-dfx")
	return err
}

// CountCommitsSince runs `rev-list --count --since`.
func (c *CLIClient) CountCommitsSince(ctx context.Context, branch string, since time.Time) (int, error) {
	out, err := c.run(ctx, "rev-list", "--count", fmt.Sprintf("--since=@%d", since.Unix()), branch, "--")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parse commit count %q: %w", out, err)
	}
	return n, nil
}

// ChangedFiles lists the files touched by sha using `diff-tree --raw -z`.
func (c *CLIClient) ChangedFiles(ctx context.Context, sha string) ([]FileChange, error) {
	out, err := c.run(ctx, "diff-tree", "--no-commit-id", "--root", "-r", "--raw", "-z", "-M", sha)
	if err != nil {
		return nil, err
	}
	return parseRawDiff([]byte(out))
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
