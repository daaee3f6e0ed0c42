package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
	t.Setenv("GIT_AUTHOR_NAME", "Test Author")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test Author")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
}

// linearFixture creates a repository with three commits on master.
func linearFixture(t *testing.T) (*CLIClient, []string) {
	t.Helper()
	requireGit(t)

	dir, repo := createTestRepo(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	shas := []string{
		commitFiles(t, repo, "Add readme", base, map[string]string{"README.md": "hello\n"}),
		commitFiles(t, repo, "Add main\n\nEntry point.", base.Add(24*time.Hour), map[string]string{"main.go": "package main\n"}),
		commitFiles(t, repo, "Update readme", base.Add(48*time.Hour), map[string]string{"README.md": "hello world\n"}),
	}

	client, err := Open(dir, OpenOptions{Timeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return client, shas
}

func TestCLIClient_ListCommits(t *testing.T) {
	client, shas := linearFixture(t)
	ctx := context.Background()

	got, err := client.ListCommits(ctx, "master")
	if err != nil {
		t.Fatalf("ListCommits: %v", err)
	}
	if len(got) != len(shas) {
		t.Fatalf("ListCommits len = %d, want %d", len(got), len(shas))
	}
	for i := range shas {
		if got[i] != shas[i] {
			t.Fatalf("ListCommits[%d] = %s, want %s (oldest first)", i, got[i], shas[i])
		}
	}

	_, err = client.ListCommits(ctx, "no-such-branch")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("ListCommits unknown branch error = %v, want ErrBranchNotFound", err)
	}
}

func TestCLIClient_ResolveRef(t *testing.T) {
	client, shas := linearFixture(t)
	ctx := context.Background()

	got, err := client.ResolveRef(ctx, shas[1][:10])
	if err != nil {
		t.Fatalf("ResolveRef prefix: %v", err)
	}
	if got != shas[1] {
		t.Fatalf("ResolveRef prefix = %s, want %s", got, shas[1])
	}

	for _, ref := range []string{"deadbeefdeadbeef", "--all", ""} {
		if _, err := client.ResolveRef(ctx, ref); !errors.Is(err, ErrReferenceNotFound) {
			t.Fatalf("ResolveRef(%q) error = %v, want ErrReferenceNotFound", ref, err)
		}
	}
}

func TestCLIClient_ShowCommit(t *testing.T) {
	client, shas := linearFixture(t)

	c, err := client.ShowCommit(context.Background(), shas[1])
	if err != nil {
		t.Fatalf("ShowCommit: %v", err)
	}
	if c.SHA != shas[1] || c.Subject != "Add main" || c.Body != "Entry point." {
		t.Fatalf("ShowCommit = %+v", c)
	}
	if c.AuthorName != "Test Author" {
		t.Fatalf("AuthorName = %q", c.AuthorName)
	}
	if !c.AuthoredAt.Equal(time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("AuthoredAt = %v", c.AuthoredAt)
	}
}

func TestCLIClient_CheckoutAndPreview(t *testing.T) {
	client, shas := linearFixture(t)
	ctx := context.Background()

	if err := client.Checkout(ctx, shas[0]); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if _, err := os.Stat(filepath.Join(client.Path(), "main.go")); !os.IsNotExist(err) {
		t.Fatalf("main.go should not exist at first commit, stat err = %v", err)
	}

	if err := client.CherryPickNoCommit(ctx, shas[1]); err != nil {
		t.Fatalf("CherryPickNoCommit: %v", err)
	}
	if _, err := os.Stat(filepath.Join(client.Path(), "main.go")); err != nil {
		t.Fatalf("main.go should exist after preview: %v", err)
	}

	if err := client.ResetHard(ctx, "HEAD"); err != nil {
		t.Fatalf("ResetHard: %v", err)
	}
	if err := client.Clean(ctx); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(client.Path(), "main.go")); !os.IsNotExist(err) {
		t.Fatalf("main.go should be gone after reset and clean, stat err = %v", err)
	}
}

func TestCLIClient_CherryPickConflict(t *testing.T) {
	requireGit(t)
	dir, repo := createTestRepo(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	first := commitFiles(t, repo, "one", base, map[string]string{"a.txt": "one\n"})
	commitFiles(t, repo, "two", base.Add(time.Hour), map[string]string{"a.txt": "two\n"})
	third := commitFiles(t, repo, "three", base.Add(2*time.Hour), map[string]string{"a.txt": "three\n"})

	client, err := Open(dir, OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	if err := client.Checkout(ctx, first); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	// "three" modifies a line that only exists after "two".
	err = client.CherryPickNoCommit(ctx, third)
	if err == nil {
		t.Fatal("expected cherry-pick conflict")
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %T, want *CommandError", err)
	}

	_ = client.AbortCherryPick(ctx)
	if err := client.ResetHard(ctx, "HEAD"); err != nil {
		t.Fatalf("ResetHard after conflict: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "one\n" {
		t.Fatalf("a.txt = %q, want restored content", data)
	}
}

func TestCLIClient_CountCommitsSince(t *testing.T) {
	client, _ := linearFixture(t)

	n, err := client.CountCommitsSince(context.Background(), "master", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CountCommitsSince: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountCommitsSince = %d, want 2", n)
	}
}

func TestCLIClient_ChangedFiles(t *testing.T) {
	client, shas := linearFixture(t)

	files, err := client.ChangedFiles(context.Background(), shas[0])
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}
	if len(files) != 1 || files[0].Path != "README.md" || files[0].Kind != ChangeKindAdded {
		t.Fatalf("ChangedFiles root = %+v", files)
	}

	files, err = client.ChangedFiles(context.Background(), shas[2])
	if err != nil {
		t.Fatalf("ChangedFiles: %v", err)
	}
	if len(files) != 1 || files[0].Kind != ChangeKindModified {
		t.Fatalf("ChangedFiles update = %+v", files)
	}
}

func TestCLIClient_CanceledContext(t *testing.T) {
	client, _ := linearFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListCommits(ctx, "master")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
