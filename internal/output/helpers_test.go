package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/pace"
	"github.com/masmgr/gitpace/internal/reconcile"
	"github.com/masmgr/gitpace/internal/tracker"
)

func init() {
	color.NoColor = true
}

var sampleNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func sampleRepository() model.Repository {
	return model.Repository{
		ID:            1,
		Name:          "acme/widgets",
		Path:          "/src/widgets",
		DefaultBranch: "main",
		Progress:      model.DefaultProgress(),
		CreatedAt:     sampleNow,
		UpdatedAt:     sampleNow,
	}
}

func samplePace() pace.Data {
	return pace.Project(pace.Input{
		CurrentIndex:   9,
		TargetIndex:    29,
		IdealPace:      5,
		ActualPace:     2,
		UpstreamPace:   3,
		TargetIsLatest: true,
		Now:            sampleNow,
	})
}

func sampleView() *tracker.View {
	current := git.NewCommit("aaaa1111bbbb2222", "Fix parser\n\nHandle empty input.", "Ada", sampleNow.Add(-time.Hour))
	next := git.NewCommit("cccc3333dddd4444", "Add | pipes", "Ada", sampleNow)
	target := git.NewCommit("eeee5555ffff6666", "Release 2.0", "Bob", sampleNow)
	d := samplePace()

	return &tracker.View{
		Repository:      sampleRepository(),
		CurrentCommit:   &current,
		NextCommit:      &next,
		TargetCommit:    &target,
		CurrentIndex:    9,
		TargetIndex:     29,
		TotalCommits:    30,
		Progress:        pace.Percentage(9, 29),
		CanStepForward:  true,
		CanStepBackward: true,
		Pace:            d,
		PeakPace:        4,
		Chart:           pace.NewChart(d, sampleNow, 1),
		Preview: reconcile.Preview{
			Status: reconcile.PreviewApplied,
			Commit: next.SHA,
			Files: []git.FileChange{
				{Path: "a.go", Kind: git.ChangeKindModified},
				{Path: "new.go", OldPath: "old.go", Kind: git.ChangeKindRenamed},
			},
		},
		Warnings: []string{"recorded commit 01234567 is no longer on main; showing the oldest commit"},
	}
}

// writeToTemp runs write against a temp file path and returns what it wrote.
func writeToTemp(t *testing.T, name string, write func(path string) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := write(path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(data)
}
