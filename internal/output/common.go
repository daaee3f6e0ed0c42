package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/pace"
	"github.com/masmgr/gitpace/internal/tracker"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(reportDateLayout)
}

func formatPace(p float64) string {
	return fmt.Sprintf("%.2f/day", p)
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}

func commitLabel(c *git.Commit) string {
	if c == nil {
		return "-"
	}
	return c.ShortSHA + "  " + truncateMessage(c.Subject, 60)
}

func shortOrDash(sha string) string {
	if sha == "" {
		return "-"
	}
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

// positionLabel renders "current / total" with 1-based ordinals.
func positionLabel(v *tracker.View) string {
	if v.TotalCommits == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("%d / %d", v.CurrentIndex+1, v.TotalCommits)
}

func targetLabel(v *tracker.View) string {
	ref := v.Repository.Progress.TargetReference
	if !v.HasTarget() {
		return ref + " (unresolved)"
	}
	sha := ""
	if v.TargetCommit != nil {
		sha = v.TargetCommit.ShortSHA
	}
	return fmt.Sprintf("%s -> %s (#%d)", ref, sha, v.TargetIndex+1)
}

func catchUpLabel(p pace.Projection) string {
	switch p.CatchUp {
	case pace.CatchUpOnTrack:
		return formatDate(p.CatchUpDate)
	case pace.CatchUpInsufficientPace:
		return "never"
	default:
		return "-"
	}
}

func previewLabel(v *tracker.View) string {
	p := v.Preview
	switch {
	case p.Applied():
		return fmt.Sprintf("applied %s (%d files)", shortOrDash(p.Commit), len(p.Files))
	case p.Reason != "":
		return fmt.Sprintf("%s %s: %s", p.Status, shortOrDash(p.Commit), p.Reason)
	default:
		return string(p.Status)
	}
}

// sampleEvery returns the stride that keeps a series at about max rows.
func sampleEvery(n, max int) int {
	if max <= 0 || n <= max {
		return 1
	}
	return (n + max - 1) / max
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
