package output

import (
	"fmt"
)

// MarkdownStatusWriter writes status reports as Markdown.
type MarkdownStatusWriter struct{}

// Write outputs the view as Markdown.
func (w *MarkdownStatusWriter) Write(report *StatusReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	v := report.View
	repo := v.Repository

	fmt.Fprintf(out, "# %s\n\n", escapeMarkdown(repo.Name))
	fmt.Fprintf(out, "**Branch:** %s\n\n", escapeMarkdown(repo.DefaultBranch))
	fmt.Fprintf(out, "**Position:** %s (%.1f%%)\n\n", positionLabel(v), v.Progress)

	fmt.Fprintln(out, "| | Commit |")
	fmt.Fprintln(out, "|---|--------|")
	fmt.Fprintf(out, "| Current | %s |\n", escapeMarkdown(commitLabel(v.CurrentCommit)))
	fmt.Fprintf(out, "| Next | %s |\n", escapeMarkdown(commitLabel(v.NextCommit)))
	fmt.Fprintf(out, "| Target | %s |\n", escapeMarkdown(targetLabel(v)))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "**Preview:** %s\n\n", escapeMarkdown(previewLabel(v)))
	for _, f := range v.Preview.Files {
		fmt.Fprintf(out, "- `%s` %s\n", f.Kind.Letter(), escapeMarkdown(f.Path))
	}
	if len(v.Preview.Files) > 0 {
		fmt.Fprintln(out)
	}

	if v.HasTarget() && !v.Pace.Empty() {
		d := v.Pace
		fmt.Fprintf(out, "## Pace\n\n")
		fmt.Fprintf(out, "**Commits remaining:** %d\n\n", d.CommitsRemaining)
		fmt.Fprintln(out, "| Pace | Per day | Finish | Catch-up |")
		fmt.Fprintln(out, "|------|---------|--------|----------|")
		fmt.Fprintf(out, "| Ideal | %.2f | %s | %s |\n", d.IdealPace, formatDate(d.Ideal.FinishDate), catchUpLabel(d.Ideal))
		fmt.Fprintf(out, "| Actual (%s) | %.2f | %s | %s |\n", repo.Progress.PacePeriod, d.ActualPace, formatDate(d.Actual.FinishDate), catchUpLabel(d.Actual))
		if d.TargetIsLatest {
			fmt.Fprintf(out, "| Upstream | %.2f | | |\n", d.UpstreamPace)
		}
		fmt.Fprintf(out, "| Peak | %.2f | | |\n", v.PeakPace)
		fmt.Fprintln(out)
	}

	if len(v.Warnings) > 0 {
		fmt.Fprintf(out, "## Warnings\n\n")
		for _, msg := range v.Warnings {
			fmt.Fprintf(out, "- %s\n", escapeMarkdown(msg))
		}
	}
	return nil
}

// MarkdownRepositoryWriter writes repository lists as Markdown.
type MarkdownRepositoryWriter struct{}

// Write outputs the repository list as a Markdown table.
func (w *MarkdownRepositoryWriter) Write(report *RepositoryListReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Tracked Repositories")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Total:** %d\n\n", len(report.Repositories))
	if len(report.Repositories) == 0 {
		return nil
	}

	fmt.Fprintln(out, "| ID | Name | Branch | Current | Target | Ideal Pace | Period | Path |")
	fmt.Fprintln(out, "|----|------|--------|---------|--------|------------|--------|------|")
	for _, r := range report.Repositories {
		fmt.Fprintf(out, "| %d | %s | %s | `%s` | %s | %.2f | %s | `%s` |\n",
			r.ID, escapeMarkdown(r.Name), escapeMarkdown(r.DefaultBranch), shortOrDash(r.Progress.CurrentSHA),
			escapeMarkdown(r.Progress.TargetReference), r.Progress.IdealPace, r.Progress.PacePeriod, r.Path)
	}
	return nil
}

// MarkdownChartWriter writes chart series as Markdown.
type MarkdownChartWriter struct{}

// Write outputs one table per dataset, sampled to weekly rows.
func (w *MarkdownChartWriter) Write(report *ChartReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintf(out, "# Remaining Commits: %s\n\n", escapeMarkdown(report.Repository.Name))
	if len(report.Chart.Datasets) == 0 {
		fmt.Fprintln(out, "No projection.")
		return nil
	}

	for _, ds := range report.Chart.Datasets {
		fmt.Fprintf(out, "## %s (%.2f/day)\n\n", ds.Label, ds.Pace)
		fmt.Fprintln(out, "| Date | Remaining |")
		fmt.Fprintln(out, "|------|-----------|")
		for i, p := range ds.Points {
			if i%7 != 0 && i != len(ds.Points)-1 {
				continue
			}
			fmt.Fprintf(out, "| %s | %.1f |\n", p.Date.Format(reportDateLayout), p.Remaining)
		}
		fmt.Fprintln(out)
	}
	return nil
}
