package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/gitpace/internal/pace"
)

var (
	headerColor  = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow)
	faintColor   = color.New(color.Faint)
)

// ConsoleStatusWriter writes status reports to the console.
type ConsoleStatusWriter struct{}

// Write outputs the reviewer's position, preview and paces.
func (w *ConsoleStatusWriter) Write(report *StatusReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	v := report.View
	repo := v.Repository
	headerColor.Fprintf(out, "%s (%s)\n", repo.Name, repo.DefaultBranch)
	fmt.Fprintf(out, "Path: %s\n\n", repo.Path)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Position:\t%s\t%.1f%%\n", positionLabel(v), v.Progress)
	fmt.Fprintf(tw, "Current:\t%s\n", commitLabel(v.CurrentCommit))
	if v.CurrentCommit != nil {
		fmt.Fprintf(tw, "\t%s, %s\n", v.CurrentCommit.AuthorName, v.CurrentCommit.AuthoredAt.Format(reportDateTimeLayout))
	}
	fmt.Fprintf(tw, "Next:\t%s\n", commitLabel(v.NextCommit))
	fmt.Fprintf(tw, "Target:\t%s\n", targetLabel(v))
	fmt.Fprintf(tw, "Preview:\t%s\n", previewLabel(v))
	tw.Flush()

	for _, f := range v.Preview.Files {
		if f.OldPath != "" {
			fmt.Fprintf(out, "  %s  %s -> %s\n", f.Kind.Letter(), f.OldPath, f.Path)
		} else {
			fmt.Fprintf(out, "  %s  %s\n", f.Kind.Letter(), f.Path)
		}
	}

	if v.HasTarget() {
		writeConsolePace(out, v.Pace, v.PeakPace, string(repo.Progress.PacePeriod))
	}

	if len(v.Warnings) > 0 {
		fmt.Fprintln(out)
		for _, msg := range v.Warnings {
			warningColor.Fprintf(out, "Warning: %s\n", msg)
		}
	}
	return nil
}

func writeConsolePace(out io.Writer, d pace.Data, peak float64, period string) {
	fmt.Fprintln(out)
	if d.Empty() {
		headerColor.Fprintln(out, "Target reached")
		return
	}
	headerColor.Fprintf(out, "Pace (%d commits remaining)\n", d.CommitsRemaining)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tPace\tFinish\tCatch-up")
	fmt.Fprintf(tw, "Ideal\t%s\t%s\t%s\n", formatPace(d.IdealPace), formatDate(d.Ideal.FinishDate), catchUpLabel(d.Ideal))
	fmt.Fprintf(tw, "Actual (%s)\t%s\t%s\t%s\n", period, formatPace(d.ActualPace), formatDate(d.Actual.FinishDate), catchUpLabel(d.Actual))
	if d.TargetIsLatest {
		fmt.Fprintf(tw, "Upstream\t%s\t\t\n", formatPace(d.UpstreamPace))
	}
	fmt.Fprintf(tw, "Peak\t%s\t\t\n", formatPace(peak))
	tw.Flush()
	if d.InsufficientPace() {
		faintColor.Fprintln(out, "The branch grows at least as fast as one of these paces; pick a fixed target to finish.")
	}
}

// ConsoleRepositoryWriter writes repository lists to the console.
type ConsoleRepositoryWriter struct{}

// Write outputs one row per tracked repository.
func (w *ConsoleRepositoryWriter) Write(report *RepositoryListReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headerColor.Fprintln(out, "Tracked Repositories")
	if len(report.Repositories) == 0 {
		fmt.Fprintln(out, "No repositories registered. Use `gitpace add <path>`.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tBranch\tCurrent\tTarget\tIdeal Pace\tPeriod\tPath")
	for _, r := range report.Repositories {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Name,
			r.DefaultBranch,
			shortOrDash(r.Progress.CurrentSHA),
			r.Progress.TargetReference,
			formatPace(r.Progress.IdealPace),
			r.Progress.PacePeriod,
			r.Path,
		)
	}
	return tw.Flush()
}

// consoleChartRows caps the rows printed per dataset.
const consoleChartRows = 20

// ConsoleChartWriter writes chart series to the console.
type ConsoleChartWriter struct{}

// Write outputs each dataset as a sampled date/remaining table.
func (w *ConsoleChartWriter) Write(report *ChartReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headerColor.Fprintf(out, "Remaining commits: %s\n", report.Repository.Name)
	if len(report.Chart.Datasets) == 0 {
		fmt.Fprintln(out, "No projection: the target is reached or no pace is positive.")
		return nil
	}

	for _, ds := range report.Chart.Datasets {
		fmt.Fprintln(out)
		headerColor.Fprintf(out, "%s (%s)\n", ds.Label, formatPace(ds.Pace))

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Date\tRemaining")
		step := sampleEvery(len(ds.Points), consoleChartRows)
		for i, p := range ds.Points {
			// The last point is always shown so the finish day is visible.
			if i%step != 0 && i != len(ds.Points)-1 {
				continue
			}
			fmt.Fprintf(tw, "%s\t%.1f\n", p.Date.Format(reportDateLayout), p.Remaining)
		}
		tw.Flush()
		if step > 1 {
			faintColor.Fprintf(out, "(every %d days of %d)\n", step, len(ds.Points))
		}
	}
	return nil
}
