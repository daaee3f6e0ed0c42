package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSVStatusWriter writes status reports as CSV.
type CSVStatusWriter struct{}

// Write outputs the view as a header row and one data row.
func (w *CSVStatusWriter) Write(report *StatusReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	v := report.View
	d := v.Pace
	headers := []string{"Repository", "Branch", "CurrentSHA", "CurrentIndex", "TargetReference", "TargetIndex",
		"TotalCommits", "ProgressPercent", "CommitsRemaining", "IdealPace", "ActualPace", "UpstreamPace", "PeakPace",
		"IdealFinish", "ActualFinish", "IdealCatchUp", "ActualCatchUp", "Preview"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	currentSHA := ""
	if v.CurrentCommit != nil {
		currentSHA = v.CurrentCommit.SHA
	}
	row := []string{
		v.Repository.Name,
		v.Repository.DefaultBranch,
		currentSHA,
		strconv.Itoa(v.CurrentIndex),
		v.Repository.Progress.TargetReference,
		strconv.Itoa(v.TargetIndex),
		strconv.Itoa(v.TotalCommits),
		fmt.Sprintf("%.2f", v.Progress),
		strconv.Itoa(d.CommitsRemaining),
		fmt.Sprintf("%.6f", d.IdealPace),
		fmt.Sprintf("%.6f", d.ActualPace),
		fmt.Sprintf("%.6f", d.UpstreamPace),
		fmt.Sprintf("%.6f", v.PeakPace),
		csvDate(d.Ideal.FinishDate),
		csvDate(d.Actual.FinishDate),
		csvDate(d.Ideal.CatchUpDate),
		csvDate(d.Actual.CatchUpDate),
		string(v.Preview.Status),
	}
	if err := writer.Write(row); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// CSVRepositoryWriter writes repository lists as CSV.
type CSVRepositoryWriter struct{}

// Write outputs one row per tracked repository.
func (w *CSVRepositoryWriter) Write(report *RepositoryListReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headers := []string{"ID", "Name", "Path", "DefaultBranch", "CurrentSHA", "TargetReference", "IdealPace", "PacePeriod", "UpdatedAt"}
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, r := range report.Repositories {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Name,
			r.Path,
			r.DefaultBranch,
			r.Progress.CurrentSHA,
			r.Progress.TargetReference,
			fmt.Sprintf("%.6f", r.Progress.IdealPace),
			string(r.Progress.PacePeriod),
			r.UpdatedAt.Format(reportDateTimeLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVChartWriter writes chart series as CSV.
type CSVChartWriter struct{}

// Write outputs every point of every dataset.
func (w *CSVChartWriter) Write(report *ChartReport, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	if err := writer.Write([]string{"Dataset", "Date", "Remaining"}); err != nil {
		return err
	}
	for _, ds := range report.Chart.Datasets {
		for _, p := range ds.Points {
			row := []string{ds.Label, p.Date.Format(reportDateLayout), fmt.Sprintf("%.4f", p.Remaining)}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(reportDateLayout)
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return csv.NewWriter(file), file, nil
	}
	return csv.NewWriter(os.Stdout), nil, nil
}
