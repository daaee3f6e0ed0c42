package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/pace"
	"github.com/masmgr/gitpace/internal/tracker"
)

// JSONStatusWriter writes status reports as JSON.
type JSONStatusWriter struct{}

// JSONStatusReport is the JSON output structure for a status report.
type JSONStatusReport struct {
	Action      string `json:"action"`
	GeneratedAt string `json:"generated_at"`
	*tracker.View
}

// Write outputs the view as JSON.
func (w *JSONStatusWriter) Write(report *StatusReport, options OutputOptions) error {
	return writeJSON(JSONStatusReport{
		Action:      report.Action,
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		View:        report.View,
	}, options.OutputPath)
}

// JSONRepositoryWriter writes repository lists as JSON.
type JSONRepositoryWriter struct{}

// JSONRepositoryList is the JSON output structure for a repository list.
type JSONRepositoryList struct {
	GeneratedAt  string             `json:"generated_at"`
	Total        int                `json:"total"`
	Repositories []model.Repository `json:"repositories"`
}

// Write outputs the repository list as JSON.
func (w *JSONRepositoryWriter) Write(report *RepositoryListReport, options OutputOptions) error {
	repos := report.Repositories
	if repos == nil {
		repos = []model.Repository{}
	}
	return writeJSON(JSONRepositoryList{
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		Total:        len(repos),
		Repositories: repos,
	}, options.OutputPath)
}

// JSONChartWriter writes chart series as JSON.
type JSONChartWriter struct{}

// JSONChartReport is the JSON output structure for a chart. Datasets use
// the {label, data: [{x, y}]} layout charting libraries accept directly.
type JSONChartReport struct {
	GeneratedAt string         `json:"generated_at"`
	Repository  string         `json:"repository"`
	Pace        pace.Data      `json:"pace"`
	Datasets    []pace.Dataset `json:"datasets"`
}

// Write outputs the chart as JSON.
func (w *JSONChartWriter) Write(report *ChartReport, options OutputOptions) error {
	datasets := report.Chart.Datasets
	if datasets == nil {
		datasets = []pace.Dataset{}
	}
	return writeJSON(JSONChartReport{
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Repository:  report.Repository.Name,
		Pace:        report.Pace,
		Datasets:    datasets,
	}, options.OutputPath)
}

func writeJSON(data interface{}, outputPath string) error {
	encoder := json.NewEncoder(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		encoder = json.NewEncoder(file)
	}

	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
