package output

import (
	"time"

	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/pace"
	"github.com/masmgr/gitpace/internal/tracker"
)

// Compile-time interface conformance checks.
var (
	_ StatusReportWriter = (*ConsoleStatusWriter)(nil)
	_ StatusReportWriter = (*JSONStatusWriter)(nil)
	_ StatusReportWriter = (*CSVStatusWriter)(nil)
	_ StatusReportWriter = (*MarkdownStatusWriter)(nil)

	_ RepositoryListWriter = (*ConsoleRepositoryWriter)(nil)
	_ RepositoryListWriter = (*JSONRepositoryWriter)(nil)
	_ RepositoryListWriter = (*CSVRepositoryWriter)(nil)
	_ RepositoryListWriter = (*MarkdownRepositoryWriter)(nil)

	_ ChartReportWriter = (*ConsoleChartWriter)(nil)
	_ ChartReportWriter = (*JSONChartWriter)(nil)
	_ ChartReportWriter = (*CSVChartWriter)(nil)
	_ ChartReportWriter = (*MarkdownChartWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
}

// StatusReport is the view returned by a tracker operation.
type StatusReport struct {
	Action      string // "status", "next", "prev", "refresh", "settings"
	GeneratedAt time.Time
	View        *tracker.View
}

// RepositoryListReport lists the tracked repositories.
type RepositoryListReport struct {
	GeneratedAt  time.Time
	Repositories []model.Repository
}

// ChartReport holds the remaining-commits series of one repository.
type ChartReport struct {
	GeneratedAt time.Time
	Repository  model.Repository
	Pace        pace.Data
	Chart       pace.Chart
}

// StatusReportWriter writes status reports.
type StatusReportWriter interface {
	Write(report *StatusReport, options OutputOptions) error
}

// RepositoryListWriter writes repository lists.
type RepositoryListWriter interface {
	Write(report *RepositoryListReport, options OutputOptions) error
}

// ChartReportWriter writes chart series.
type ChartReportWriter interface {
	Write(report *ChartReport, options OutputOptions) error
}

// NewStatusReportWriter creates a status writer for the specified format.
func NewStatusReportWriter(format OutputFormat) StatusReportWriter {
	switch format {
	case FormatJSON:
		return &JSONStatusWriter{}
	case FormatCSV:
		return &CSVStatusWriter{}
	case FormatMarkdown:
		return &MarkdownStatusWriter{}
	default:
		return &ConsoleStatusWriter{}
	}
}

// NewRepositoryListWriter creates a repository list writer for the specified format.
func NewRepositoryListWriter(format OutputFormat) RepositoryListWriter {
	switch format {
	case FormatJSON:
		return &JSONRepositoryWriter{}
	case FormatCSV:
		return &CSVRepositoryWriter{}
	case FormatMarkdown:
		return &MarkdownRepositoryWriter{}
	default:
		return &ConsoleRepositoryWriter{}
	}
}

// NewChartReportWriter creates a chart writer for the specified format.
func NewChartReportWriter(format OutputFormat) ChartReportWriter {
	switch format {
	case FormatJSON:
		return &JSONChartWriter{}
	case FormatCSV:
		return &CSVChartWriter{}
	case FormatMarkdown:
		return &MarkdownChartWriter{}
	default:
		return &ConsoleChartWriter{}
	}
}
