package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/output"
	"github.com/masmgr/gitpace/internal/tracker"
)

func writeStatusReport(c *cli.Context, action string, view *tracker.View) error {
	opts := OutputOptions(c)
	writer := output.NewStatusReportWriter(opts.Format)
	return writer.Write(&output.StatusReport{
		Action:      action,
		GeneratedAt: time.Now(),
		View:        view,
	}, opts)
}

func writeRepositoryList(c *cli.Context, repos []model.Repository) error {
	opts := OutputOptions(c)
	writer := output.NewRepositoryListWriter(opts.Format)
	return writer.Write(&output.RepositoryListReport{
		GeneratedAt:  time.Now(),
		Repositories: repos,
	}, opts)
}

func writeChartReport(c *cli.Context, view *tracker.View) error {
	opts := OutputOptions(c)
	writer := output.NewChartReportWriter(opts.Format)
	return writer.Write(&output.ChartReport{
		GeneratedAt: time.Now(),
		Repository:  view.Repository,
		Pace:        view.Pace,
		Chart:       view.Chart,
	}, opts)
}
