package cmd

import (
	"github.com/urfave/cli/v2"
)

// ChartCmd returns the chart command.
func ChartCmd() *cli.Command {
	return &cli.Command{
		Name:   "chart",
		Usage:  "Print the remaining-commits projection for the ideal and actual paces",
		Flags:  repoFlags(),
		Action: chartAction,
	}
}

func chartAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	engine, err := ctx.Engine(c)
	if err != nil {
		return err
	}
	view, err := engine.Sync(c.Context)
	if err != nil {
		return err
	}
	return writeChartReport(c, view)
}
