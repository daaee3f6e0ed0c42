package cmd

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitpace/internal/tracker"
)

type engineOp func(e *tracker.Engine, ctx context.Context) (*tracker.View, error)

// reviewCmd builds a command that runs op on the selected repository and
// prints the resulting view.
func reviewCmd(name, usage string, aliases []string, op engineOp) *cli.Command {
	return &cli.Command{
		Name:    name,
		Aliases: aliases,
		Usage:   usage,
		Flags:   repoFlags(),
		Action: func(c *cli.Context) error {
			ctx, err := NewCommandContext(c)
			if err != nil {
				return err
			}
			defer ctx.Close()

			engine, err := ctx.Engine(c)
			if err != nil {
				return err
			}
			view, err := op(engine, c.Context)
			if err != nil {
				return err
			}
			return writeStatusReport(c, name, view)
		},
	}
}

// StatusCmd returns the status command.
func StatusCmd() *cli.Command {
	return reviewCmd("status", "Show the review position and preview the next commit", []string{"s"},
		(*tracker.Engine).Sync)
}

// NextCmd returns the next command.
func NextCmd() *cli.Command {
	return reviewCmd("next", "Mark the previewed commit reviewed and move forward", []string{"n"},
		(*tracker.Engine).StepForward)
}

// PrevCmd returns the prev command.
func PrevCmd() *cli.Command {
	return reviewCmd("prev", "Step back one commit and undo its review", []string{"p"},
		(*tracker.Engine).StepBackward)
}

// RefreshCmd returns the refresh command.
func RefreshCmd() *cli.Command {
	return reviewCmd("refresh", "Fetch the remote and re-sync the review position", nil,
		(*tracker.Engine).Refresh)
}
