package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitpace/internal/tracker"
)

var errNoSettings = errors.New("nothing to change: pass --target, --pace or --period")

// SettingsCmd returns the settings command.
func SettingsCmd() *cli.Command {
	flags := append(repoFlags(),
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "Commit, branch or tag to review up to (\"latest\" follows the branch tip)",
		},
		&cli.Float64Flag{
			Name:  "pace",
			Usage: "Ideal number of commits to review per day",
		},
		&cli.StringFlag{
			Name:  "period",
			Usage: "Window of the actual pace (7-days, 30-days, all-time)",
		},
	)

	return &cli.Command{
		Name:   "settings",
		Usage:  "Change the review target and paces",
		Flags:  flags,
		Action: settingsAction,
	}
}

func settingsAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	engine, err := ctx.Engine(c)
	if err != nil {
		return err
	}

	s, changed := settingsFromFlags(c, tracker.SettingsFrom(engine.Repository().Progress))
	if !changed {
		return errNoSettings
	}
	view, err := engine.UpdateSettings(c.Context, s)
	if err != nil {
		return err
	}
	return writeStatusReport(c, "settings", view)
}

// settingsFromFlags overlays the flags that were given on current.
func settingsFromFlags(c *cli.Context, current tracker.Settings) (tracker.Settings, bool) {
	changed := false
	if c.IsSet("target") {
		current.TargetReference = c.String("target")
		changed = true
	}
	if c.IsSet("pace") {
		current.IdealPace = c.Float64("pace")
		changed = true
	}
	if c.IsSet("period") {
		current.PacePeriod = c.String("period")
		changed = true
	}
	return current, changed
}
