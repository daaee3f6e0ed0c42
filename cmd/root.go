package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitpace/config"
	"github.com/masmgr/gitpace/internal/output"
)

var errorColor = color.New(color.FgRed)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "gitpace",
		Usage:   "Review a repository's history one commit at a time",
		Version: "1.0.0",
		Commands: []*cli.Command{
			AddCmd(),
			ListCmd(),
			RemoveCmd(),
			StatusCmd(),
			NextCmd(),
			PrevCmd(),
			RefreshCmd(),
			SettingsCmd(),
			ChartCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the progress database (overrides the config file)",
			},
		},
	}
}

// Output flags shared across commands
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	}
}

func repoFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "repo",
		Aliases: []string{"r"},
		Usage:   "Tracked repository: ID, path or name",
		Value:   ".",
	}
}

// Flags of commands that act on one tracked repository
func repoFlags() []cli.Flag {
	return append([]cli.Flag{repoFlag()}, outputFlags()...)
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if db := c.String("db"); db != "" {
		cfg.Database = db
	}
	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
