package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitpace/config"
	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/output"
	"github.com/masmgr/gitpace/internal/store"
	"github.com/masmgr/gitpace/internal/tracker"
)

// CommandContext holds common state for command execution.
// It encapsulates the configuration, the open store and the git opener.
type CommandContext struct {
	Config *config.Config
	Store  *store.Store
	Open   tracker.Opener
}

// NewCommandContext loads the configuration and opens the store, creating
// its directory on first use. Callers must Close it.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	if cfg.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	st, err := store.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database, err)
	}

	return &CommandContext{
		Config: cfg,
		Store:  st,
		Open:   tracker.GitOpener(git.OpenOptions{Timeout: cfg.CommandTimeout()}),
	}, nil
}

// Close releases the store.
func (ctx *CommandContext) Close() error {
	return ctx.Store.Close()
}

// EngineOptions maps the configuration onto tracker options.
func (ctx *CommandContext) EngineOptions() tracker.Options {
	return tracker.Options{
		Remote:             ctx.Config.Remote,
		UpstreamWindowDays: ctx.Config.UpstreamWindowDays,
		PeakWindowDays:     ctx.Config.PeakWindowDays,
		HorizonYears:       ctx.Config.HorizonYears,
		Filter: git.PathFilter{
			Include: ctx.Config.Filters.Include,
			Exclude: ctx.Config.Filters.Exclude,
		},
	}
}

// Engine finds the repository named by the --repo flag, re-validates its
// working copy and returns an engine for it.
func (ctx *CommandContext) Engine(c *cli.Context) (*tracker.Engine, error) {
	repo, err := tracker.Find(c.Context, ctx.Store, c.String("repo"))
	if err != nil {
		return nil, err
	}
	session, err := tracker.Open(repo, ctx.Open)
	if err != nil {
		return nil, err
	}
	return tracker.New(*session, ctx.Store, ctx.EngineOptions()), nil
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		OutputPath: c.String("output"),
	}
}
