package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/tracker"
)

// AddCmd returns the add command.
func AddCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Start tracking a local repository",
		ArgsUsage: "[path]",
		Flags:     outputFlags(),
		Action:    addAction,
	}
}

func addAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	path := c.Args().First()
	if path == "" {
		path = "."
	}

	session, err := tracker.Register(c.Context, ctx.Store, path, ctx.Open, ctx.Config.InitialProgress())
	if err != nil {
		return fmt.Errorf("failed to add repository: %w", err)
	}
	return writeRepositoryList(c, []model.Repository{*session.Repository})
}

// ListCmd returns the list command.
func ListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tracked repositories",
		Flags:   outputFlags(),
		Action:  listAction,
	}
}

func listAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	repos, err := ctx.Store.ListRepositories(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}
	return writeRepositoryList(c, repos)
}

// RemoveCmd returns the remove command. The working copy is left untouched.
func RemoveCmd() *cli.Command {
	return &cli.Command{
		Name:    "remove",
		Aliases: []string{"rm"},
		Usage:   "Stop tracking a repository and drop its review log",
		Flags:   []cli.Flag{repoFlag()},
		Action:  removeAction,
	}
}

func removeAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()

	repo, err := tracker.Find(c.Context, ctx.Store, c.String("repo"))
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteRepository(c.Context, repo.ID); err != nil {
		return fmt.Errorf("failed to remove %s: %w", repo.Name, err)
	}
	fmt.Fprintf(c.App.Writer, "Removed %s (%s)\n", repo.Name, repo.Path)
	return nil
}
