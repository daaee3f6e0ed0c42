package tracker

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/model"
)

// Session is one tracked repository opened for use. It is passed to the
// Engine explicitly; nothing is looked up from process state.
type Session struct {
	Repository *model.Repository
	Client     git.Client
}

// Opener opens the working copy at an absolute path.
type Opener func(path string) (git.Client, error)

// GitOpener returns an Opener backed by git.Open.
func GitOpener(opts git.OpenOptions) Opener {
	return func(path string) (git.Client, error) {
		return git.Open(path, opts)
	}
}

// Register validates the repository at path and records it with the initial
// progress; zero fields of initial take the model defaults. Registering the
// same path again refreshes its name and default branch and keeps progress.
func Register(ctx context.Context, reg Registry, path string, open Opener, initial model.Progress) (*Session, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", git.ErrInvalidPath, path)
	}

	client, err := open(abs)
	if err != nil {
		return nil, err
	}
	branch, err := client.DefaultBranch(ctx)
	if err != nil {
		return nil, err
	}

	repo, err := reg.UpsertRepository(ctx, model.Repository{
		Name:          client.Name(ctx),
		Path:          client.Path(),
		DefaultBranch: branch,
		Progress:      initial,
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", abs, err)
	}
	return &Session{Repository: repo, Client: client}, nil
}

// Open re-validates a stored repository before use. A working copy that was
// moved or deleted since registration surfaces as the open error.
func Open(repo *model.Repository, open Opener) (*Session, error) {
	client, err := open(repo.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", repo.Name, err)
	}
	return &Session{Repository: repo, Client: client}, nil
}

// Find looks a repository up by ID, path or name, in that order. Relative
// paths are resolved against the working directory.
func Find(ctx context.Context, reg Registry, selector string) (*model.Repository, error) {
	selector = strings.TrimSpace(selector)
	repos, err := reg.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	if id, err := strconv.ParseInt(selector, 10, 64); err == nil {
		for i := range repos {
			if repos[i].ID == id {
				return &repos[i], nil
			}
		}
	}

	if abs, err := filepath.Abs(selector); err == nil {
		for i := range repos {
			if repos[i].Path == abs {
				return &repos[i], nil
			}
		}
	}

	var match *model.Repository
	for i := range repos {
		if repos[i].Name != selector {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%q matches more than one repository, use the ID or path", selector)
		}
		match = &repos[i]
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRepository, selector)
	}
	return match, nil
}
