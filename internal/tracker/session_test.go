package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRegister_RecordsNameAndBranch(t *testing.T) {
	st := newTestStore(t)
	client := git.NewFakeClient("/src/widgets", "trunk", testSHAs...)
	client.RepoName = "acme/widgets"

	sess, err := Register(context.Background(), st, "/src/widgets", openerFor(client), model.Progress{})
	require.NoError(t, err)
	require.Equal(t, "acme/widgets", sess.Repository.Name)
	require.Equal(t, "/src/widgets", sess.Repository.Path)
	require.Equal(t, "trunk", sess.Repository.DefaultBranch)

	again, err := Register(context.Background(), st, "/src/widgets", openerFor(client), model.Progress{})
	require.NoError(t, err)
	require.Equal(t, sess.Repository.ID, again.Repository.ID)
}

func TestRegister_InitialProgressOnlyOnFirstAdd(t *testing.T) {
	st := newTestStore(t)
	client := git.NewFakeClient("/src/widgets", "main", testSHAs...)
	initial := model.Progress{IdealPace: 3, PacePeriod: model.PacePeriod7Days}

	sess, err := Register(context.Background(), st, "/src/widgets", openerFor(client), initial)
	require.NoError(t, err)
	require.Equal(t, 3.0, sess.Repository.Progress.IdealPace)
	require.Equal(t, model.PacePeriod7Days, sess.Repository.Progress.PacePeriod)
	require.Equal(t, model.LatestReference, sess.Repository.Progress.TargetReference)

	again, err := Register(context.Background(), st, "/src/widgets", openerFor(client), model.DefaultProgress())
	require.NoError(t, err)
	require.Equal(t, 3.0, again.Repository.Progress.IdealPace)
}

func TestRegister_SurfacesValidationErrors(t *testing.T) {
	for _, sentinel := range []error{git.ErrInvalidPath, git.ErrNotARepository, git.ErrBareRepository} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			st := newTestStore(t)
			open := func(path string) (git.Client, error) {
				return nil, fmt.Errorf("%w: %s", sentinel, path)
			}

			_, err := Register(context.Background(), st, "/src/nothing", open, model.Progress{})
			require.ErrorIs(t, err, sentinel)

			repos, err := st.ListRepositories(context.Background())
			require.NoError(t, err)
			require.Empty(t, repos)
		})
	}
}

func TestRegister_DetachedHeadWithoutCandidates(t *testing.T) {
	st := newTestStore(t)
	client := git.NewFakeClient("/src/widgets", "feature", testSHAs...)
	client.HeadBranch = ""

	_, err := Register(context.Background(), st, "/src/widgets", openerFor(client), model.Progress{})
	require.ErrorIs(t, err, git.ErrNoDefaultBranch)
}

func TestOpen_Revalidates(t *testing.T) {
	st := newTestStore(t)
	client := git.NewFakeClient("/src/widgets", "main", testSHAs...)
	sess, err := Register(context.Background(), st, "/src/widgets", openerFor(client), model.Progress{})
	require.NoError(t, err)

	reopened, err := Open(sess.Repository, openerFor(client))
	require.NoError(t, err)
	require.Same(t, client, reopened.Client)

	gone := func(string) (git.Client, error) { return nil, git.ErrInvalidPath }
	_, err = Open(sess.Repository, gone)
	require.ErrorIs(t, err, git.ErrInvalidPath)
}

func TestFind(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	widgets, err := Register(ctx, st, "/src/widgets", openerFor(git.NewFakeClient("/src/widgets", "main", testSHAs...)), model.Progress{})
	require.NoError(t, err)
	gadgets, err := Register(ctx, st, "/src/gadgets", openerFor(git.NewFakeClient("/src/gadgets", "main", testSHAs...)), model.Progress{})
	require.NoError(t, err)

	tests := []struct {
		selector string
		wantID   int64
	}{
		{fmt.Sprint(widgets.Repository.ID), widgets.Repository.ID},
		{"/src/gadgets", gadgets.Repository.ID},
		{"widgets", widgets.Repository.ID},
		{" gadgets ", gadgets.Repository.ID},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			repo, err := Find(ctx, st, tt.selector)
			require.NoError(t, err)
			require.Equal(t, tt.wantID, repo.ID)
		})
	}

	_, err = Find(ctx, st, "doohickeys")
	require.True(t, errors.Is(err, ErrUnknownRepository))
}

func TestFind_AmbiguousName(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	for _, path := range []string{"/a/widgets", "/b/widgets"} {
		_, err := Register(ctx, st, path, openerFor(git.NewFakeClient(path, "main", testSHAs...)), model.Progress{})
		require.NoError(t, err)
	}

	_, err := Find(ctx, st, "widgets")
	require.Error(t, err)
	require.Contains(t, err.Error(), "more than one")
}
