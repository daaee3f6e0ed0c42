package tracker

import (
	"context"
	"time"

	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/pace"
	"github.com/masmgr/gitpace/internal/reconcile"
)

// Registry stores tracked repositories.
type Registry interface {
	UpsertRepository(ctx context.Context, repo model.Repository) (*model.Repository, error)
	GetRepository(ctx context.Context, id int64) (*model.Repository, error)
	GetRepositoryByPath(ctx context.Context, path string) (*model.Repository, error)
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	DeleteRepository(ctx context.Context, id int64) error
	SetDefaultBranch(ctx context.Context, id int64, branch string) error
}

// ProgressStore reads and replaces a repository's progress.
type ProgressStore interface {
	Progress(ctx context.Context, repoID int64) (model.Progress, error)
	SaveProgress(ctx context.Context, repoID int64, p model.Progress) error
}

// ReviewLedger is the append/remove side of the review log; pace.Ledger is
// the read side.
type ReviewLedger interface {
	pace.Ledger
	AppendReview(ctx context.Context, repoID int64, sha string, at time.Time) error
	RemoveLatestReview(ctx context.Context, repoID int64) (bool, error)
}

// Store is everything the Engine persists through. RecordForward and
// RecordBackward update the current commit and the ledger atomically. The
// lease table serializes engines in different processes.
type Store interface {
	Registry
	ProgressStore
	ReviewLedger
	reconcile.Leases
	RecordForward(ctx context.Context, repoID int64, sha string, at time.Time) error
	RecordBackward(ctx context.Context, repoID int64, sha string) error
}
