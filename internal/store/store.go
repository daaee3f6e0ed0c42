// Package store persists tracked repositories, their progress and the
// review ledger in a single SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/masmgr/gitpace/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a repository record does not exist.
var ErrNotFound = errors.New("repository not found")

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

// Store manages all SQLite operations. WAL mode lets several gitpace
// processes share the database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the database at path and initializes the schema.
// ":memory:" opens a private in-memory database.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	memory := path == ":memory:"
	if memory {
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if memory {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) retry(ctx context.Context, fn func() error) error {
	return retryOp(ctx, defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		name             TEXT NOT NULL,
		path             TEXT NOT NULL UNIQUE,
		default_branch   TEXT NOT NULL,
		current_sha      TEXT,
		target_reference TEXT NOT NULL DEFAULT 'latest',
		ideal_pace       REAL NOT NULL DEFAULT 20,
		pace_period      TEXT NOT NULL DEFAULT '30-days',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS review_logs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		repository_id INTEGER NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		commit_sha    TEXT NOT NULL,
		created_at    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_review_logs_repo_time ON review_logs(repository_id, created_at);

	CREATE TABLE IF NOT EXISTS repo_locks (
		path       TEXT PRIMARY KEY,
		owner      TEXT NOT NULL,
		expires_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

const repoColumns = `id, name, path, default_branch, COALESCE(current_sha, ''), target_reference, ideal_pace, pace_period, created_at, updated_at`

// UpsertRepository inserts repo, or refreshes the name and default branch of
// the record with the same path. Progress of an existing record is kept.
func (s *Store) UpsertRepository(ctx context.Context, repo model.Repository) (*model.Repository, error) {
	p := repo.Progress
	defaults := model.DefaultProgress()
	if p.TargetReference == "" {
		p.TargetReference = defaults.TargetReference
	}
	if p.IdealPace <= 0 {
		p.IdealPace = defaults.IdealPace
	}
	if !p.PacePeriod.Valid() {
		p.PacePeriod = defaults.PacePeriod
	}

	now := formatTime(s.now())
	err := s.retry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO repositories (name, path, default_branch, current_sha, target_reference, ideal_pace, pace_period, created_at, updated_at)
			 VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET
			   name = excluded.name,
			   default_branch = excluded.default_branch,
			   updated_at = excluded.updated_at`,
			repo.Name, repo.Path, repo.DefaultBranch, p.CurrentSHA, p.TargetReference, p.IdealPace, string(p.PacePeriod), now, now,
		)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert repository %s: %w", repo.Path, err)
	}
	return s.GetRepositoryByPath(ctx, repo.Path)
}

// GetRepository returns the repository with id, or ErrNotFound.
func (s *Store) GetRepository(ctx context.Context, id int64) (*model.Repository, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+repoColumns+` FROM repositories WHERE id = ?`, id)
	return scanRepository(row)
}

// GetRepositoryByPath returns the repository registered at path, or ErrNotFound.
func (s *Store) GetRepositoryByPath(ctx context.Context, path string) (*model.Repository, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+repoColumns+` FROM repositories WHERE path = ?`, path)
	return scanRepository(row)
}

// ListRepositories returns all repositories ordered by name.
func (s *Store) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+repoColumns+` FROM repositories ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	repos := []model.Repository{}
	for rows.Next() {
		r, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *r)
	}
	return repos, rows.Err()
}

// DeleteRepository removes the record and its review log. The working copy
// on disk is untouched.
func (s *Store) DeleteRepository(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_logs WHERE repository_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM repositories WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
}

// SetDefaultBranch updates the tracked branch.
func (s *Store) SetDefaultBranch(ctx context.Context, id int64, branch string) error {
	return s.retry(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE repositories SET default_branch = ?, updated_at = ? WHERE id = ?`,
			branch, formatTime(s.now()), id,
		)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRepository(row scanner) (*model.Repository, error) {
	var r model.Repository
	var period, createdStr, updatedStr string
	err := row.Scan(&r.ID, &r.Name, &r.Path, &r.DefaultBranch,
		&r.Progress.CurrentSHA, &r.Progress.TargetReference, &r.Progress.IdealPace, &period,
		&createdStr, &updatedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Progress.PacePeriod = model.PacePeriod(period)

	var parseErr error
	r.CreatedAt, parseErr = parseTime(createdStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parse created_at for repository %d: %w", r.ID, parseErr)
	}
	r.UpdatedAt, parseErr = parseTime(updatedStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parse updated_at for repository %d: %w", r.ID, parseErr)
	}
	return &r, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

// Progress returns the stored progress of repository id.
func (s *Store) Progress(ctx context.Context, id int64) (model.Progress, error) {
	r, err := s.GetRepository(ctx, id)
	if err != nil {
		return model.Progress{}, err
	}
	return r.Progress, nil
}

// SaveProgress replaces the stored progress of repository id.
func (s *Store) SaveProgress(ctx context.Context, id int64, p model.Progress) error {
	return s.retry(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE repositories
			 SET current_sha = NULLIF(?, ''), target_reference = ?, ideal_pace = ?, pace_period = ?, updated_at = ?
			 WHERE id = ?`,
			p.CurrentSHA, p.TargetReference, p.IdealPace, string(p.PacePeriod), formatTime(s.now()), id,
		)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
}

// ---------------------------------------------------------------------------
// Review ledger
// ---------------------------------------------------------------------------

// AppendReview records a review of sha at time at.
func (s *Store) AppendReview(ctx context.Context, id int64, sha string, at time.Time) error {
	return s.retry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO review_logs (repository_id, commit_sha, created_at) VALUES (?, ?, ?)`,
			id, sha, formatTime(at),
		)
		return err
	})
}

// RemoveLatestReview deletes the newest review of repository id and reports
// whether one existed.
func (s *Store) RemoveLatestReview(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := s.retry(ctx, func() error {
		var err error
		removed, err = removeLatest(ctx, s.db, id)
		return err
	})
	return removed, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func removeLatest(ctx context.Context, db execer, id int64) (bool, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM review_logs WHERE id = (
		   SELECT id FROM review_logs WHERE repository_id = ?
		   ORDER BY created_at DESC, id DESC LIMIT 1
		 )`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountReviewsSince counts reviews of repository id at or after since.
func (s *Store) CountReviewsSince(ctx context.Context, id int64, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_logs WHERE repository_id = ? AND created_at >= ?`,
		id, formatTime(since),
	).Scan(&n)
	return n, err
}

// OldestReview returns the time of the first review, if any.
func (s *Store) OldestReview(ctx context.Context, id int64) (time.Time, bool, error) {
	var str sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(created_at) FROM review_logs WHERE repository_id = ?`, id,
	).Scan(&str)
	if err != nil {
		return time.Time{}, false, err
	}
	if !str.Valid {
		return time.Time{}, false, nil
	}
	t, err := parseTime(str.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse review time: %w", err)
	}
	return t, true, nil
}

// ReviewTimes returns every review time of repository id, oldest first.
func (s *Store) ReviewTimes(ctx context.Context, id int64) ([]time.Time, error) {
	logs, err := s.ListReviews(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, len(logs))
	for i, l := range logs {
		times[i] = l.CreatedAt
	}
	return times, nil
}

// ListReviews returns reviews of repository id, oldest first. limit > 0
// keeps only the newest limit entries.
func (s *Store) ListReviews(ctx context.Context, id int64, limit int) ([]model.ReviewLog, error) {
	query := `SELECT id, repository_id, commit_sha, created_at FROM review_logs WHERE repository_id = ? ORDER BY created_at, id`
	args := []any{id}
	if limit > 0 {
		query = `SELECT * FROM (
		  SELECT id, repository_id, commit_sha, created_at FROM review_logs WHERE repository_id = ?
		  ORDER BY created_at DESC, id DESC LIMIT ?
		) ORDER BY created_at, id`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.ReviewLog{}
	for rows.Next() {
		var l model.ReviewLog
		var createdStr string
		if err := rows.Scan(&l.ID, &l.RepositoryID, &l.CommitSHA, &createdStr); err != nil {
			return nil, err
		}
		l.CreatedAt, err = parseTime(createdStr)
		if err != nil {
			return nil, fmt.Errorf("parse review time %d: %w", l.ID, err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ---------------------------------------------------------------------------
// Locks
// ---------------------------------------------------------------------------

// AcquireLock grants owner the lock on path for ttl. It returns false when
// another owner holds an unexpired lock. An owner acquiring its own lock
// again extends it. Insert-or-extend is one statement, so two processes
// racing for the same path cannot both win.
func (s *Store) AcquireLock(ctx context.Context, path, owner string, ttl time.Duration) (bool, error) {
	now := s.now()
	granted := false
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM repo_locks WHERE expires_at < ?`, formatTime(now),
		); err != nil {
			return fmt.Errorf("expire locks: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO repo_locks (path, owner, expires_at) VALUES (?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET expires_at = excluded.expires_at
			 WHERE repo_locks.owner = excluded.owner`,
			path, owner, formatTime(now.Add(ttl)),
		)
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		granted = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return granted, nil
}

// ReleaseLock drops owner's lock on path. Releasing a lock that expired or
// belongs to someone else is a no-op.
func (s *Store) ReleaseLock(ctx context.Context, path, owner string) error {
	return s.retry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM repo_locks WHERE path = ? AND owner = ?`, path, owner,
		)
		return err
	})
}

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

// RecordForward moves the current commit to sha and appends a review, in
// one transaction.
func (s *Store) RecordForward(ctx context.Context, id int64, sha string, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := setCurrent(ctx, tx, id, sha, s.now()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO review_logs (repository_id, commit_sha, created_at) VALUES (?, ?, ?)`,
			id, sha, formatTime(at),
		)
		return err
	})
}

// RecordBackward moves the current commit to sha and removes the newest
// review, in one transaction.
func (s *Store) RecordBackward(ctx context.Context, id int64, sha string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := setCurrent(ctx, tx, id, sha, s.now()); err != nil {
			return err
		}
		_, err := removeLatest(ctx, tx, id)
		return err
	})
}

func setCurrent(ctx context.Context, tx *sql.Tx, id int64, sha string, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE repositories SET current_sha = NULLIF(?, ''), updated_at = ? WHERE id = ?`,
		sha, formatTime(now), id,
	)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// inTx runs fn in a transaction, retrying the whole transaction on
// transient errors.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.retry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}
