package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

// scoreRepo implements ScoreRepo on the users table.
type scoreRepo struct {
	db     *sqlx.DB
	b      *entsql.DialectBuilder
	now    func() time.Time
	policy ScorePolicy
}

// SubmitScore runs in one transaction so the existence check and the
// update see the same row. Concurrent submissions for one identity are
// serialized by the database; under ScorePolicyLastWrite the last commit
// wins.
func (r *scoreRepo) SubmitScore(ctx context.Context, username string, score int64) error {
	if score < 0 {
		return ErrNegativeScore
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin score tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args := r.b.Select("id").
		From(r.b.Table(usersTable)).
		Where(entsql.EQ("username", username)).
		Query()
	var id int64
	if err := tx.GetContext(ctx, &id, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	nowMs := r.now().UTC().UnixMilli()
	switch r.policy {
	case ScorePolicyMonotonic:
		query, args = r.b.Update(usersTable).
			Set("last_active", nowMs).
			Where(entsql.EQ("id", id)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("touch user: %w", err)
		}
		query, args = r.b.Update(usersTable).
			Set("stars", score).
			Where(entsql.And(entsql.EQ("id", id), entsql.LT("stars", score))).
			Query()
	default:
		query, args = r.b.Update(usersTable).
			Set("stars", score).
			Set("last_active", nowMs).
			Where(entsql.EQ("id", id)).
			Query()
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score: %w", err)
	}
	return nil
}

// AddStars increments in a single UPDATE, so it composes with concurrent
// SubmitScore and AddStars calls instead of overwriting them.
func (r *scoreRepo) AddStars(ctx context.Context, username string, delta int64) (int64, error) {
	if delta < 0 {
		return 0, ErrNegativeScore
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin score tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args := r.b.Update(usersTable).
		Add("stars", delta).
		Set("last_active", r.now().UTC().UnixMilli()).
		Where(entsql.EQ("username", username)).
		Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("add stars: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("add stars: %w", err)
	} else if n == 0 {
		return 0, ErrUserNotFound
	}

	query, args = r.b.Select("stars").
		From(r.b.Table(usersTable)).
		Where(entsql.EQ("username", username)).
		Query()
	var total int64
	if err := tx.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("read stars: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit score: %w", err)
	}
	return total, nil
}

func (r *scoreRepo) Leaderboard(ctx context.Context, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query, args := r.b.Select("username", "stars", "last_active").
		From(r.b.Table(usersTable)).
		OrderBy(entsql.Desc("stars"), entsql.Asc("username")).
		Limit(limit).
		Query()

	var rows []struct {
		Username   string        `db:"username"`
		Stars      int64         `db:"stars"`
		LastActive sql.NullInt64 `db:"last_active"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}

	entries := make([]ScoreEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ScoreEntry{
			Username:   row.Username,
			Stars:      row.Stars,
			LastActive: fromMillis(row.LastActive),
		})
	}
	return entries, nil
}
