package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"github.com/jmoiron/sqlx"
)

const usersTable = "users"

// userRow mirrors the users table for sqlx scanning.
type userRow struct {
	ID           int64         `db:"id"`
	Username     string        `db:"username"`
	PasswordHash string        `db:"password_hash"`
	Stars        int64         `db:"stars"`
	LastActive   sql.NullInt64 `db:"last_active"`
	CreatedAt    int64         `db:"created_at"`
}

func (r userRow) toUser() *User {
	return &User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Stars:        r.Stars,
		LastActive:   fromMillis(r.LastActive),
		CreatedAt:    time.UnixMilli(r.CreatedAt).UTC(),
	}
}

// userRepo implements UserRepo.
type userRepo struct {
	db  *sqlx.DB
	b   *entsql.DialectBuilder
	now func() time.Time
}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	if u.Stars < 0 {
		return ErrNegativeScore
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now().UTC()
	}

	query, args := r.b.Insert(usersTable).
		Columns("username", "password_hash", "stars", "created_at").
		Values(u.Username, u.PasswordHash, u.Stars, u.CreatedAt.UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) Get(ctx context.Context, username string) (*User, error) {
	query, args := r.b.Select("id", "username", "password_hash", "stars", "last_active", "created_at").
		From(r.b.Table(usersTable)).
		Where(entsql.EQ("username", username)).
		Query()

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return row.toUser(), nil
}

func (r *userRepo) Delete(ctx context.Context, username string) error {
	query, args := r.b.Delete(usersTable).
		Where(entsql.EQ("username", username)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
