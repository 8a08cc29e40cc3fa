package store

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=repo.go -destination=../mocks/store/mock_repo.go -package=mock_store

var (
	// ErrUserExists is returned by Create for a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when no user has the given username.
	ErrUserNotFound = errors.New("user not found")

	// ErrNegativeScore is returned by SubmitScore and AddStars for a value
	// below zero.
	ErrNegativeScore = errors.New("score must be non-negative")
)

// User is a learner account together with its accumulated score.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Stars        int64
	LastActive   *time.Time // nil until the first score submission
	CreatedAt    time.Time
}

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	Username   string
	Stars      int64
	LastActive *time.Time
}

// ScorePolicy decides how a submitted score replaces the stored one.
type ScorePolicy string

const (
	// ScorePolicyLastWrite stores whatever was submitted last.
	ScorePolicyLastWrite ScorePolicy = "last-write"

	// ScorePolicyMonotonic never lets a score decrease; a lower
	// submission only refreshes the activity timestamp.
	ScorePolicyMonotonic ScorePolicy = "monotonic"
)

// UserRepo manages learner accounts.
type UserRepo interface {
	// Create inserts a new user. Returns ErrUserExists if the username
	// is taken.
	Create(ctx context.Context, u *User) error

	// Get returns the user or ErrUserNotFound.
	Get(ctx context.Context, username string) (*User, error)

	// Delete removes the user or returns ErrUserNotFound.
	Delete(ctx context.Context, username string) error
}

// ScoreRepo records scores and serves the leaderboard.
type ScoreRepo interface {
	// SubmitScore records score for the identity and refreshes its
	// last-activity timestamp.
	SubmitScore(ctx context.Context, username string, score int64) error

	// AddStars atomically adds delta to the stored score, refreshes the
	// last-activity timestamp and returns the new total.
	AddStars(ctx context.Context, username string, delta int64) (int64, error)

	// Leaderboard returns up to limit users ordered by score, highest first.
	Leaderboard(ctx context.Context, limit int) ([]ScoreEntry, error)
}
