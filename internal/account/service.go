package account

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/mathgym/internal/store"
)

var (
	// ErrInvalidLogin is returned by Login for an unknown user or a wrong
	// password; the two are not distinguished.
	ErrInvalidLogin = errors.New("invalid username or password")

	// ErrForbidden is returned when a non-admin tries an admin action.
	ErrForbidden = errors.New("only the admin may delete users")

	// ErrProtectedUser is returned when the admin account is targeted for
	// deletion.
	ErrProtectedUser = errors.New("the admin account cannot be deleted")
)

// Options configures a Service.
type Options struct {
	Admin      string
	BcryptCost int
}

// Service registers, authenticates and removes learner accounts.
type Service struct {
	users  store.UserRepo
	tokens *Issuer
	rules  *ruleSet
	admin  string
	cost   int
}

func NewService(users store.UserRepo, tokens *Issuer, opts Options) (*Service, error) {
	rules, err := newRuleSet()
	if err != nil {
		return nil, err
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	if opts.Admin == "" {
		return nil, errors.New("admin username is required")
	}
	return &Service{
		users:  users,
		tokens: tokens,
		rules:  rules,
		admin:  opts.Admin,
		cost:   cost,
	}, nil
}

// Admin returns the protected admin username.
func (s *Service) Admin() string { return s.admin }

// IsAdmin reports whether username is the admin account.
func (s *Service) IsAdmin(username string) bool { return username == s.admin }

// Register validates the credentials, stores a new user with zero stars
// and returns a session token. A taken username yields store.ErrUserExists;
// rule violations yield *InvalidInputError.
func (s *Service) Register(ctx context.Context, c Credentials) (string, error) {
	if err := s.rules.check(c); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, &store.User{Username: c.Username, PasswordHash: string(hash)}); err != nil {
		return "", err
	}
	return s.tokens.Issue(c.Username)
}

// Login checks the password and returns a session token.
func (s *Service) Login(ctx context.Context, c Credentials) (string, error) {
	if c.Username == "" || c.Password == "" {
		return "", ErrInvalidLogin
	}
	u, err := s.users.Get(ctx, c.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", ErrInvalidLogin
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		return "", ErrInvalidLogin
	}
	return s.tokens.Issue(u.Username)
}

// Authenticate resolves a session token to its username.
func (s *Service) Authenticate(token string) (string, error) {
	return s.tokens.Parse(token)
}

// Delete removes target on behalf of actor.
func (s *Service) Delete(ctx context.Context, actor, target string) error {
	if !s.IsAdmin(actor) {
		return ErrForbidden
	}
	if s.IsAdmin(target) {
		return ErrProtectedUser
	}
	return s.users.Delete(ctx, target)
}

// SeedAdmin creates the admin account with the given password and stars
// unless it already exists. It reports whether a user was created.
func (s *Service) SeedAdmin(ctx context.Context, password string, stars int64) (bool, error) {
	_, err := s.users.Get(ctx, s.admin)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	err = s.users.Create(ctx, &store.User{Username: s.admin, PasswordHash: string(hash), Stars: stars})
	if errors.Is(err, store.ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
