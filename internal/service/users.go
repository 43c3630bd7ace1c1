package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/favaddr/internal/models"
)

// bcrypt input limit
const maxPasswordBytes = 72

type userKeeper interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

type tokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Users implements registration, login and profile lookup.
type Users struct {
	db     userKeeper
	hasher passwordHasher
	tokens tokenIssuer
}

func NewUsers(db userKeeper, hasher passwordHasher, tokens tokenIssuer) *Users {
	return &Users{
		db:     db,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates an account. A taken email yields models.ErrDuplicateEmail.
func (s *Users) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, validationError("email is required")
	}
	if password == "" {
		return nil, validationError("password is required")
	}
	if len(password) > maxPasswordBytes {
		return nil, validationError("password must be at most 72 bytes")
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/users.go/Register(): error while `s.hasher.Hash()` calling: %w", err)
	}

	usr, err := s.db.CreateUser(ctx, email, digest)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("in internal/service/users.go/Register(): error while `s.db.CreateUser()` calling: %w", err)
	}

	return usr, nil
}

// Login exchanges valid credentials for a session token. Every credential
// problem is reported as ErrInvalidCredentials.
func (s *Users) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" {
		return "", validationError("email is required")
	}
	if password == "" {
		return "", validationError("password is required")
	}

	usr, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("in internal/service/users.go/Login(): error while `s.db.GetUserByEmail()` calling: %w", err)
	}

	// a corrupt digest is a credential failure, not a server fault
	ok, err := s.hasher.Verify(password, usr.PasswordHash)
	if err != nil || !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(usr.ID)
	if err != nil {
		return "", fmt.Errorf("in internal/service/users.go/Login(): error while `s.tokens.Issue()` calling: %w", err)
	}

	return token, nil
}

// Profile returns the stored record of the user.
func (s *Users) Profile(ctx context.Context, userID int64) (*models.User, error) {
	return s.db.GetUserByID(ctx, userID)
}
