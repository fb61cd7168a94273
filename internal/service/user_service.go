package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dom "github.com/hirmezb/tasktracker/internal/domain"
	"github.com/hirmezb/tasktracker/internal/repo"
	"github.com/hirmezb/tasktracker/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrMissingFields      = errors.New("name, email and password are required")
)

// TokenIssuer abstracts bearer token creation.
type TokenIssuer interface {
	Issue(ctx context.Context, user dom.User) (string, error)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  dom.User
	Token string
}

// UserService handles user auth logic.
type UserService struct {
	repo   repo.UserRepo
	tokens TokenIssuer
	cost   int
	now    func() time.Time
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo, tokens TokenIssuer) *UserService {
	return &UserService{repo: repo, tokens: tokens, cost: bcrypt.DefaultCost, now: time.Now}
}

// Register creates a new user with hashed password and signs a token for it.
func (s *UserService) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	name = strings.TrimSpace(name)
	email = utils.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return AuthResult{}, ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, dom.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	return s.issue(ctx, u)
}

// Login checks email and password; returns the user and a fresh token if valid.
func (s *UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

func (s *UserService) issue(ctx context.Context, u dom.User) (AuthResult, error) {
	token, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: u, Token: token}, nil
}
