package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/userauth/userauth-go/internal/crypto"
	"github.com/userauth/userauth-go/internal/metrics"
	"github.com/userauth/userauth-go/internal/model"
	"github.com/userauth/userauth-go/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInternal hides storage and hashing failures from callers; the cause
	// is logged.
	ErrInternal = errors.New("internal error")
)

const (
	msgRegistered = "User registered successfully"
	msgLoggedIn   = "Login successful"
	msgLoggedOut  = "Logout successful"
)

// UserStore persists users and enforces email uniqueness.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Hasher derives and checks password hashes.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Tokens issues and verifies session tokens.
type Tokens interface {
	Issue(email string) (string, error)
	Verify(token string) (*crypto.Claims, error)
}

// AuthService handles authentication business logic.
type AuthService struct {
	store  UserStore
	hasher Hasher
	tokens Tokens
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, hasher Hasher, tokens Tokens, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger.Named("auth"),
	}
}

// Register creates a new user account. The returned user never carries the
// password or its hash.
func (s *AuthService) Register(ctx context.Context, email, password string) (model.RegisterResponse, error) {
	_, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.RecordAuthOperation("register", "conflict")
		return model.RegisterResponse{}, ErrEmailTaken
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.RegisterResponse{}, s.internal("register", "lookup failed", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.RegisterResponse{}, s.internal("register", "hashing failed", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
	}

	// Another request may have inserted the same email since the lookup;
	// the store's unique constraint decides.
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			metrics.RecordAuthOperation("register", "conflict")
			return model.RegisterResponse{}, ErrEmailTaken
		}
		return model.RegisterResponse{}, s.internal("register", "insert failed", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	metrics.RecordAuthOperation("register", "success")

	return model.RegisterResponse{
		Message: msgRegistered,
		User: model.UserResponse{
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}

// Login checks credentials and issues a session token. An unknown email and
// a wrong password fail with the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.LoginResponse, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.RecordAuthOperation("login", "unauthorized")
			return model.LoginResponse{}, ErrInvalidCredentials
		}
		return model.LoginResponse{}, s.internal("login", "lookup failed", err)
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return model.LoginResponse{}, s.internal("login", "stored hash unusable", err)
	}
	if !match {
		metrics.RecordAuthOperation("login", "unauthorized")
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return model.LoginResponse{}, s.internal("login", "token signing failed", err)
	}

	metrics.RecordAuthOperation("login", "success")
	return model.LoginResponse{
		Message: msgLoggedIn,
		Token:   token,
	}, nil
}

// Logout always succeeds. The token is verified only to record whether the
// caller still held a live session; nothing is invalidated server-side.
func (s *AuthService) Logout(_ context.Context, token string) model.MessageResponse {
	outcome := "success"
	if claims, err := s.tokens.Verify(token); err != nil {
		outcome = "invalid_token"
		s.logger.Debug("logout with invalid token", zap.Error(err))
	} else {
		s.logger.Debug("logout", zap.String("email", claims.Email))
	}

	metrics.RecordAuthOperation("logout", outcome)
	return model.MessageResponse{Message: msgLoggedOut}
}

// Profile returns the public view of the user identified by email.
func (s *AuthService) Profile(ctx context.Context, email string) (model.UserResponse, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrInvalidCredentials
		}
		return model.UserResponse{}, s.internal("profile", "lookup failed", err)
	}

	return model.UserResponse{
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *AuthService) internal(operation, msg string, err error) error {
	s.logger.Error(msg, zap.String("operation", operation), zap.Error(err))
	metrics.RecordAuthOperation(operation, "error")
	return ErrInternal
}
