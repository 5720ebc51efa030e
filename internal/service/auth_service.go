package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/auth"
	"github.com/abiodunmale/todoapi/internal/logger"
	usermodel "github.com/abiodunmale/todoapi/internal/models/user"
)

// UserStore is the slice of user storage the auth service needs. Tests
// substitute storage.MemoryUserStore.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (*usermodel.User, error)
	GetByEmail(ctx context.Context, email string) (*usermodel.User, error)
}

type AuthService struct {
	users      UserStore
	jwtManager *auth.JWTManager
	log        zerolog.Logger
}

func NewAuthService(users UserStore, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		log:        logger.New("auth-service"),
	}
}

// Register creates a new account. The email is expected normalized
// (lowercased, trimmed) by the validation layer.
func (s *AuthService) Register(ctx context.Context, email, password string) (*usermodel.AuthResponse, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrAlreadyExists
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwtManager.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")

	return &usermodel.AuthResponse{
		Token: token,
		User:  user.Public(),
	}, nil
}

// Login returns the same ErrInvalidCredentials for an unknown email and for a
// wrong password, so the response never reveals whether the account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*usermodel.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, _, err := s.jwtManager.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &usermodel.AuthResponse{
		Token: token,
		User:  user.Public(),
	}, nil
}
