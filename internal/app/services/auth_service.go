package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/classroom/internal/app/models"
	"github.com/yigit/classroom/internal/app/models/dto"
	"github.com/yigit/classroom/internal/app/repositories"
	"github.com/yigit/classroom/internal/pkg/apperrors"
	"github.com/yigit/classroom/internal/pkg/auth"
)

// TokenIssuer issues and verifies the JWT pair
type TokenIssuer interface {
	GenerateTokenPair(user *models.User) (*auth.TokenPair, error)
	ValidateRefreshToken(tokenString string) (*auth.Claims, error)
}

// AuthService handles sign-up, sign-in and token refresh
type AuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
}

type authServiceImpl struct {
	userRepo repositories.IUserRepository
	tokens   TokenIssuer
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.IUserRepository, tokens TokenIssuer, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authServiceImpl) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	userType := models.UserType(strings.ToLower(req.Type))
	if !userType.Valid() {
		return nil, apperrors.NewInvalidArgumentError("Type must be student or teacher")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to hash password", err)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Type:         userType,
	}
	if userType == models.UserTypeStudent {
		user.Group = req.Group
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Str("userId", user.ID.String()).
		Str("type", string(user.Type)).
		Msg("User registered")

	return s.authResponse(user)
}

func (s *authServiceImpl) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("userId", user.ID.String()).Msg("Failed sign-in attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	principal, err := claims.Principal()
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.authResponse(user)
}

func (s *authServiceImpl) authResponse(user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to generate tokens", err)
	}
	return &dto.AuthResponse{
		User: dto.NewUserResponse(user),
		Token: dto.TokenResponse{
			AccessToken:      pair.AccessToken,
			RefreshToken:     pair.RefreshToken,
			TokenType:        "Bearer",
			ExpiresIn:        pair.ExpiresIn,
			RefreshExpiresIn: pair.RefreshExpiresIn,
		},
	}, nil
}
