package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkocak/librarian/internal/auth"
	"github.com/dkocak/librarian/internal/domain"
	"github.com/dkocak/librarian/internal/event"
	"github.com/dkocak/librarian/internal/repository"
	apperrors "github.com/dkocak/librarian/pkg/errors"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService implements the business logic for account and token operations.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	producer *event.Producer
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		producer: producer,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new user account with the default role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.InvalidInput("email is not valid")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a user with email and password, returning a token pair.
// Unknown email and wrong password produce the same error so the endpoint
// does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.InvalidCredentials()
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, nil, apperrors.InvalidCredentials()
	}

	// Roles are free-form in storage; flag unknown values but do not block login.
	if !domain.IsValidRole(user.Role) {
		s.logger.WarnContext(ctx, "user has unrecognized role",
			slog.String("user_id", user.ID),
			slog.String("role", user.Role),
		)
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, pair, nil
}

// Refresh issues a new access token for an identity already verified by the
// refresh-token middleware. Refresh tokens are stateless, so there is nothing
// to look up or rotate here.
func (s *AuthService) Refresh(ctx context.Context, userID, role string) (string, error) {
	if userID == "" {
		return "", apperrors.Unauthorized("authentication required")
	}

	accessToken, err := s.tokens.GenerateAccessToken(userID, role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "access token refreshed", slog.String("user_id", userID))

	return accessToken, nil
}

// GetProfile returns the account for the given user ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) generateTokenPair(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
