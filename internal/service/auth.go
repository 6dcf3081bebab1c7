package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/readinglog/readinglog-server/internal/auth"
	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
	"github.com/readinglog/readinglog-server/internal/id"
	"github.com/readinglog/readinglog-server/internal/metrics"
	"github.com/readinglog/readinglog-server/internal/store"
	"github.com/readinglog/readinglog-server/internal/validation"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	validator      *validation.Validator
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service. metrics may be nil.
func NewAuthService(
	st store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	validator *validation.Validator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		store:          st,
		tokenService:   tokenService,
		sessionService: sessionService,
		validator:      validator,
		metrics:        metrics,
		logger:         logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,username"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates an account and logs it in. The first account on an empty
// instance becomes admin.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client ClientInfo) (*AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := s.validator.Validate(req); err != nil {
		s.metrics.AuthAttempt("register", false)
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		DisplayName:  req.DisplayName,
		AvatarURL:    domain.DefaultAvatarURL(req.Username),
	}
	user.InitTimestamps()
	now := user.CreatedAt
	user.LastLoginAt = &now

	if err := s.store.CreateUser(ctx, user); err != nil {
		s.metrics.AuthAttempt("register", false)
		return nil, fromStore(err, "create user")
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.AuthAttempt("register", true)
	s.logger.Info("user registered",
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role,
	)

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Login authenticates a user with email and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		s.metrics.AuthAttempt("login", false)
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			// Don't leak whether the email exists.
			s.metrics.AuthAttempt("login", false)
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.metrics.AuthAttempt("login", false)
		s.logger.Debug("login failed: wrong password", "user_id", user.ID, "ip", client.IPAddress)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.store.UpdateUser(ctx, user); err != nil {
		// Not critical, continue with login.
		s.logger.Warn("failed to update last login time", "user_id", user.ID, "error", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.AuthAttempt("login", true)
	s.logger.Info("user logged in", "user_id", user.ID, "ip", client.IPAddress)

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(refreshToken) == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"refresh_token": "is required",
		})
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, refreshToken)
	if err != nil {
		s.metrics.AuthAttempt("refresh", false)
		return nil, err
	}

	s.metrics.AuthAttempt("refresh", true)
	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Logout ends the caller's own session. A session belonging to another user
// is left alone.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil
	}

	if err := s.sessionService.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	s.logger.Info("user logged out", "user_id", userID, "session_id", sessionID)
	return nil
}

// VerifyAccessToken validates a token and returns the user and claims it
// belongs to.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, nil, domainerrors.TokenExpired("access token expired")
		}
		return nil, nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}
