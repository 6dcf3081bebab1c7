package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/readinglog/readinglog-server/internal/domain"
	"github.com/readinglog/readinglog-server/internal/store"
	"github.com/readinglog/readinglog-server/internal/validation"
)

// ProfileService lets users read and change their own account.
type ProfileService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(st store.Store, validator *validation.Validator, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProfileService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

// UpdateProfileRequest contains optional fields to update. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Username    *string `json:"username,omitempty" validate:"omitempty,min=3,max=50,username"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,http_url,max=2048"`
}

// GetProfile returns the user's account.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "get user")
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(req.Username)
	trim(req.DisplayName)
	trim(req.AvatarURL)

	// An empty avatar resets to the generated default.
	resetAvatar := req.AvatarURL != nil && *req.AvatarURL == ""
	if resetAvatar {
		req.AvatarURL = nil
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "get user")
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	switch {
	case resetAvatar:
		user.AvatarURL = domain.DefaultAvatarURL(user.Username)
	case req.AvatarURL != nil:
		user.AvatarURL = *req.AvatarURL
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fromStore(err, "update user")
	}

	s.logger.Info("profile updated", "user_id", userID)
	return user, nil
}

// DeleteAccount removes the user and everything they own.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fromStore(err, "delete user")
	}

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}

