package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readinglog/readinglog-server/internal/domain"
	domainerrors "github.com/readinglog/readinglog-server/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestProfileService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	env.user(t, "bob")

	updated, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{
		DisplayName: strPtr("  Alice A. "),
		AvatarURL:   strPtr("https://img.example.com/alice.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.DisplayName)
	assert.Equal(t, "alice", updated.Username, "nil fields are left alone")
	assert.Equal(t, "https://img.example.com/alice.png", updated.AvatarURL)

	_, err = env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{Username: strPtr("bob")})
	requireCode(t, err, domainerrors.CodeConflict)

	_, err = env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{AvatarURL: strPtr("not a url")})
	requireCode(t, err, domainerrors.CodeValidation)

	cleared, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{AvatarURL: strPtr("")})
	require.NoError(t, err)
	assert.Contains(t, cleared.AvatarURL, "ui-avatars.com")

	got, err := env.profile.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", got.DisplayName)
}

func TestProfileService_ResetAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	_, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{AvatarURL: strPtr("https://img.example.com/a.png")})
	require.NoError(t, err)

	for _, blank := range []string{"", "   "} {
		reset, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{AvatarURL: strPtr(blank)})
		require.NoError(t, err, "avatar %q", blank)
		assert.Equal(t, domain.DefaultAvatarURL("alice"), reset.AvatarURL)
	}

	// Omitting the field keeps the current avatar.
	kept, err := env.profile.UpdateProfile(ctx, alice.ID, UpdateProfileRequest{DisplayName: strPtr("Alice")})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAvatarURL("alice"), kept.AvatarURL)
}

func TestProfileService_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	require.NoError(t, env.profile.DeleteAccount(ctx, alice.ID))

	_, err := env.profile.GetProfile(ctx, alice.ID)
	requireCode(t, err, domainerrors.CodeNotFound)
	err = env.profile.DeleteAccount(ctx, alice.ID)
	requireCode(t, err, domainerrors.CodeNotFound)
}
