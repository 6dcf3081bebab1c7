package domain

import (
	"net/url"
	"strings"
	"time"
)

// Role represents the user's permission level.
type Role string

const (
	// RoleAdmin may manage the catalog, users and reviews.
	RoleAdmin Role = "admin"
	// RoleModerator may approve and reject reviews.
	RoleModerator Role = "moderator"
	// RoleMember is a regular reader.
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

// User is a registered reader.
type User struct {
	Timestamps
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name"`
	AvatarURL    string     `json:"avatar_url"`
	Role         Role       `json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModerate returns true if the user may act on the review queue.
func (u *User) CanModerate() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// DefaultAvatarURL returns the generated avatar used until a user sets one.
func DefaultAvatarURL(username string) string {
	name := url.QueryEscape(strings.TrimSpace(username))
	if name == "" {
		name = "User"
	}
	return "https://ui-avatars.com/api/?name=" + name + "&background=random&color=fff&size=256"
}
