package models

import "time"

// User is the backend's account record. UserMetadata is free-form and carries the name, birth date
// and role flags.
type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	EmailVerified bool           `json:"email_verified"`
	CreatedAt     Timestamp      `json:"created_at"`
	UserMetadata  map[string]any `json:"user_metadata"`
}

func (u *User) IsAdmin() bool {
	if u == nil || u.UserMetadata == nil {
		return false
	}
	if isAdmin, ok := u.UserMetadata["is_admin"].(bool); ok && isAdmin {
		return true
	}
	role, _ := u.UserMetadata["role"].(string)
	return role == "admin"
}

func (u *User) FullName() string {
	return u.metadataString("full_name")
}

func (u *User) DateOfBirth() string {
	return u.metadataString("date_of_birth")
}

func (u *User) metadataString(key string) string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	v, _ := u.UserMetadata[key].(string)
	return v
}

// AuthSession is the session envelope returned by login and signup and cached locally.
type AuthSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type"`
	User         *User  `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	FullName     string         `json:"full_name,omitempty"`
	DateOfBirth  string         `json:"date_of_birth,omitempty"`
}

type ProfileUpdate struct {
	FullName    string `json:"full_name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

type PasswordUpdate struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Credential is the locally held view of the current authentication.
type Credential struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}
