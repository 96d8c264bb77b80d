// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterRequest carries optional account flags. Active defaults to true
// and Admin to false when omitted.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Active   *bool  `json:"active,omitempty"`
	Admin    *bool  `json:"admin,omitempty"`
}

type TokenResponse struct {
	AccessToken           string     `json:"access_token"`
	RefreshToken          string     `json:"refresh_token,omitempty"`
	TokenType             string     `json:"token_type"`
	ExpiresIn             int        `json:"expires_in"`
	ExpiresAt             time.Time  `json:"expires_at"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *UserInfo) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Active:    u.Active,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}
