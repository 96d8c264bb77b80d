// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/food-orders/internal/core"
)

var (
	ErrInvalidCredentials = core.NewError(core.ErrUnauthorized, "invalid email or password")
	ErrEmailExists        = core.NewError(core.ErrDuplicateKey, "email already exists")
)

type UserInfo struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	Admin        bool
	CreatedAt    time.Time
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	Admin        bool
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

type TokenManager interface {
	IssueAccessToken(userID int64) (string, time.Time, error)
	IssueRefreshToken(userID int64) (string, time.Time, error)
	Verify(ctx context.Context, token string) (*Claims, error)
}

type Service struct {
	tokens TokenManager
	hasher PasswordHasher
	users  UserProvider
	logger *slog.Logger
}

func NewService(
	tokens TokenManager,
	hasher PasswordHasher,
	users UserProvider,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		tokens: tokens,
		hasher: hasher,
		users:  users,
		logger: logger,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	nu := NewUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		Active:       true,
	}
	if req.Active != nil {
		nu.Active = *req.Active
	}
	if req.Admin != nil {
		nu.Admin = *req.Admin
	}

	user, err := s.users.Create(ctx, nu)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "admin", user.Admin)

	return toUserResponse(user), nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _ = s.hasher.Verify(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	access, accessExp, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	resp := newTokenResponse(access, accessExp)
	resp.RefreshToken = refresh
	resp.RefreshTokenExpiresAt = &refreshExp

	return resp, nil
}

// Refresh exchanges any valid token issued by this service for a new access
// token. The subject must still exist.
func (s *Service) Refresh(
	ctx context.Context,
	token string,
) (*TokenResponse, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: unknown subject: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	access, accessExp, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return newTokenResponse(access, accessExp), nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID int64,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func newTokenResponse(access string, expiresAt time.Time) *TokenResponse {
	return &TokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
		ExpiresAt:   expiresAt,
	}
}
