// Package auth implements the remote session interface over the user and
// token repositories: credential sign-in, sign-out and resuming a session
// from a persisted refresh token.
package auth

import (
	"context"
	"errors"

	"restaurant-pos/internal/config"
	"restaurant-pos/internal/repository"
	"restaurant-pos/internal/store"
	"restaurant-pos/internal/utils"
)

// ErrInvalidCredentials is returned for a wrong email or password. The
// message is deliberately the same for both so sign-in failures do not leak
// which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionExpired is returned when a refresh token is unknown, revoked or
// past its expiry.
var ErrSessionExpired = errors.New("session expired")

// Service issues and validates sessions. It satisfies store.SessionClient.
type Service struct {
	cfg    config.Config
	users  *repository.UserRepo
	tokens *repository.TokenRepo
}

// New builds an auth service over the given repositories.
func New(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) *Service {
	return &Service{cfg: cfg, users: users, tokens: tokens}
}

// SignIn verifies the credentials, loads the user profile and issues a
// fresh access/refresh token pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (store.Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return store.Session{}, ErrInvalidCredentials
		}
		return store.Session{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return store.Session{}, ErrInvalidCredentials
	}

	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return store.Session{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return store.Session{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return store.Session{}, err
	}

	u.PasswordHash = ""
	return store.Session{User: &u, Access: access.Token, Refresh: refresh.Raw}, nil
}

// SignOut revokes the refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(refreshToken))
}

// Resume re-derives a session from a refresh token: validates the token,
// reloads the user profile and issues a new access token. The refresh token
// itself is kept; rotation happens only through sign-in.
func (s *Service) Resume(ctx context.Context, refreshToken string) (store.Session, error) {
	userID, err := s.tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(refreshToken))
	if err != nil {
		return store.Session{}, ErrSessionExpired
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return store.Session{}, ErrSessionExpired
		}
		return store.Session{}, err
	}
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return store.Session{}, err
	}
	u.PasswordHash = ""
	return store.Session{User: &u, Access: access.Token, Refresh: refreshToken}, nil
}
