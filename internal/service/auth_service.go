// auth_service.go
package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"
	"opt-shop/internal/model"
	"opt-shop/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minPasswordLength = 6

// AuthResult is handed to the controller, which puts the access token in the
// body and the refresh token in a cookie.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users  UserRepository
	tokens *TokenIssuer
	log    *logrus.Logger
}

func NewAuthService(users UserRepository, tokens *TokenIssuer, log *logrus.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*AuthResult, error) {
	email := dto.NormalizeEmail(req.Email)
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, apperror.ErrWeakPassword
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.ErrDuplicateEmail
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	u := &model.User{Email: email, IsActive: true}
	req.BusinessProfile.ApplyTo(&u.Profile)
	req.BusinessProfile.ApplyStatusTo(u)
	if err := u.SetPassword(req.Password); err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"userId": u.ID.Hex(), "email": u.Email}).Info("user registered")
	return s.startSession(ctx, u)
}

// Login answers the same error for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, dto.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(req.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	return s.startSession(ctx, u)
}

// startSession issues a pair and stores the refresh token, replacing any
// previous session.
func (s *AuthService) startSession(ctx context.Context, u *model.User) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, mapNotFound(err, apperror.ErrUserNotFound)
	}
	return &AuthResult{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Refresh rotates the session. The presented token must verify and must be
// the one currently stored; the swap itself is conditional so two concurrent
// refreshes with the same token cannot both win.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, apperror.ErrInvalidRefreshToken
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidRefreshToken
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperror.ErrInvalidRefreshToken
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.ErrInvalidRefreshToken
		}
		return nil, err
	}
	if u.RefreshToken == "" || u.RefreshToken != refreshToken {
		s.log.WithField("userId", id.Hex()).Warn("refresh token reuse or stale session")
		return nil, apperror.ErrInvalidRefreshToken
	}

	pair, err := s.tokens.IssuePair(u)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	swapped, err := s.users.RotateRefreshToken(ctx, id, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, apperror.ErrInvalidRefreshToken
	}
	return &AuthResult{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout clears the stored refresh token. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}
	return s.users.ClearRefreshToken(ctx, id)
}

// LogoutWithToken ends the session named by a refresh cookie. An invalid or
// expired token is not an error; there is simply nothing to clear.
func (s *AuthService) LogoutWithToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil
	}
	return s.Logout(ctx, claims.UserID)
}

// VerifyAccessToken is used by the auth middleware.
func (s *AuthService) VerifyAccessToken(token string) (*Claims, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, apperror.ErrInvalidAccessToken
	}
	return claims, nil
}

// RefreshMaxAge is the refresh cookie lifetime in seconds.
func (s *AuthService) RefreshMaxAge() int {
	return int(s.tokens.RefreshTTL().Seconds())
}
