package service

import (
	"time"

	"github.com/dreveal/backoffice/internal/session"
	"github.com/dreveal/backoffice/internal/util"
)

// AuthService verifies the single admin principal's credentials and mints
// session tokens. There is no user store: the principal is fixed by
// configuration.
type AuthService struct {
	codec         *session.Codec
	rotator       *session.Rotator
	adminUsername string
	adminPassword string
	passwordHash  string
}

func NewAuthService(codec *session.Codec, rotator *session.Rotator, username, password, passwordHash string) *AuthService {
	return &AuthService{
		codec:         codec,
		rotator:       rotator,
		adminUsername: username,
		adminPassword: password,
		passwordHash:  passwordHash,
	}
}

// Login returns a session token on valid credentials and an empty token
// otherwise. When a bcrypt hash is configured it takes precedence over the
// plaintext password; plaintext comparison is constant-time.
func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	if !util.ConstantTimeEqual(username, s.adminUsername) {
		return "", time.Time{}, nil
	}

	if s.passwordHash != "" {
		if !util.CheckPasswordHash(password, s.passwordHash) {
			return "", time.Time{}, nil
		}
	} else if !util.ConstantTimeEqual(password, s.adminPassword) {
		return "", time.Time{}, nil
	}

	return s.codec.Create(s.adminUsername)
}

// Validate refreshes a session token, sliding its expiry forward.
func (s *AuthService) Validate(token string) (*session.Session, string, error) {
	return s.codec.ValidateAndRefresh(token)
}

// RotationInfo reports the rotation secret's schedule.
func (s *AuthService) RotationInfo() session.RotationInfo {
	return s.rotator.Info()
}

// RotateSecret triggers an immediate rotation of the process-wide secret.
func (s *AuthService) RotateSecret() {
	s.rotator.RotateNow()
}
