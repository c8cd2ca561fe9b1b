package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eaglebank/eagle-bank/internal/token"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so login failures never reveal which.
var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 24 * time.Hour

// AuthService authenticates users and issues JWTs. It never mutates state.
type AuthService struct {
	users  UserStore
	secret []byte
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, secret []byte, log *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: secret,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Login verifies the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !checkPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	s.log.Info("user logged in", zap.String("userId", user.ID))
	return token.Issue(s.secret, user.ID, user.Email, tokenTTL, s.now())
}

// RefreshToken exchanges a still-valid token for a fresh one.
func (s *AuthService) RefreshToken(_ context.Context, tokenString string) (string, error) {
	claims, err := token.Parse(s.secret, tokenString)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	return token.Issue(s.secret, claims.UserID, claims.Email, tokenTTL, s.now())
}
