// Package auth handles registration, credential checks and token
// issuance for the HTTP surface.
package auth

import (
	"context"
	"errors"
	"time"

	"tally/internal/models"
	"tally/internal/repositories"
	"tally/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service registers users and issues access tokens.
type Service struct {
	users    repositories.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
}

func NewService(users repositories.UserRepository, secret string, tokenTTL time.Duration, log *zap.Logger) *Service {
	if users == nil {
		panic("user repository is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, secret: []byte(secret), tokenTTL: tokenTTL, log: log}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: string(hashed),
		Role:     "user",
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(&models.UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, s.secret, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
