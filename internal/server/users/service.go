// Package users registers accounts and logs them in, issuing the session
// tokens checked by the gRPC interceptors.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
	"github.com/dmitrijs2005/wellkeeper/internal/cryptox"
	"github.com/dmitrijs2005/wellkeeper/internal/server/auth"
)

// Session is what a successful Register or Login hands back.
type Session struct {
	UserID      string
	AccessToken string
}

type Service struct {
	repo                        Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewService(repo Repository, secretKey string, accessTokenValidity time.Duration) *Service {
	return &Service{
		repo:                        repo,
		jwtSecret:                   []byte(secretKey),
		accessTokenValidityDuration: accessTokenValidity,
	}
}

// Register creates an account. A taken username yields
// common.ErrorUniqueViolation.
func (s *Service) Register(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorInvalidArgument)
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, &User{
		Username:     username,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
		Salt:         salt,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.session(user)
}

// Login checks the password and issues a new access token. Unknown users
// and wrong passwords both yield common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repo.GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if !cryptox.VerifyPassword(user.PasswordHash, []byte(password), user.Salt) {
		return nil, common.ErrorUnauthorized
	}

	return s.session(user)
}

func (s *Service) session(user *User) (*Session, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return &Session{UserID: user.ID, AccessToken: token}, nil
}
