package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praxisdesk/booking-api/internal/model"
	"github.com/praxisdesk/booking-api/internal/repository"
	apperrors "github.com/praxisdesk/booking-api/pkg/errors"
	"github.com/praxisdesk/booking-api/pkg/logger"
	"github.com/praxisdesk/booking-api/pkg/security"
	"github.com/praxisdesk/booking-api/pkg/token"
)

type Service struct {
	userRepo repository.UserRepository
	tokens   *token.AuthTokenService
	hasher   security.PasswordHasher
	log      *logger.Logger
}

func NewService(userRepo repository.UserRepository, tokens *token.AuthTokenService, hasher security.PasswordHasher, log *logger.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		log:      log,
	}
}

// Login checks credentials and issues a 24h session token. Every failure
// path returns the same Unauthorized error so callers cannot tell a missing
// email from a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, apperrors.Storage(fmt.Errorf("load user: %w", err))
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("issue token: %w", err))
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.log.Error(err, "failed to update last login", "user_id", user.ID.String())
	}

	s.log.Info("user logged in", "user_id", user.ID.String())

	user.PasswordHash = ""
	return &model.LoginResponse{Token: signed, User: user}, nil
}

// Verify validates a session token and returns its claims.
func (s *Service) Verify(tokenStr string) (*model.TokenClaims, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}
