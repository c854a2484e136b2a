package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctfboard/scoreboard/repositories"
)

// TokenService manages single-use registration tokens.
type TokenService interface {
	// Check reports whether the token exists and is still unused.
	Check(ctx context.Context, value string) (bool, error)

	// Consume marks the token used. The underlying update is conditional on
	// the token being unused, so exactly one of two concurrent consumers
	// succeeds; the loser gets repositories.ErrTokenAlreadyUsed.
	Consume(ctx context.Context, value string) error

	// Bind records the team the consumed token paid for.
	Bind(ctx context.Context, value string, teamID int) error
}

type tokenService struct {
	tokenRepo repositories.TokenRepository
}

func NewTokenService(tokenRepo repositories.TokenRepository) TokenService {
	return &tokenService{tokenRepo: tokenRepo}
}

func (s *tokenService) Check(ctx context.Context, value string) (bool, error) {
	token, err := s.tokenRepo.GetByValue(ctx, value)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check registration token: %w", err)
	}
	return !token.Used, nil
}

func (s *tokenService) Consume(ctx context.Context, value string) error {
	return s.tokenRepo.Consume(ctx, value)
}

func (s *tokenService) Bind(ctx context.Context, value string, teamID int) error {
	return s.tokenRepo.BindTeam(ctx, value, teamID)
}
