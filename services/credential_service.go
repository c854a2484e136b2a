package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/ctfboard/scoreboard/models"
	"github.com/ctfboard/scoreboard/repositories"
	"golang.org/x/crypto/bcrypt"
)

const csrfTokenBytes = 16

// CredentialService owns password hashing and verification plus CSRF token
// generation.
type CredentialService interface {
	// Hash produces a salted one-way hash suitable for storage. Hashing the
	// same password twice yields different hashes.
	Hash(password string) (string, error)

	// Verify looks up the team and compares the supplied password against the
	// stored hash. It returns ErrInvalidCredentials for both an unknown team
	// and a wrong password; the hash comparison itself is constant-time.
	Verify(ctx context.Context, teamID int, password string) (*models.Team, error)

	// NewSessionToken returns 16 cryptographically random bytes rendered in
	// base62, for use as a per-session CSRF token.
	NewSessionToken() (string, error)
}

type credentialService struct {
	teamRepo repositories.TeamRepository
}

func NewCredentialService(teamRepo repositories.TeamRepository) CredentialService {
	return &credentialService{teamRepo: teamRepo}
}

func (s *credentialService) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *credentialService) Verify(ctx context.Context, teamID int, password string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find team %d: %w", teamID, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(team.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	return team, nil
}

func (s *credentialService) NewSessionToken() (string, error) {
	raw := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return new(big.Int).SetBytes(raw).Text(62), nil
}
