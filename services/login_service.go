package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctfboard/scoreboard/models"
	"github.com/ctfboard/scoreboard/repositories"
	"github.com/ctfboard/scoreboard/session"
)

// Redirect surfaces a successful login resolves to.
const (
	RedirectGame  = "game"
	RedirectAdmin = "admin"
)

// LoginResult is what a successful login hands back to the dispatch layer.
type LoginResult struct {
	Team     *models.Team
	Redirect string
}

// LoginService verifies team credentials and issues the authenticated
// session. Registration delegates here after creating a team, so direct login
// and post-registration login share one path.
type LoginService interface {
	// Login gates on the login flag, verifies credentials and establishes the
	// session. The session id is rotated on every successful login; the
	// identity fields are only written when no session was active for the
	// requester.
	Login(ctx context.Context, sess *session.Handle, teamID int, password, clientIP string) (*LoginResult, error)

	// ResolveTeamID maps a team name to its id for deployments where login by
	// numeric id is disabled. An unknown name is ErrLoginFailed.
	ResolveTeamID(ctx context.Context, teamName string) (int, error)
}

type loginService struct {
	configGate  ConfigGate
	teamRepo    repositories.TeamRepository
	credentials CredentialService
}

func NewLoginService(
	configGate ConfigGate,
	teamRepo repositories.TeamRepository,
	credentials CredentialService,
) LoginService {
	return &loginService{
		configGate:  configGate,
		teamRepo:    teamRepo,
		credentials: credentials,
	}
}

func (s *loginService) Login(ctx context.Context, sess *session.Handle, teamID int, password, clientIP string) (*LoginResult, error) {
	loginFlag, err := s.configGate.Get(ctx, FlagLogin)
	if err != nil {
		return nil, err
	}
	if loginFlag == FlagDisabled {
		return nil, ErrLoginFailed
	}

	team, err := s.credentials.Verify(ctx, teamID, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrLoginFailed
		}
		return nil, err
	}

	// Rotate the session id on every successful login to mitigate fixation,
	// but only write identity fields when no session was active.
	wasActive := sess.IsActive()
	if err := sess.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	if !wasActive {
		csrfToken, err := s.credentials.NewSessionToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate csrf token: %w", err)
		}
		data := session.Data{
			TeamID:    team.ID,
			Name:      team.Name,
			CSRFToken: csrfToken,
			IP:        clientIP,
			Admin:     team.IsAdmin,
		}
		if err := sess.SetIdentity(ctx, data); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	redirect := RedirectGame
	if team.IsAdmin {
		redirect = RedirectAdmin
	}

	return &LoginResult{Team: team, Redirect: redirect}, nil
}

func (s *loginService) ResolveTeamID(ctx context.Context, teamName string) (int, error) {
	team, err := s.teamRepo.GetByName(ctx, teamName)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return 0, ErrLoginFailed
		}
		return 0, fmt.Errorf("failed to resolve team by name: %w", err)
	}
	return team.ID, nil
}
