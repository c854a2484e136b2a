package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ctfboard/scoreboard/models"
	"github.com/ctfboard/scoreboard/repositories"
	"github.com/ctfboard/scoreboard/session"
)

// Team names longer than this are silently truncated before the uniqueness
// check, to avoid breaking the scoreboard UI.
const maxTeamNameLength = 20

type RegisterInput struct {
	TeamName     string
	Password     string
	Token        string
	Logo         string
	IsCustomLogo bool
	WithRoster   bool
	Names        []string
	Emails       []string
}

// RegistrationBroadcaster pushes a registration event to live spectators.
type RegistrationBroadcaster interface {
	BroadcastTeamRegistered(teamName, logoName string)
}

// RegistrationService orchestrates team registration: feature gates, token
// check, logo resolution, name validation, team and roster creation, token
// consumption and the final login.
//
// Every precondition failure folds into ErrRegistrationDisabled so callers
// cannot probe which check failed.
type RegistrationService interface {
	Register(ctx context.Context, sess *session.Handle, input RegisterInput, clientIP string) (*LoginResult, error)
}

type registrationService struct {
	configGate  ConfigGate
	teamRepo    repositories.TeamRepository
	rosterRepo  repositories.RosterRepository
	tokens      TokenService
	logos       LogoResolver
	credentials CredentialService
	login       LoginService
	broadcaster RegistrationBroadcaster
	logger      *slog.Logger
}

func NewRegistrationService(
	configGate ConfigGate,
	teamRepo repositories.TeamRepository,
	rosterRepo repositories.RosterRepository,
	tokens TokenService,
	logos LogoResolver,
	credentials CredentialService,
	login LoginService,
	broadcaster RegistrationBroadcaster,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		configGate:  configGate,
		teamRepo:    teamRepo,
		rosterRepo:  rosterRepo,
		tokens:      tokens,
		logos:       logos,
		credentials: credentials,
		login:       login,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *registrationService) Register(ctx context.Context, sess *session.Handle, input RegisterInput, clientIP string) (*LoginResult, error) {
	registration, err := s.configGate.Get(ctx, FlagRegistration)
	if err != nil {
		return nil, err
	}
	if registration == FlagDisabled {
		return nil, ErrRegistrationDisabled
	}

	registrationType, err := s.configGate.Get(ctx, FlagRegistrationType)
	if err != nil {
		return nil, err
	}
	tokenGated := registrationType == RegistrationTypeToken

	if tokenGated {
		if input.Token == "" {
			return nil, ErrRegistrationDisabled
		}
		valid, err := s.tokens.Check(ctx, input.Token)
		if err != nil {
			return nil, err
		}
		if !valid {
			return nil, ErrRegistrationDisabled
		}
	}

	logoName, err := s.logos.Resolve(ctx, input.Logo, input.IsCustomLogo)
	if err != nil {
		s.logger.Warn("logo resolution failed", slog.Any("error", err))
		return nil, ErrRegistrationDisabled
	}

	shortname := strings.TrimSpace(input.TeamName)
	if shortname == "" {
		return nil, ErrRegistrationDisabled
	}
	if runes := []rune(shortname); len(runes) > maxTeamNameLength {
		shortname = string(runes[:maxTeamNameLength])
	}

	// Early exit only; the unique constraint on teams.name is what actually
	// guarantees uniqueness under concurrent registration.
	exists, err := s.teamRepo.ExistsByName(ctx, shortname)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrRegistrationDisabled
	}

	passwordHash, err := s.credentials.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// Consume the token before creating the team. Losing the consumption race
	// after the team row exists would leave an orphaned team; losing it here
	// just fails the registration.
	if tokenGated {
		if err := s.tokens.Consume(ctx, input.Token); err != nil {
			s.logger.Warn("registration token consumption failed",
				slog.Any("error", err))
			return nil, ErrRegistrationDisabled
		}
	}

	team := &models.Team{
		Name:         shortname,
		PasswordHash: passwordHash,
		LogoName:     logoName,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		s.logger.Warn("team creation failed",
			slog.String("team", shortname), slog.Any("error", err))
		return nil, ErrRegistrationDisabled
	}

	if tokenGated {
		if err := s.tokens.Bind(ctx, input.Token, team.ID); err != nil {
			// The token is already consumed and the team exists; losing the
			// binding is not worth failing the registration over.
			s.logger.Error("failed to bind registration token to team",
				slog.Int("team_id", team.ID), slog.Any("error", err))
		}
	}

	if input.WithRoster {
		for i := range input.Names {
			entry := &models.RosterEntry{
				TeamID: team.ID,
				Name:   input.Names[i],
				Email:  input.Emails[i],
			}
			if err := s.rosterRepo.Create(ctx, entry); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("team registered",
		slog.Int("team_id", team.ID),
		slog.String("team", team.Name),
		slog.String("logo", logoName))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTeamRegistered(team.Name, logoName)
	}

	return s.login.Login(ctx, sess, team.ID, input.Password, clientIP)
}
