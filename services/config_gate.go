package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctfboard/scoreboard/repositories"
)

// Runtime flag names and the values this core branches on.
const (
	FlagRegistration     = "registration"
	FlagRegistrationType = "registration_type"
	FlagLogin            = "login"
	FlagLoginSelect      = "login_select"

	FlagDisabled          = "0"
	RegistrationTypeToken = "2"
	LoginSelectByID       = "1"
)

// ConfigGate reads named runtime flags from the config store. An undefined
// flag is an error, never a silent default: these flags gate registration and
// login, and a missing one means a broken deployment.
type ConfigGate interface {
	Get(ctx context.Context, name string) (string, error)
}

type configGate struct {
	configRepo repositories.ConfigRepository
}

func NewConfigGate(configRepo repositories.ConfigRepository) ConfigGate {
	return &configGate{configRepo: configRepo}
}

func (g *configGate) Get(ctx context.Context, name string) (string, error) {
	value, err := g.configRepo.Get(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrConfigFlagNotFound) {
			return "", fmt.Errorf("%w: %s", ErrConfigMissing, name)
		}
		return "", fmt.Errorf("failed to read config flag %s: %w", name, err)
	}
	return value, nil
}
