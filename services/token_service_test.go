package services

import (
	"context"
	"testing"

	"github.com/ctfboard/scoreboard/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCheck(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(newFakeTokenRepo("freshtoken"))

	valid, err := svc.Check(ctx, "freshtoken")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = svc.Check(ctx, "nosuchtoken")
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestTokenConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(newFakeTokenRepo("freshtoken"))

	require.NoError(t, svc.Consume(ctx, "freshtoken"))

	err := svc.Consume(ctx, "freshtoken")
	assert.ErrorIs(t, err, repositories.ErrTokenAlreadyUsed)

	valid, err := svc.Check(ctx, "freshtoken")
	require.NoError(t, err)
	assert.False(t, valid, "a consumed token must report as used")
}

func TestTokenBindRecordsTeam(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo("freshtoken")
	svc := NewTokenService(repo)

	require.NoError(t, svc.Consume(ctx, "freshtoken"))
	require.NoError(t, svc.Bind(ctx, "freshtoken", 42))

	token, err := repo.GetByValue(ctx, "freshtoken")
	require.NoError(t, err)
	require.NotNil(t, token.TeamID)
	assert.Equal(t, 42, *token.TeamID)
}
