package services

import (
	"context"
	"testing"

	"github.com/ctfboard/scoreboard/models"
	"github.com/ctfboard/scoreboard/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginFixture struct {
	cfg      fakeConfigRepo
	teamRepo *fakeTeamRepo
	store    *session.MemoryStore
	svc      LoginService
}

func newLoginFixture(t *testing.T, cfg fakeConfigRepo) *loginFixture {
	t.Helper()
	f := &loginFixture{
		cfg:      cfg,
		teamRepo: newFakeTeamRepo(),
		store:    session.NewMemoryStore(),
	}
	credentials := NewCredentialService(f.teamRepo)
	f.svc = NewLoginService(NewConfigGate(cfg), f.teamRepo, credentials)
	return f
}

func (f *loginFixture) addTeam(t *testing.T, name, password string, admin bool) *models.Team {
	t.Helper()
	hash, err := NewCredentialService(f.teamRepo).Hash(password)
	require.NoError(t, err)
	team := &models.Team{Name: name, PasswordHash: hash, LogoName: "eagle", IsAdmin: admin}
	require.NoError(t, f.teamRepo.Create(context.Background(), team))
	return team
}

func (f *loginFixture) openSession(t *testing.T, id string) *session.Handle {
	t.Helper()
	sess, err := session.Open(context.Background(), f.store, id)
	require.NoError(t, err)
	return sess
}

func TestLoginDisabledFlagBeatsCorrectCredentials(t *testing.T) {
	f := newLoginFixture(t, fakeConfigRepo{FlagLogin: "0"})
	team := f.addTeam(t, "TeamAlpha", "s3cret pass", false)

	_, err := f.svc.Login(context.Background(), f.openSession(t, ""), team.ID, "s3cret pass", "203.0.113.7")
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestLoginUniformFailures(t *testing.T) {
	f := newLoginFixture(t, fakeConfigRepo{FlagLogin: "1"})
	team := f.addTeam(t, "TeamAlpha", "s3cret pass", false)

	_, err := f.svc.Login(context.Background(), f.openSession(t, ""), team.ID, "wrong pass", "203.0.113.7")
	assert.ErrorIs(t, err, ErrLoginFailed)

	_, err = f.svc.Login(context.Background(), f.openSession(t, ""), 9999, "s3cret pass", "203.0.113.7")
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestLoginRedirectsByAdminFlag(t *testing.T) {
	f := newLoginFixture(t, fakeConfigRepo{FlagLogin: "1"})
	team := f.addTeam(t, "TeamAlpha", "s3cret pass", false)
	admin := f.addTeam(t, "Operators", "adm1n pass", true)

	result, err := f.svc.Login(context.Background(), f.openSession(t, ""), team.ID, "s3cret pass", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, RedirectGame, result.Redirect)

	sess := f.openSession(t, "")
	result, err = f.svc.Login(context.Background(), sess, admin.ID, "adm1n pass", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, RedirectAdmin, result.Redirect)
	assert.True(t, sess.Identity().Admin)
}

func TestLoginRotatesSessionIDButKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t, fakeConfigRepo{FlagLogin: "1"})
	team := f.addTeam(t, "TeamAlpha", "s3cret pass", false)

	sess := f.openSession(t, "")
	_, err := f.svc.Login(ctx, sess, team.ID, "s3cret pass", "203.0.113.7")
	require.NoError(t, err)

	firstID := sess.ID()
	firstCSRF := sess.Identity().CSRFToken
	require.NotEmpty(t, firstID)
	require.NotEmpty(t, firstCSRF)

	// A second login on the live session rotates the id but must not rewrite
	// the identity fields.
	reopened := f.openSession(t, firstID)
	require.True(t, reopened.IsActive())
	_, err = f.svc.Login(ctx, reopened, team.ID, "s3cret pass", "198.51.100.9")
	require.NoError(t, err)

	assert.NotEqual(t, firstID, reopened.ID())
	assert.Equal(t, firstCSRF, reopened.Identity().CSRFToken)
	assert.Equal(t, "203.0.113.7", reopened.Identity().IP)

	// The old session id no longer resolves.
	stale := f.openSession(t, firstID)
	assert.False(t, stale.IsActive())
}

func TestResolveTeamID(t *testing.T) {
	f := newLoginFixture(t, fakeConfigRepo{FlagLogin: "1"})
	team := f.addTeam(t, "TeamAlpha", "s3cret pass", false)

	id, err := f.svc.ResolveTeamID(context.Background(), "TeamAlpha")
	require.NoError(t, err)
	assert.Equal(t, team.ID, id)

	_, err = f.svc.ResolveTeamID(context.Background(), "NoSuchTeam")
	assert.ErrorIs(t, err, ErrLoginFailed)
}
