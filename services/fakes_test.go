package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ctfboard/scoreboard/models"
	"github.com/ctfboard/scoreboard/repositories"
	"github.com/ctfboard/scoreboard/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	nextID int
	teams  map[string]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team)}
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teams[team.Name]; ok {
		return repositories.ErrTeamNameConflict
	}
	r.nextID++
	team.ID = r.nextID
	team.CreatedAt = time.Now()
	copied := *team
	r.teams[team.Name] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, team := range r.teams {
		if team.ID == id {
			copied := *team
			return &copied, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) GetByName(ctx context.Context, name string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if team, ok := r.teams[name]; ok {
		copied := *team
		return &copied, nil
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.teams[name]
	return ok, nil
}

type fakeRosterRepo struct {
	mu      sync.Mutex
	entries []models.RosterEntry
}

func (r *fakeRosterRepo) Create(ctx context.Context, entry *models.RosterEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = len(r.entries) + 1
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeRosterRepo) ListByTeamID(ctx context.Context, teamID int) ([]models.RosterEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []models.RosterEntry
	for _, entry := range r.entries {
		if entry.TeamID == teamID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RegistrationToken
}

func newFakeTokenRepo(values ...string) *fakeTokenRepo {
	repo := &fakeTokenRepo{tokens: make(map[string]*models.RegistrationToken)}
	for _, value := range values {
		repo.tokens[value] = &models.RegistrationToken{Value: value, CreatedAt: time.Now()}
	}
	return repo
}

func (r *fakeTokenRepo) GetByValue(ctx context.Context, value string) (*models.RegistrationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[value]
	if !ok {
		return nil, repositories.ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (r *fakeTokenRepo) Consume(ctx context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[value]
	if !ok || token.Used {
		return repositories.ErrTokenAlreadyUsed
	}
	token.Used = true
	return nil
}

func (r *fakeTokenRepo) BindTeam(ctx context.Context, value string, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[value]
	if !ok || !token.Used || token.TeamID != nil {
		return repositories.ErrTokenNotFound
	}
	token.TeamID = &teamID
	return nil
}

type fakeLogoRepo struct {
	mu    sync.Mutex
	logos []models.Logo
}

func newFakeLogoRepo(logos ...models.Logo) *fakeLogoRepo {
	return &fakeLogoRepo{logos: logos}
}

func (r *fakeLogoRepo) Create(ctx context.Context, logo *models.Logo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.logos {
		if existing.Name == logo.Name {
			return repositories.ErrLogoNameConflict
		}
	}
	logo.ID = len(r.logos) + 1
	r.logos = append(r.logos, *logo)
	return nil
}

func (r *fakeLogoRepo) GetEnabledByName(ctx context.Context, name string) (*models.Logo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, logo := range r.logos {
		if logo.Name == name && logo.Enabled {
			copied := logo
			return &copied, nil
		}
	}
	return nil, repositories.ErrLogoNotFound
}

func (r *fakeLogoRepo) Random(ctx context.Context) (*models.Logo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, logo := range r.logos {
		if logo.Enabled && !logo.Protected {
			copied := logo
			return &copied, nil
		}
	}
	return nil, repositories.ErrLogoNotFound
}

type fakeConfigRepo map[string]string

func (r fakeConfigRepo) Get(ctx context.Context, name string) (string, error) {
	value, ok := r[name]
	if !ok {
		return "", repositories.ErrConfigFlagNotFound
	}
	return value, nil
}

type uploadedFile struct {
	Key         string
	ContentType string
	Data        []byte
}

type fakeUploader struct {
	mu      sync.Mutex
	uploads []uploadedFile
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, uploadedFile{Key: key, ContentType: contentType, Data: data})

	return &storage.UploadResult{Key: key, Location: "/static/img/customlogo/" + key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (u *fakeUploader) GetPublicURL(key string) string {
	return "/static/img/customlogo/" + key
}

type broadcastedTeam struct {
	TeamName string
	LogoName string
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastedTeam
}

func (b *fakeBroadcaster) BroadcastTeamRegistered(teamName, logoName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastedTeam{TeamName: teamName, LogoName: logoName})
}
