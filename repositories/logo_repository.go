package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ctfboard/scoreboard/models"
	"github.com/lib/pq"
)

var (
	ErrLogoNotFound     = errors.New("logo not found")
	ErrLogoNameConflict = errors.New("logo name conflict")
)

type LogoRepository interface {
	Create(ctx context.Context, logo *models.Logo) error
	GetEnabledByName(ctx context.Context, name string) (*models.Logo, error)
	Random(ctx context.Context) (*models.Logo, error)
}

type postgresLogoRepository struct {
	db *sql.DB
}

func NewPostgresLogoRepository(db *sql.DB) LogoRepository {
	return &postgresLogoRepository{db: db}
}

func (r *postgresLogoRepository) Create(ctx context.Context, logo *models.Logo) error {
	query := `
		INSERT INTO logos (name, path, used, enabled, protected, custom)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		logo.Name,
		logo.Path,
		logo.Used,
		logo.Enabled,
		logo.Protected,
		logo.Custom,
	).Scan(&logo.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "logos_name_key" {
				return ErrLogoNameConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresLogoRepository) GetEnabledByName(ctx context.Context, name string) (*models.Logo, error) {
	query := `
		SELECT id, name, path, used, enabled, protected, custom
		FROM logos
		WHERE name = $1 AND enabled = TRUE`
	return r.scanLogo(ctx, query, name)
}

// Random picks one enabled, non-protected logo from the stock catalog.
func (r *postgresLogoRepository) Random(ctx context.Context) (*models.Logo, error) {
	query := `
		SELECT id, name, path, used, enabled, protected, custom
		FROM logos
		WHERE enabled = TRUE AND protected = FALSE
		ORDER BY random()
		LIMIT 1`
	return r.scanLogo(ctx, query)
}

func (r *postgresLogoRepository) scanLogo(ctx context.Context, query string, args ...interface{}) (*models.Logo, error) {
	logo := &models.Logo{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&logo.ID,
		&logo.Name,
		&logo.Path,
		&logo.Used,
		&logo.Enabled,
		&logo.Protected,
		&logo.Custom,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLogoNotFound
		}
		return nil, err
	}
	return logo, nil
}
