package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ctfboard/scoreboard/models"
)

var (
	ErrTokenNotFound    = errors.New("registration token not found")
	ErrTokenAlreadyUsed = errors.New("registration token already used")
)

// TokenRepository manages single-use registration tokens. Consume is a
// conditional update (used = false guard) so that two concurrent redeemers of
// the same token cannot both succeed; the loser observes ErrTokenAlreadyUsed.
type TokenRepository interface {
	GetByValue(ctx context.Context, value string) (*models.RegistrationToken, error)
	Consume(ctx context.Context, value string) error
	BindTeam(ctx context.Context, value string, teamID int) error
}

type postgresTokenRepository struct {
	db *sql.DB
}

func NewPostgresTokenRepository(db *sql.DB) TokenRepository {
	return &postgresTokenRepository{db: db}
}

func (r *postgresTokenRepository) GetByValue(ctx context.Context, value string) (*models.RegistrationToken, error) {
	query := `
		SELECT value, used, team_id, created_at
		FROM registration_tokens
		WHERE value = $1`

	token := &models.RegistrationToken{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&token.Value,
		&token.Used,
		&token.TeamID,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

func (r *postgresTokenRepository) Consume(ctx context.Context, value string) error {
	query := `UPDATE registration_tokens SET used = TRUE WHERE value = $1 AND used = FALSE`

	result, err := r.db.ExecContext(ctx, query, value)
	if err != nil {
		return err
	}

	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Either the token never existed or a concurrent redeemer won.
		return ErrTokenAlreadyUsed
	}
	return nil
}

func (r *postgresTokenRepository) BindTeam(ctx context.Context, value string, teamID int) error {
	query := `UPDATE registration_tokens SET team_id = $1 WHERE value = $2 AND used = TRUE AND team_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, teamID, value)
	if err != nil {
		return err
	}

	rowsAffected, err := checkRowsAffected(result)
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}
