package repositories

import (
	"context"
	"database/sql"
	"errors"
)

var ErrConfigFlagNotFound = errors.New("config flag not found")

// ConfigRepository reads named runtime flags from the config table.
type ConfigRepository interface {
	Get(ctx context.Context, name string) (string, error)
}

type postgresConfigRepository struct {
	db *sql.DB
}

func NewPostgresConfigRepository(db *sql.DB) ConfigRepository {
	return &postgresConfigRepository{db: db}
}

func (r *postgresConfigRepository) Get(ctx context.Context, name string) (string, error) {
	var value string
	query := `SELECT value FROM config WHERE name = $1`
	err := r.db.QueryRowContext(ctx, query, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrConfigFlagNotFound
		}
		return "", err
	}
	return value, nil
}
