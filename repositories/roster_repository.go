package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ctfboard/scoreboard/models"
	"github.com/lib/pq"
)

var ErrRosterTeamInvalid = errors.New("roster team conflict or invalid")

type RosterRepository interface {
	Create(ctx context.Context, entry *models.RosterEntry) error
	ListByTeamID(ctx context.Context, teamID int) ([]models.RosterEntry, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) Create(ctx context.Context, entry *models.RosterEntry) error {
	query := `
		INSERT INTO team_roster (team_id, name, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.TeamID,
		entry.Name,
		entry.Email,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "team_roster_team_id_fkey" {
				return ErrRosterTeamInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresRosterRepository) ListByTeamID(ctx context.Context, teamID int) ([]models.RosterEntry, error) {
	query := `
		SELECT id, team_id, name, email, created_at
		FROM team_roster
		WHERE team_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.RosterEntry, 0)
	for rows.Next() {
		var entry models.RosterEntry
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.TeamID,
			&entry.Name,
			&entry.Email,
			&entry.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
