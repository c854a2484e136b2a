package models

import "time"

// RegistrationToken is a single-use invitation code for token-gated
// registration. TeamID is set when the token is consumed and never changes
// afterwards.
type RegistrationToken struct {
	Value     string    `json:"-" db:"value"`
	Used      bool      `json:"used" db:"used"`
	TeamID    *int      `json:"team_id,omitempty" db:"team_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
