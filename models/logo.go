package models

type Logo struct {
	ID        int    `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Path      string `json:"path" db:"path"`
	Used      bool   `json:"used" db:"used"`
	Enabled   bool   `json:"enabled" db:"enabled"`
	Protected bool   `json:"protected" db:"protected"`
	Custom    bool   `json:"custom" db:"custom"`
}
