package models

// ConfigFlag is a named runtime setting stored in the database, e.g.
// "registration" or "login_select". Values are strings; boolean flags use
// "0"/"1".
type ConfigFlag struct {
	Name  string `json:"name" db:"name"`
	Value string `json:"value" db:"value"`
}
