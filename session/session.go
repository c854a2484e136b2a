package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultTTL bounds how long an idle session survives in the store.
const DefaultTTL = 24 * time.Hour

// Data is the authenticated state held server-side for one requester.
type Data struct {
	TeamID    int    `json:"team_id"`
	Name      string `json:"name"`
	CSRFToken string `json:"csrf_token"`
	IP        string `json:"ip"`
	Admin     bool   `json:"admin,omitempty"`
}

// Store persists session data keyed by an opaque session id.
// Get returns (nil, nil) when the id is unknown or expired.
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// NewID generates a cryptographically secure session id.
// 32 bytes = 256 bits of entropy.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
